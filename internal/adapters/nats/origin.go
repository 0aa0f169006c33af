package natsadapter

import (
	"context"

	"github.com/nats-io/nats.go"
)

// HeaderOrigin names the client connection whose action produced a
// session update, so that connection can skip its own echo.
const HeaderOrigin = "Areaselect-Origin"

type originKey struct{}

// WithOrigin tags ctx with the ID of the client connection acting on it.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFromContext returns the origin set by WithOrigin, or "".
func OriginFromContext(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}

// OriginOf returns the origin header of a relayed session update.
func OriginOf(msg *nats.Msg) string {
	if msg == nil || msg.Header == nil {
		return ""
	}
	return msg.Header.Get(HeaderOrigin)
}

func sessionUpdateMsg(ctx context.Context, sessionID string, data []byte) *nats.Msg {
	msg := nats.NewMsg(SubjectSessionPrefix + sessionID)
	msg.Data = data
	if origin := OriginFromContext(ctx); origin != "" {
		msg.Header.Set(HeaderOrigin, origin)
	}
	return msg
}
