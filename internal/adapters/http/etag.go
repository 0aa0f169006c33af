package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware lets map clients poll a session cheaply. Successful GET and
// HEAD responses carry a weak ETag hashed from the rendered body; a request
// whose If-None-Match lists that tag (or "*") gets an empty 304 instead.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead:
		default:
			return nil
		}
		res := c.Response()
		if res.StatusCode() != fiber.StatusOK || len(res.Body()) == 0 {
			return nil
		}

		tag := bodyETag(res.Body())
		c.Set(fiber.HeaderETag, tag)

		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), tag) {
			c.Status(fiber.StatusNotModified)
			res.ResetBody()
		}
		return nil
	}
}

func bodyETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}

// etagMatches applies the weak comparison of If-None-Match against tag.
func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(tag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
