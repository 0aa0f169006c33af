package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel/attribute"

	natsadapter "github.com/samirrijal/areaselect/internal/adapters/nats"
	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/pkg/config"
	"github.com/samirrijal/areaselect/internal/pkg/geospatial"
	"github.com/samirrijal/areaselect/internal/pkg/logging"
	"github.com/samirrijal/areaselect/internal/pkg/telemetry"
)

// The dispatcher drains the SELECTIONS work queue and hands each accepted
// selection to the analysis pipeline.
func main() {
	cfg, err := config.Load("areaselect-dispatcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	if err := sub.SubscribeAnalysisRequests(ctx, dispatch); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("dispatcher started", "stream", natsadapter.StreamSelections)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down dispatcher", "signal", sig.String())
}

// dispatch starts the analysis of one accepted selection. Requests that
// slipped past the API with an area over the limit are dropped.
func dispatch(ctx context.Context, req *domain.AnalysisRequest) error {
	_, span := telemetry.Tracer().Start(ctx, "dispatcher.analysis")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", req.SessionID),
		attribute.Float64("selection.area_km2", req.AreaKm2),
	)

	logger := slog.With("session_id", req.SessionID, "area_km2", req.AreaKm2)

	if !geospatial.WithinLimit(req.AreaKm2) {
		logger.Warn("dropping analysis request over the area limit", "max_area_km2", geospatial.MaxAnalysisAreaKm2)
		return nil
	}

	switch {
	case req.Shape != nil:
		logger.Info("starting analysis", "source", "shape", "kind", req.Shape.Kind,
			"center_lat", req.Shape.Anchor.Position.Lat, "center_lon", req.Shape.Anchor.Position.Lon)
	case len(req.Polygon) >= 3:
		logger.Info("starting analysis", "source", "polygon", "vertices", len(req.Polygon),
			"perimeter_m", geospatial.RingLength(req.Polygon))
	default:
		logger.Warn("dropping analysis request without a selection")
	}
	return nil
}
