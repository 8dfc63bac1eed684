package notify

import (
	"context"
	"log/slog"

	"ett/internal/platform/metrics"
)

// LogPublisher writes events to the structured log. It is the sink for
// local runs and the fallback while the broker is unreachable.
type LogPublisher struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLogPublisher(logger *slog.Logger, m *metrics.Metrics) *LogPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogPublisher{logger: logger, metrics: m}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "verdict event",
		"event_id", event.ID,
		"kind", event.Kind,
		"sweep_id", event.SweepID,
		"subject", event.Subject,
		"occurred_at", event.OccurredAt,
		"payload", event.Payload,
	)
	p.metrics.IncrementEventsPublished(string(event.Kind))
	return nil
}
