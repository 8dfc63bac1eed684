package notify

import (
	"context"
	"log/slog"

	"ett/pkg/platform/circuit"
)

// Fallback publishes to primary and, once primary has failed often enough
// to open the circuit, serves events from secondary instead. Primary keeps
// being tried so the circuit can close again.
type Fallback struct {
	primary   Publisher
	secondary Publisher
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

func NewFallback(primary, secondary Publisher, breaker *circuit.Breaker, logger *slog.Logger) *Fallback {
	if breaker == nil {
		breaker = circuit.New("notify")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fallback{primary: primary, secondary: secondary, breaker: breaker, logger: logger}
}

func (f *Fallback) Publish(ctx context.Context, event Event) error {
	err := f.primary.Publish(ctx, event)
	if err == nil {
		if _, change := f.breaker.RecordSuccess(); change.Closed {
			f.logger.InfoContext(ctx, "event publisher recovered", "breaker", f.breaker.Name())
		}
		return nil
	}

	useFallback, change := f.breaker.RecordFailure()
	if change.Opened {
		f.logger.WarnContext(ctx, "event publisher circuit opened",
			"breaker", f.breaker.Name(),
			"error", err,
		)
	}
	if !useFallback {
		return err
	}
	return f.secondary.Publish(ctx, event)
}
