package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultSweepInterval = time.Minute

// Sweeper periodically evicts idle sessions from a Registry.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(registry *Registry, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   logger.With().Str("component", "session_sweeper").Logger(),
	}
}

// Run blocks until context cancellation.
func (w *Sweeper) Run(ctx context.Context) error {
	if w.registry == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			w.tick(now)
		}
	}
}

func (w *Sweeper) tick(now time.Time) {
	removed := w.registry.Sweep(now)
	if removed > 0 {
		w.logger.Info().
			Int("removed", removed).
			Int("remaining", w.registry.Len()).
			Msg("idle sessions evicted")
	}
}
