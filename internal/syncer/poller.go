package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
)

const DefaultPollInterval = time.Second

// Poller refreshes a game view on a fixed interval for as long as its context
// lives. It stops for good once the session is gone.
type Poller struct {
	logger   *slog.Logger
	interval time.Duration

	refresh      func(ctx context.Context) error
	onTerminated func()
}

func NewPoller(logger *slog.Logger, interval time.Duration, refresh func(ctx context.Context) error, onTerminated func()) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Poller{
		logger:       logger.With("component", "poller"),
		interval:     interval,
		refresh:      refresh,
		onTerminated: onTerminated,
	}
}

// Run - polls until ctx is canceled or the session disappears.
func (that *Poller) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	for {
		err := that.refresh(ctx)
		switch {
		case err == nil:
		case errors.Is(err, apperror.ErrNotFound):
			log.Info("match terminated")
			if that.onTerminated != nil {
				that.onTerminated()
			}
			return
		case ctx.Err() != nil:
			return
		default:
			// the next tick retries
			log.Warn("failed to refresh", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
