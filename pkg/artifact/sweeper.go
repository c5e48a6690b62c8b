package artifact

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultSweepInterval is how often a Sweeper runs when none is given.
const DefaultSweepInterval = time.Hour

// Sweeper runs Store.Sweep periodically.
type Sweeper struct {
	Store    *Store
	Interval time.Duration
	MaxAge   time.Duration
	Logger   *log.Logger
}

// Run sweeps once immediately and then every Interval until ctx ends. It
// always returns ctx.Err().
func (w *Sweeper) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	logger := w.Logger
	if logger == nil {
		logger = log.Default()
	}

	w.once(ctx, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.once(ctx, logger)
		}
	}
}

func (w *Sweeper) once(ctx context.Context, logger *log.Logger) {
	n, err := w.Store.Sweep(ctx, w.MaxAge)
	if err != nil && ctx.Err() == nil {
		logger.Warn("artifact sweep failed", "err", err)
		return
	}
	if n > 0 {
		logger.Info("swept expired artifacts", "removed", n)
	}
}
