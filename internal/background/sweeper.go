package background

import (
	"context"
	"log/slog"
	"time"
)

// Table is a rate-limiter table that can drop stale entries.
type Table interface {
	Sweep() int
	Len() int
}

// Sweeper periodically evicts stale entries from the in-memory rate-limiter
// tables so that long-running processes stay bounded even under slow, steady
// abuse that never trips the per-table size caps.
type Sweeper struct {
	tables   map[string]Table
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweeper creates a sweeper over named limiter tables.
func NewSweeper(tables map[string]Table, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		tables:   tables,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep. Blocks until Stop is called or ctx is
// cancelled; run it on its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.stopCh:
			s.logger.Info("rate limit sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("rate limit sweeper context cancelled")
			return
		}
	}
}

// Stop signals the sweeper to exit.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) runSweep() {
	for name, table := range s.tables {
		removed := table.Sweep()
		if removed > 0 {
			s.logger.Info("swept stale rate limit entries",
				slog.String("table", name),
				slog.Int("removed", removed),
				slog.Int("remaining", table.Len()))
		}
	}
}
