package background

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTable struct {
	mu     sync.Mutex
	sweeps int
}

func (f *fakeTable) Sweep() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return 1
}

func (f *fakeTable) Len() int { return 0 }

func (f *fakeTable) sweepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps
}

func TestSweeper_SweepsAllTables(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	a := &fakeTable{}
	b := &fakeTable{}

	sweeper := NewSweeper(map[string]Table{"login": a, "signed_url": b}, logger, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		sweeper.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return a.sweepCount() >= 2 && b.sweepCount() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	sweeper.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	sweeper := NewSweeper(map[string]Table{"login": &fakeTable{}}, logger, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not honor cancellation")
	}
}
