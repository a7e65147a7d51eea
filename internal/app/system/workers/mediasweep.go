// internal/app/system/workers/mediasweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/blend/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Files is the part of the media store the sweep needs.
type Files interface {
	Walk(fn func(publicPath string, modTime time.Time) error) error
	Remove(publicPath string) error
}

// RefsFunc returns the public paths still referenced by documents.
type RefsFunc func(ctx context.Context) (map[string]struct{}, error)

// MediaSweep is a background worker that removes uploaded files no
// document references. Files newer than the grace period are kept so an
// upload whose document is still being written is never swept.
type MediaSweep struct {
	files    Files
	refs     RefsFunc
	log      *zap.Logger
	interval time.Duration
	grace    time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewMediaSweep creates a new sweep worker.
//
// Parameters:
//   - files: the media store
//   - refs: lists referenced public paths
//   - interval: how often to sweep (e.g., 6 hours)
//   - grace: minimum age of a file before it may be removed (e.g., 1 hour)
//   - timeout: bound on the reference query of one sweep
func NewMediaSweep(files Files, refs RefsFunc, logger *zap.Logger, interval, grace, timeout time.Duration) *MediaSweep {
	return &MediaSweep{
		files:    files,
		refs:     refs,
		log:      logger,
		interval: interval,
		grace:    grace,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *MediaSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("media sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("grace", w.grace))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *MediaSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("media sweep worker stopped")
}

func (w *MediaSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if _, err := w.Sweep(time.Now()); err != nil {
				w.log.Error("media sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep removes unreferenced files last modified before now minus the
// grace period and returns how many were removed. A failed removal is
// logged and the sweep continues.
func (w *MediaSweep) Sweep(now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	refs, err := w.refs(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-w.grace)
	var orphans []string
	err = w.files.Walk(func(p string, modTime time.Time) error {
		if _, ok := refs[p]; !ok && modTime.Before(cutoff) {
			orphans = append(orphans, p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range orphans {
		if err := w.files.Remove(p); err != nil {
			metrics.IncMediaCleanupFailure()
			w.log.Warn("failed to remove orphaned upload", zap.String("path", p), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		w.log.Info("removed orphaned uploads", zap.Int("count", removed))
	}
	return removed, nil
}
