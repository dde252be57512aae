// Package autosave runs the periodic draft-save worker. Each tick captures
// an atomic snapshot of the aggregate and persists it; ticks fire on a fixed
// interval and never overlap, so a slow save simply defers to the next tick.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"permitdesk/internal/platform/metrics"
	"permitdesk/internal/sentinel"
	"permitdesk/internal/wizard/models"
)

// Snapshotter provides an atomic copy of the aggregate state. The wizard
// service implements this; the copy guarantees a save can never persist a
// state torn between two edits.
type Snapshotter interface {
	Snapshot() models.ApplicationState
}

// Saver persists a snapshot. Failures are logged and retried on the next
// tick, never surfaced to the citizen.
type Saver interface {
	Save(ctx context.Context, st models.ApplicationState) error
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// Worker is the autosave loop.
type Worker struct {
	source   Snapshotter
	drafts   Saver
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

// New creates an autosave worker with a 30 second default interval.
func New(source Snapshotter, drafts Saver, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		drafts:   drafts,
		logger:   slog.Default(),
		interval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the autosave loop until ctx is cancelled. Save runs on the
// loop goroutine, so two saves can never be in flight at once; a tick that
// fires mid-save is dropped by the ticker and the work happens on the next
// one.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			saved, err := w.RunOnce(ctx)
			duration := time.Since(start)

			switch {
			case err != nil:
				w.logger.Error("draft_autosave_failed",
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				w.observe("error", duration)
			case saved:
				w.logger.Info("draft_autosave_completed",
					"duration_ms", duration.Milliseconds(),
				)
				w.observe("success", duration)
			default:
				w.observe("skipped", duration)
			}

		case <-ctx.Done():
			w.logger.Info("autosave worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single autosave pass. It reports whether a save was
// attempted; an aggregate with no data yet is skipped, as is a snapshot the
// persister refuses because a newer draft is already on disk.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	snap := w.source.Snapshot()
	if !snap.HasData() || snap.Submitted {
		return false, nil
	}
	if err := w.drafts.Save(ctx, snap); err != nil {
		if errors.Is(err, sentinel.ErrStaleWrite) {
			return false, nil
		}
		return true, err
	}
	return true, nil
}

func (w *Worker) observe(status string, duration time.Duration) {
	if w.metrics == nil {
		return
	}
	w.metrics.AutosaveRuns.WithLabelValues(status).Inc()
	w.metrics.AutosaveDuration.Observe(duration.Seconds())
}
