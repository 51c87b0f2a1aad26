// Package widget implements the reader side of the cross-process snapshot.
package widget

import (
	"context"
	"log/slog"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/snapshot"
	redisstore "github.com/deinadmin/school-grade-hub/internal/infrastructure/persistence/redis"
)

// RefreshJobName identifies the periodic re-render job in the scheduler.
const RefreshJobName = "widget-refresh"

// RefreshJob reads the snapshot and re-renders the view. It implements
// scheduler.Job for the timed cadence; the Listener triggers additional
// out-of-band runs when the writer signals.
type RefreshJob struct {
	reader   snapshot.Reader
	renderer *Renderer
	logger   *slog.Logger
	now      func() time.Time

	onView func(View)
}

// NewRefreshJob creates a RefreshJob. onView receives every rendered view;
// the display layer behind it is whatever the process wires (for this
// service, structured log output).
func NewRefreshJob(reader snapshot.Reader, renderer *Renderer, logger *slog.Logger, onView func(View)) *RefreshJob {
	return &RefreshJob{
		reader:   reader,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "widget_refresh")),
		now:      time.Now,
		onView:   onView,
	}
}

// Name returns the job name.
func (j *RefreshJob) Name() string {
	return RefreshJobName
}

// Run reads and renders once. Reading is total, so Run never fails on a
// missing or unreachable snapshot - it renders the empty state instead.
func (j *RefreshJob) Run(ctx context.Context) error {
	w := j.reader.Read(ctx)
	view := j.renderer.Render(w, j.now())

	j.logger.Info("widget rendered",
		slog.String("average", view.AverageText),
		slog.String("period", view.PeriodText),
		slog.String("subjects", view.SubjectsText),
		slog.String("grades", view.GradesText),
		slog.Bool("empty", view.Empty),
	)

	if j.onView != nil {
		j.onView(view)
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH SIGNAL LISTENER
// ══════════════════════════════════════════════════════════════════════════════

// Trigger forces an immediate job run. Implemented by the scheduler.
type Trigger interface {
	TriggerNow(jobName string) error
}

// Listener subscribes to the cross-process refresh channel and converts
// every signal into an immediate re-render. Signals are best-effort: a
// lost one only delays the render until the next scheduled run.
type Listener struct {
	store   *redisstore.SnapshotStore
	trigger Trigger
	logger  *slog.Logger
}

// NewListener creates a Listener.
func NewListener(store *redisstore.SnapshotStore, trigger Trigger, logger *slog.Logger) *Listener {
	return &Listener{
		store:   store,
		trigger: trigger,
		logger:  logger.With(slog.String("component", "widget_listener")),
	}
}

// Listen blocks until the context is cancelled, triggering a re-render for
// every refresh signal.
func (l *Listener) Listen(ctx context.Context) {
	pubsub := l.store.Subscribe(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := l.trigger.TriggerNow(RefreshJobName); err != nil {
				l.logger.Warn("refresh trigger failed", slog.String("error", err.Error()))
			}
		}
	}
}
