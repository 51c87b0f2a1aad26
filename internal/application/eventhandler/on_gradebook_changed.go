// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/application/query"
	"github.com/deinadmin/school-grade-hub/internal/application/selection"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
	"github.com/deinadmin/school-grade-hub/internal/domain/snapshot"
	"github.com/deinadmin/school-grade-hub/pkg/circuitbreaker"
	"github.com/deinadmin/school-grade-hub/pkg/retry"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON GRADEBOOK CHANGED HANDLER
// Перепубликует снапшот виджета после каждой мутации журнала.
//
// Репликация best-effort и односторонняя: основной процесс пишет
// производный снапшот в общее хранилище, процесс-виджет только читает.
// Сбой публикации логируется и проглатывается - мутация уже произошла,
// и виджет догонит состояние при следующей успешной публикации.
// ═══════════════════════════════════════════════════════════════════════════

// OnGradebookChangedHandler перепубликует снапшот после мутаций.
type OnGradebookChangedHandler struct {
	overall   *query.GetOverallAverageHandler
	selection *selection.Selection
	publisher snapshot.Publisher

	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewOnGradebookChangedHandler создаёт обработчик.
func NewOnGradebookChangedHandler(
	overall *query.GetOverallAverageHandler,
	sel *selection.Selection,
	publisher snapshot.Publisher,
	logger *slog.Logger,
) *OnGradebookChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnGradebookChangedHandler{
		overall:   overall,
		selection: sel,
		publisher: publisher,
		breaker:   circuitbreaker.New("snapshot-publish"),
		retrier:   retry.SnapshotStoreRetrier(),
		logger:    logger,
	}
}

// Handle реагирует на любое событие журнала перепубликацией снапшота.
// Подписывается через bus.SubscribeAll.
func (h *OnGradebookChangedHandler) Handle(ctx context.Context, event shared.Event) error {
	widget, err := h.BuildSnapshot(ctx)
	if err != nil {
		// Агрегация читает долговечное хранилище; если оно недоступно,
		// публиковать нечего. Старый снапшот остаётся в силе.
		h.logger.Error("failed to build widget snapshot",
			"event_type", event.EventType(),
			"error", err,
		)
		return nil
	}

	h.PublishSnapshot(ctx, widget)
	return nil
}

// BuildSnapshot собирает снапшот для текущего выбранного периода.
func (h *OnGradebookChangedHandler) BuildSnapshot(ctx context.Context) (snapshot.Widget, error) {
	year, semester := h.selection.Current()

	result, err := h.overall.Handle(ctx, query.GetOverallAverageQuery{
		Year:     year,
		Semester: semester,
	})
	if err != nil {
		return snapshot.Widget{}, err
	}

	widget := snapshot.Widget{
		SubjectCount: result.SubjectCount,
		GradeCount:   result.GradeCount,
		Year:         year,
		Semester:     semester,
	}
	if result.Present {
		widget.OverallAverage = snapshot.Float64Ptr(result.Value)
	}
	return widget, nil
}

// PublishSnapshot публикует снапшот с ретраями за circuit breaker'ом.
// Ошибки не возвращаются: публикация best-effort.
func (h *OnGradebookChangedHandler) PublishSnapshot(ctx context.Context, widget snapshot.Widget) {
	start := time.Now()

	err := h.breaker.Execute(ctx, func(ctx context.Context) error {
		return h.retrier.Do(ctx, func(ctx context.Context) error {
			return h.publisher.Publish(ctx, widget)
		})
	})
	if err != nil {
		h.logger.Warn("widget snapshot publish failed",
			"snapshot", widget.String(),
			"breaker_state", h.breaker.State().String(),
			"error", err,
		)
		return
	}

	h.logger.Debug("widget snapshot published",
		"snapshot", widget.String(),
		"latency", time.Since(start).String(),
	)
}
