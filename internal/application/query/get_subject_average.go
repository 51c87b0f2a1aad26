package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SUBJECT AVERAGE QUERY
// Вычисляет взвешенное среднее предмета за период:
// Σ(value × weight) / Σ(weight). Пустое множество оценок - это не ошибка
// и не ноль, а отсутствующий результат. Итоговая оценка, если она
// установлена, полностью замещает вычисленное среднее (не смешивается).
// ══════════════════════════════════════════════════════════════════════════════

// AverageSource описывает происхождение среднего балла.
type AverageSource string

const (
	// SourceComputed - среднее вычислено из оценок.
	SourceComputed AverageSource = "computed"

	// SourceFinal - значение взято из итоговой оценки.
	SourceFinal AverageSource = "final"
)

// GetSubjectAverageQuery содержит параметры запроса среднего.
type GetSubjectAverageQuery struct {
	// SubjectID - внутренний ID предмета.
	SubjectID string

	// Year - учебный год периода.
	Year period.SchoolYear

	// Semester - полугодие периода.
	Semester period.Semester
}

// Validate проверяет корректность параметров запроса.
func (q *GetSubjectAverageQuery) Validate() error {
	if q.SubjectID == "" {
		return errors.New("subject_id must be provided")
	}
	if !q.Semester.IsValid() {
		return errors.New("invalid semester")
	}
	return nil
}

// SubjectAverageResult содержит результат вычисления среднего.
type SubjectAverageResult struct {
	// SubjectID - предмет.
	SubjectID string `json:"subject_id"`

	// Present - есть ли у предмета данные в периоде.
	// false означает "absent": ни одной оценки и нет итоговой.
	Present bool `json:"present"`

	// Value - среднее значение (осмысленно только при Present = true).
	Value float64 `json:"value"`

	// Source - происхождение значения (computed / final).
	Source AverageSource `json:"source,omitempty"`

	// GradeCount - количество оценок, попавших в выборку.
	GradeCount int `json:"grade_count"`
}

// GetSubjectAverageHandler обрабатывает запрос среднего по предмету.
type GetSubjectAverageHandler struct {
	grades      gradebook.GradeRepository
	finalGrades gradebook.FinalGradeRepository
}

// NewGetSubjectAverageHandler создаёт обработчик.
func NewGetSubjectAverageHandler(
	grades gradebook.GradeRepository,
	finalGrades gradebook.FinalGradeRepository,
) *GetSubjectAverageHandler {
	return &GetSubjectAverageHandler{grades: grades, finalGrades: finalGrades}
}

// Handle выполняет запрос.
func (h *GetSubjectAverageHandler) Handle(ctx context.Context, q GetSubjectAverageQuery) (*SubjectAverageResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	grades, err := h.grades.ListForSubject(ctx, q.SubjectID, q.Year, q.Semester)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	result := &SubjectAverageResult{
		SubjectID:  q.SubjectID,
		GradeCount: len(grades),
	}

	// Итоговая оценка имеет безусловный приоритет над вычисленным средним.
	finalGrade, err := h.finalGrades.Get(ctx, q.SubjectID, q.Year, q.Semester)
	switch {
	case err == nil:
		result.Present = true
		result.Value = finalGrade.Value
		result.Source = SourceFinal
		return result, nil
	case !errors.Is(err, gradebook.ErrFinalGradeNotFound):
		return nil, fmt.Errorf("failed to get final grade: %w", err)
	}

	if len(grades) == 0 {
		return result, nil
	}

	var weightedSum, totalWeight float64
	for _, g := range grades {
		weightedSum += g.WeightedValue()
		totalWeight += g.Type.Weight
	}

	result.Present = true
	result.Value = weightedSum / totalWeight
	result.Source = SourceComputed
	return result, nil
}
