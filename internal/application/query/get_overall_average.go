package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET OVERALL AVERAGE QUERY
// Вычисляет общий средний балл периода: среднее из средних по предметам
// с равным весом каждого предмета. Предметы без данных в периоде
// исключаются и из числителя, и из знаменателя - они не считаются нулём.
// Вся арифметика идёт в системе оценивания запрошенного учебного года.
// ══════════════════════════════════════════════════════════════════════════════

// GetOverallAverageQuery содержит параметры запроса общего среднего.
type GetOverallAverageQuery struct {
	// Year - учебный год периода.
	Year period.SchoolYear

	// Semester - полугодие периода.
	Semester period.Semester
}

// Validate проверяет корректность параметров запроса.
func (q *GetOverallAverageQuery) Validate() error {
	if !q.Semester.IsValid() {
		return errors.New("invalid semester")
	}
	return nil
}

// SubjectBreakdownDTO - средний балл одного предмета в разбивке.
type SubjectBreakdownDTO struct {
	// SubjectID - предмет.
	SubjectID string `json:"subject_id"`

	// SubjectName - имя предмета.
	SubjectName string `json:"subject_name"`

	// Value - средний балл предмета.
	Value float64 `json:"value"`

	// Source - происхождение значения (computed / final).
	Source AverageSource `json:"source"`

	// GradeCount - количество оценок предмета в периоде.
	GradeCount int `json:"grade_count"`
}

// OverallAverageResult содержит результат запроса общего среднего.
type OverallAverageResult struct {
	// Present - есть ли хоть один предмет с данными в периоде.
	Present bool `json:"present"`

	// Value - общий средний балл (осмысленно только при Present = true).
	Value float64 `json:"value"`

	// SubjectCount - количество предметов, вошедших в среднее.
	SubjectCount int `json:"subject_count"`

	// GradeCount - суммарное количество оценок периода.
	GradeCount int `json:"grade_count"`

	// Breakdown - разбивка по предметам (отсортирована по имени предмета).
	Breakdown []SubjectBreakdownDTO `json:"breakdown"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetOverallAverageHandler обрабатывает запрос общего среднего.
type GetOverallAverageHandler struct {
	subjects       gradebook.SubjectRepository
	grades         gradebook.GradeRepository
	subjectAverage *GetSubjectAverageHandler
}

// NewGetOverallAverageHandler создаёт обработчик.
func NewGetOverallAverageHandler(
	subjects gradebook.SubjectRepository,
	grades gradebook.GradeRepository,
	finalGrades gradebook.FinalGradeRepository,
) *GetOverallAverageHandler {
	return &GetOverallAverageHandler{
		subjects:       subjects,
		grades:         grades,
		subjectAverage: NewGetSubjectAverageHandler(grades, finalGrades),
	}
}

// Handle выполняет запрос.
func (h *GetOverallAverageHandler) Handle(ctx context.Context, q GetOverallAverageQuery) (*OverallAverageResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	subjects, err := h.subjects.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	result := &OverallAverageResult{
		Breakdown:   make([]SubjectBreakdownDTO, 0, len(subjects)),
		GeneratedAt: time.Now().UTC(),
	}

	var sum float64
	for _, subject := range subjects {
		avg, err := h.subjectAverage.Handle(ctx, GetSubjectAverageQuery{
			SubjectID: subject.ID,
			Year:      q.Year,
			Semester:  q.Semester,
		})
		if err != nil {
			return nil, err
		}

		result.GradeCount += avg.GradeCount
		if !avg.Present {
			continue
		}

		sum += avg.Value
		result.SubjectCount++
		result.Breakdown = append(result.Breakdown, SubjectBreakdownDTO{
			SubjectID:   subject.ID,
			SubjectName: subject.Name,
			Value:       avg.Value,
			Source:      avg.Source,
			GradeCount:  avg.GradeCount,
		})
	}

	if result.SubjectCount == 0 {
		return result, nil
	}

	result.Present = true
	result.Value = sum / float64(result.SubjectCount)
	return result, nil
}
