// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GRADES QUERY
// Возвращает оценки предмета за точный период: учебный год И полугодие
// должны совпадать. Выборок "за любой год" сознательно нет.
// ══════════════════════════════════════════════════════════════════════════════

// GetGradesQuery содержит параметры запроса оценок.
type GetGradesQuery struct {
	// SubjectID - внутренний ID предмета.
	SubjectID string

	// Year - учебный год периода.
	Year period.SchoolYear

	// Semester - полугодие периода.
	Semester period.Semester
}

// Validate проверяет корректность параметров запроса.
func (q *GetGradesQuery) Validate() error {
	if q.SubjectID == "" {
		return errors.New("subject_id must be provided")
	}
	if !q.Semester.IsValid() {
		return errors.New("invalid semester")
	}
	return nil
}

// GradeDTO - DTO для одной оценки.
type GradeDTO struct {
	// ID - идентификатор оценки.
	ID string `json:"id"`

	// Value - числовое значение.
	Value float64 `json:"value"`

	// TypeName - имя типа оценки.
	TypeName string `json:"type_name"`

	// TypeDisplayName - немецкое название типа.
	TypeDisplayName string `json:"type_display_name"`

	// Weight - вес типа.
	Weight float64 `json:"weight"`

	// Date - дата получения (опционально, RFC3339).
	Date string `json:"date,omitempty"`
}

// GetGradesResult содержит результат запроса оценок.
type GetGradesResult struct {
	// SubjectID - предмет, по которому фильтровали.
	SubjectID string `json:"subject_id"`

	// Grades - оценки периода.
	Grades []GradeDTO `json:"grades"`

	// TotalWeight - суммарный вес всех оценок.
	TotalWeight float64 `json:"total_weight"`
}

// GetGradesHandler обрабатывает запрос оценок.
type GetGradesHandler struct {
	subjects gradebook.SubjectRepository
	grades   gradebook.GradeRepository
}

// NewGetGradesHandler создаёт обработчик запроса оценок.
func NewGetGradesHandler(subjects gradebook.SubjectRepository, grades gradebook.GradeRepository) *GetGradesHandler {
	return &GetGradesHandler{subjects: subjects, grades: grades}
}

// Handle выполняет запрос.
func (h *GetGradesHandler) Handle(ctx context.Context, q GetGradesQuery) (*GetGradesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.subjects.GetByID(ctx, q.SubjectID); err != nil {
		return nil, err
	}

	grades, err := h.grades.ListForSubject(ctx, q.SubjectID, q.Year, q.Semester)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	result := &GetGradesResult{
		SubjectID: q.SubjectID,
		Grades:    make([]GradeDTO, 0, len(grades)),
	}

	for _, g := range grades {
		dto := GradeDTO{
			ID:              g.ID,
			Value:           g.Value,
			TypeName:        g.Type.Name,
			TypeDisplayName: g.Type.DisplayName(),
			Weight:          g.Type.Weight,
		}
		if g.Date != nil {
			dto.Date = g.Date.Format("2006-01-02")
		}
		result.Grades = append(result.Grades, dto)
		result.TotalWeight += g.Type.Weight
	}

	return result, nil
}
