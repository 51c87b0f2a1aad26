// Package query реализует read-сторону CQRS: обработчики запросов читают
// долговечное хранилище и собирают DTO без побочных эффектов.
package query

import (
	"context"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SUBJECTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// SubjectDTO - представление предмета для внешнего интерфейса.
type SubjectDTO struct {
	// ID - идентификатор предмета.
	ID string `json:"id"`

	// Name - имя предмета.
	Name string `json:"name"`

	// ColorHex - цвет предмета.
	ColorHex string `json:"color_hex"`

	// Icon - имя иконки.
	Icon string `json:"icon"`
}

// ListSubjectsResult - результат запроса списка предметов.
type ListSubjectsResult struct {
	// Subjects - предметы, отсортированные по имени.
	Subjects []SubjectDTO `json:"subjects"`

	// TotalCount - общее количество предметов.
	TotalCount int `json:"total_count"`
}

// ListSubjectsHandler обрабатывает запрос списка предметов.
type ListSubjectsHandler struct {
	subjects gradebook.SubjectRepository
}

// NewListSubjectsHandler создаёт обработчик.
func NewListSubjectsHandler(subjects gradebook.SubjectRepository) *ListSubjectsHandler {
	return &ListSubjectsHandler{subjects: subjects}
}

// Handle выполняет запрос.
func (h *ListSubjectsHandler) Handle(ctx context.Context) (*ListSubjectsResult, error) {
	subjects, err := h.subjects.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}

	dtos := make([]SubjectDTO, 0, len(subjects))
	for _, s := range subjects {
		dtos = append(dtos, SubjectDTO{
			ID:       s.ID,
			Name:     s.Name,
			ColorHex: s.ColorHex,
			Icon:     s.Icon,
		})
	}

	return &ListSubjectsResult{
		Subjects:   dtos,
		TotalCount: len(dtos),
	}, nil
}
