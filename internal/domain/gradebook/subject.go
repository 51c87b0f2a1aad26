// Package gradebook содержит доменную модель журнала оценок:
// предметы, типы оценок, оценки и итоговые оценки.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package gradebook

import (
	"errors"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrSubjectNotFound - предмет не найден.
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrSubjectAlreadyExists - предмет с таким именем уже существует.
	ErrSubjectAlreadyExists = errors.New("subject already exists")

	// ErrInvalidSubjectName - недопустимое имя предмета.
	ErrInvalidSubjectName = errors.New("invalid subject name: must be 1-100 chars")

	// ErrGradeNotFound - оценка не найдена.
	ErrGradeNotFound = errors.New("grade not found")

	// ErrFinalGradeNotFound - итоговая оценка не найдена.
	ErrFinalGradeNotFound = errors.New("final grade not found")

	// ErrValueOutOfRange - значение оценки вне диапазона системы года.
	ErrValueOutOfRange = errors.New("grade value out of range for the school year's grading system")

	// ErrUnknownGradeType - неизвестный тип оценки.
	ErrUnknownGradeType = errors.New("unknown grade type")
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT
// Предмет - долгоживущий корень агрегата. Предметы НЕ привязаны к учебному
// году или полугодию: к периодам привязаны только их оценки.
// ══════════════════════════════════════════════════════════════════════════════

// Subject представляет учебный предмет.
type Subject struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - имя предмета; непустое, уникальный ключ группировки.
	Name string

	// ColorHex - цвет предмета в hex-формате (например, "#2E7D32").
	ColorHex string

	// Icon - символьное имя иконки предмета.
	Icon string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewSubjectParams содержит параметры для создания предмета.
type NewSubjectParams struct {
	ID       string
	Name     string
	ColorHex string
	Icon     string
}

// NewSubject создаёт предмет с валидацией всех полей.
func NewSubject(params NewSubjectParams) (*Subject, error) {
	if params.ID == "" {
		return nil, errors.New("subject id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidSubjectName
	}

	colorHex := params.ColorHex
	if colorHex == "" {
		colorHex = "#808080"
	}

	icon := params.Icon
	if icon == "" {
		icon = "book"
	}

	now := time.Now().UTC()
	return &Subject{
		ID:        params.ID,
		Name:      name,
		ColorHex:  colorHex,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename меняет имя предмета с валидацией.
func (s *Subject) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return ErrInvalidSubjectName
	}
	s.Name = name
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Restyle меняет цвет и иконку предмета.
func (s *Subject) Restyle(colorHex, icon string) {
	if colorHex != "" {
		s.ColorHex = colorHex
	}
	if icon != "" {
		s.Icon = icon
	}
	s.UpdatedAt = time.Now().UTC()
}
