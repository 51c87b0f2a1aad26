// Package grading содержит определения систем оценивания немецкой школы.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package grading

import "errors"

// ══════════════════════════════════════════════════════════════════════════════
// GRADING SYSTEM
// ══════════════════════════════════════════════════════════════════════════════

// System определяет систему оценивания, действующую в учебном году.
// Система фиксируется для учебного года и меняется только явным
// действием пользователя.
type System string

const (
	// SystemTraditional - традиционная шкала 1-6 (0.7 лучшая, 6.0 худшая).
	SystemTraditional System = "traditional"

	// SystemPoints - пунктовая шкала старшей школы 0-15 (15 лучшая, 0 худшая).
	SystemPoints System = "points"
)

// DefaultSystem - система по умолчанию для нераспознанных тегов
// и новых учебных годов.
const DefaultSystem = SystemTraditional

// IsValid проверяет, что система корректна.
func (s System) IsValid() bool {
	return s == SystemTraditional || s == SystemPoints
}

// MinValue возвращает минимально допустимое значение оценки.
func (s System) MinValue() float64 {
	if s == SystemPoints {
		return 0.0
	}
	return 0.7
}

// MaxValue возвращает максимально допустимое значение оценки.
func (s System) MaxValue() float64 {
	if s == SystemPoints {
		return 15.0
	}
	return 6.0
}

// Contains проверяет, попадает ли значение в допустимый диапазон системы.
func (s System) Contains(value float64) bool {
	return value >= s.MinValue() && value <= s.MaxValue()
}

// LowerIsBetter возвращает true, если меньшее значение означает лучший результат.
func (s System) LowerIsBetter() bool {
	return s != SystemPoints
}

// DisplayName возвращает человекочитаемое название системы.
func (s System) DisplayName() string {
	if s == SystemPoints {
		return "Punkte (0-15)"
	}
	return "Noten (1-6)"
}

// String возвращает тег системы для персистентности.
func (s System) String() string {
	return string(s)
}

// ParseSystem восстанавливает систему из сохранённого тега.
// Нераспознанный тег (например, из более новой версии) не является
// ошибкой - возвращается DefaultSystem.
func ParseSystem(raw string) System {
	s := System(raw)
	if !s.IsValid() {
		return DefaultSystem
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrAssignmentNotFound - назначение системы для года не найдено.
	ErrAssignmentNotFound = errors.New("grading system assignment not found")

	// ErrInvalidStartYear - недопустимый начальный год.
	ErrInvalidStartYear = errors.New("invalid start year: must be between 2000 and 2099")
)
