package period

import (
	"fmt"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHOOL YEAR
// Учебный год немецкого календаря: начинается в августе.
// Идентичность определяется парой (StartYear, System).
// ══════════════════════════════════════════════════════════════════════════════

// Границы выбираемых учебных годов.
const (
	MinStartYear = 2000
	MaxStartYear = 2099
)

// schoolYearStartMonth - месяц начала учебного года (август).
const schoolYearStartMonth = time.August

// SchoolYear представляет учебный год с действующей системой оценивания.
type SchoolYear struct {
	// StartYear - год начала (например, 2024 для года 2024/2025).
	StartYear int

	// System - система оценивания этого учебного года.
	System grading.System
}

// EndYear возвращает год окончания (StartYear + 1).
func (y SchoolYear) EndYear() int {
	return y.StartYear + 1
}

// DisplayName возвращает название в фиксированном формате "2024/2025".
func (y SchoolYear) DisplayName() string {
	return fmt.Sprintf("%d/%d", y.StartYear, y.EndYear())
}

// IsSelectable проверяет, попадает ли год в допустимый диапазон выбора.
func (y SchoolYear) IsSelectable() bool {
	return y.StartYear >= MinStartYear && y.StartYear <= MaxStartYear
}

// Equal сравнивает учебные годы по (StartYear, System).
func (y SchoolYear) Equal(other SchoolYear) bool {
	return y.StartYear == other.StartYear && y.System == other.System
}

// WithSystem возвращает копию года с другой системой оценивания.
func (y SchoolYear) WithSystem(system grading.System) SchoolYear {
	y.System = system
	return y
}

// Current возвращает текущий учебный год на указанную дату.
// Если месяц >= августа, год начинается в текущем календарном году,
// иначе - в предыдущем (немецкий учебный календарь).
func Current(now time.Time) SchoolYear {
	startYear := now.Year()
	if now.Month() < schoolYearStartMonth {
		startYear--
	}
	return SchoolYear{StartYear: startYear, System: grading.DefaultSystem}
}

// FromPersisted восстанавливает учебный год из сохранённой пары
// (startYear, rawSystem). Неположительный startYear означает, что
// год ещё не сохранялся - возвращается текущий год. Нераспознанный
// тег системы откатывается к системе по умолчанию.
func FromPersisted(startYear int, rawSystem string, now time.Time) SchoolYear {
	if startYear <= 0 {
		year := Current(now)
		year.System = grading.ParseSystem(rawSystem)
		return year
	}
	return SchoolYear{
		StartYear: startYear,
		System:    grading.ParseSystem(rawSystem),
	}
}

// SelectableYears возвращает все выбираемые учебные годы с указанной
// системой, от новых к старым.
func SelectableYears(system grading.System) []SchoolYear {
	years := make([]SchoolYear, 0, MaxStartYear-MinStartYear+1)
	for start := MaxStartYear; start >= MinStartYear; start-- {
		years = append(years, SchoolYear{StartYear: start, System: system})
	}
	return years
}

// String возвращает строковое представление для логирования.
func (y SchoolYear) String() string {
	return fmt.Sprintf("SchoolYear{%s, %s}", y.DisplayName(), y.System)
}
