// Package period содержит модель учебных периодов: учебный год и полугодие.
// Это чистые value-типы без собственной идентичности в хранилище.
package period

// ══════════════════════════════════════════════════════════════════════════════
// SEMESTER
// ══════════════════════════════════════════════════════════════════════════════

// Semester представляет полугодие учебного года.
type Semester string

const (
	// SemesterFirst - первое полугодие.
	SemesterFirst Semester = "first"

	// SemesterSecond - второе полугодие.
	SemesterSecond Semester = "second"
)

// DefaultSemester - полугодие по умолчанию для нераспознанных тегов.
const DefaultSemester = SemesterFirst

// IsValid проверяет, что полугодие корректно.
func (s Semester) IsValid() bool {
	return s == SemesterFirst || s == SemesterSecond
}

// DisplayName возвращает полное название полугодия.
func (s Semester) DisplayName() string {
	if s == SemesterSecond {
		return "2. Halbjahr"
	}
	return "1. Halbjahr"
}

// ShortName возвращает сокращённое название полугодия.
func (s Semester) ShortName() string {
	if s == SemesterSecond {
		return "HJ 2"
	}
	return "HJ 1"
}

// String возвращает тег полугодия для персистентности.
func (s Semester) String() string {
	return string(s)
}

// ParseSemester восстанавливает полугодие из сохранённого тега.
// Нераспознанный тег не является ошибкой - возвращается DefaultSemester,
// чтобы старый читатель не падал на теге более новой версии.
func ParseSemester(raw string) Semester {
	s := Semester(raw)
	if !s.IsValid() {
		return DefaultSemester
	}
	return s
}
