// Package snapshot содержит модель снапшота для виджета - производного
// среза агрегированных результатов, который публикуется в общее
// межпроцессное хранилище и читается процессом-рендерером.
package snapshot

import (
	"fmt"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// ══════════════════════════════════════════════════════════════════════════════
// WIDGET SNAPSHOT
// Снапшот - не сырые сущности, а уже агрегированные значения. Читатель
// не имеет пути восстановления, поэтому чтение всегда тотально: при любом
// сбое возвращается корректный пустой снапшот.
// ══════════════════════════════════════════════════════════════════════════════

// Widget представляет опубликованное состояние для процесса-виджета.
type Widget struct {
	// OverallAverage - общий средний балл выбранного периода.
	// nil означает "данных нет" и отличается от нуля.
	OverallAverage *float64

	// SubjectCount - количество предметов с данными в периоде.
	SubjectCount int

	// GradeCount - количество оценок в периоде.
	GradeCount int

	// Year - выбранный учебный год.
	Year period.SchoolYear

	// Semester - выбранное полугодие.
	Semester period.Semester

	// LastUpdate - время последней публикации. Нулевое время означает,
	// что публикации ещё не было.
	LastUpdate time.Time
}

// Empty возвращает чётко определённый пустой снапшот:
// среднего нет, счётчики нулевые, период - текущий год / первое
// полугодие / традиционная система.
func Empty(now time.Time) Widget {
	return Widget{
		OverallAverage: nil,
		SubjectCount:   0,
		GradeCount:     0,
		Year:           period.Current(now),
		Semester:       period.DefaultSemester,
	}
}

// HasAverage возвращает true, если общий средний балл присутствует.
func (w Widget) HasAverage() bool {
	return w.OverallAverage != nil
}

// IsPopulated возвращает true, если снапшот хотя бы раз публиковался.
func (w Widget) IsPopulated() bool {
	return !w.LastUpdate.IsZero()
}

// Age возвращает возраст снапшота. Данные не устаревают автоматически:
// решение показывать ли устаревший снапшот принимает вызывающая сторона.
func (w Widget) Age(now time.Time) time.Duration {
	if w.LastUpdate.IsZero() {
		return 0
	}
	return now.Sub(w.LastUpdate)
}

// Equal сравнивает снапшоты по всем полям, кроме LastUpdate.
func (w Widget) Equal(other Widget) bool {
	if w.HasAverage() != other.HasAverage() {
		return false
	}
	if w.HasAverage() && *w.OverallAverage != *other.OverallAverage {
		return false
	}
	return w.SubjectCount == other.SubjectCount &&
		w.GradeCount == other.GradeCount &&
		w.Year.Equal(other.Year) &&
		w.Semester == other.Semester
}

// String возвращает строковое представление для логирования.
func (w Widget) String() string {
	avg := "absent"
	if w.HasAverage() {
		avg = fmt.Sprintf("%.3f", *w.OverallAverage)
	}
	return fmt.Sprintf(
		"Widget{Avg: %s, Subjects: %d, Grades: %d, Period: %s %s, System: %s}",
		avg, w.SubjectCount, w.GradeCount,
		w.Year.DisplayName(), w.Semester.ShortName(), w.Year.System,
	)
}

// Float64Ptr - вспомогательная функция для построения снапшотов.
func Float64Ptr(v float64) *float64 {
	return &v
}
