// Package selection хранит текущий выбор периода основного процесса:
// учебный год и полугодие, для которых публикуется снапшот виджета.
package selection

import (
	"context"
	"sync"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// Selection - потокобезопасный держатель выбранного периода.
// По умолчанию выбран текущий учебный год и первое полугодие.
type Selection struct {
	mu       sync.RWMutex
	year     period.SchoolYear
	semester period.Semester
}

// New создаёт выбор периода по умолчанию на указанный момент времени.
func New(now time.Time) *Selection {
	return &Selection{
		year:     period.Current(now),
		semester: period.DefaultSemester,
	}
}

// NewResolved создаёт выбор по умолчанию, разрешая систему оценивания
// текущего года через хранилище назначений. Без этого после перезапуска
// первая публикация снапшота штамповала бы систему по умолчанию, даже
// если для года явно выбрана пунктовая.
func NewResolved(ctx context.Context, now time.Time, assignments grading.AssignmentRepository) (*Selection, error) {
	s := New(now)
	system, err := grading.SystemForYear(ctx, assignments, s.year.StartYear)
	if err != nil {
		return nil, err
	}
	s.year.System = system
	return s, nil
}

// Current возвращает выбранный период.
func (s *Selection) Current() (period.SchoolYear, period.Semester) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.year, s.semester
}

// Set меняет выбранный период.
func (s *Selection) Set(year period.SchoolYear, semester period.Semester) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !semester.IsValid() {
		semester = period.DefaultSemester
	}
	s.year = year
	s.semester = semester
}

// SetSystem меняет систему оценивания выбранного года, не трогая сам период.
// Вызывается после явной смены системы пользователем.
func (s *Selection) SetSystem(startYear int, system grading.System) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.year.StartYear == startYear {
		s.year.System = system
	}
}
