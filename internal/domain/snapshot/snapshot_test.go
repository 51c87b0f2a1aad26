package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

func TestEmpty(t *testing.T) {
	now := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)
	w := Empty(now)

	assert.False(t, w.HasAverage())
	assert.Zero(t, w.SubjectCount)
	assert.Zero(t, w.GradeCount)
	assert.Equal(t, 2025, w.Year.StartYear)
	assert.Equal(t, period.DefaultSemester, w.Semester)
	assert.False(t, w.IsPopulated())
}

func TestHasAverage_AbsentIsNotZero(t *testing.T) {
	absent := Widget{OverallAverage: nil}
	zero := Widget{OverallAverage: Float64Ptr(0)}

	assert.False(t, absent.HasAverage())
	assert.True(t, zero.HasAverage())
	assert.False(t, absent.Equal(zero))
}

func TestAge(t *testing.T) {
	now := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)

	w := Widget{LastUpdate: now.Add(-90 * time.Minute)}
	assert.Equal(t, 90*time.Minute, w.Age(now))
	assert.True(t, w.IsPopulated())

	never := Widget{}
	assert.Equal(t, time.Duration(0), never.Age(now))
}

func TestEqual_IgnoresLastUpdate(t *testing.T) {
	year := period.SchoolYear{StartYear: 2024, System: grading.SystemTraditional}
	a := Widget{
		OverallAverage: Float64Ptr(2.3),
		SubjectCount:   4,
		GradeCount:     17,
		Year:           year,
		Semester:       period.SemesterFirst,
		LastUpdate:     time.Now(),
	}
	b := a
	b.LastUpdate = time.Time{}

	assert.True(t, a.Equal(b))

	b.GradeCount = 18
	assert.False(t, a.Equal(b))
}
