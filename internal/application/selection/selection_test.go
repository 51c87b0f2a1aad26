package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

type fakeAssignmentRepo struct {
	assignments map[int]*grading.Assignment
	getErr      error
	setCalls    int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[int]*grading.Assignment)}
}

func (r *fakeAssignmentRepo) Get(_ context.Context, startYear int) (*grading.Assignment, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	a, ok := r.assignments[startYear]
	if !ok {
		return nil, grading.ErrAssignmentNotFound
	}
	return a, nil
}

func (r *fakeAssignmentRepo) Set(_ context.Context, a *grading.Assignment) error {
	r.setCalls++
	r.assignments[a.StartYear] = a
	return nil
}

func (r *fakeAssignmentRepo) All(_ context.Context) ([]*grading.Assignment, error) {
	out := make([]*grading.Assignment, 0, len(r.assignments))
	for _, a := range r.assignments {
		out = append(out, a)
	}
	return out, nil
}

var september2024 = time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

func TestNew_Defaults(t *testing.T) {
	sel := New(september2024)

	year, semester := sel.Current()
	assert.Equal(t, 2024, year.StartYear)
	assert.Equal(t, grading.DefaultSystem, year.System)
	assert.Equal(t, period.DefaultSemester, semester)
}

func TestNewResolved_UsesStoredSystem(t *testing.T) {
	repo := newFakeAssignmentRepo()
	a, err := grading.NewAssignment(2024, grading.SystemPoints)
	require.NoError(t, err)
	require.NoError(t, repo.Set(context.Background(), a))

	// A restart must pick up the year's chosen system, not the default.
	sel, err := NewResolved(context.Background(), september2024, repo)
	require.NoError(t, err)

	year, _ := sel.Current()
	assert.Equal(t, 2024, year.StartYear)
	assert.Equal(t, grading.SystemPoints, year.System)
}

func TestNewResolved_LazilyAssignsDefault(t *testing.T) {
	repo := newFakeAssignmentRepo()

	sel, err := NewResolved(context.Background(), september2024, repo)
	require.NoError(t, err)

	year, _ := sel.Current()
	assert.Equal(t, grading.DefaultSystem, year.System)
	assert.Equal(t, 1, repo.setCalls)
}

func TestNewResolved_StoreErrorPropagates(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.getErr = errors.New("connection refused")

	_, err := NewResolved(context.Background(), september2024, repo)
	assert.Error(t, err)
}

func TestSetSystem_OnlyAffectsSelectedYear(t *testing.T) {
	sel := New(september2024)

	sel.SetSystem(2023, grading.SystemPoints)
	year, _ := sel.Current()
	assert.Equal(t, grading.DefaultSystem, year.System)

	sel.SetSystem(2024, grading.SystemPoints)
	year, _ = sel.Current()
	assert.Equal(t, grading.SystemPoints, year.System)
}
