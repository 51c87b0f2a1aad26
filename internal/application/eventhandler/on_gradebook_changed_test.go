package eventhandler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deinadmin/school-grade-hub/internal/application/query"
	"github.com/deinadmin/school-grade-hub/internal/application/selection"
	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
	"github.com/deinadmin/school-grade-hub/internal/domain/snapshot"
)

// capturingPublisher records published snapshots.
type capturingPublisher struct {
	published []snapshot.Widget
	cleared   int
	err       error
}

func (p *capturingPublisher) Publish(_ context.Context, w snapshot.Widget) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, w)
	return nil
}

func (p *capturingPublisher) Clear(_ context.Context) error {
	p.cleared++
	return nil
}

type stubSubjectRepo struct {
	subjects []*gradebook.Subject
	err      error
}

func (r *stubSubjectRepo) Create(_ context.Context, _ *gradebook.Subject) error { return nil }

func (r *stubSubjectRepo) GetByID(_ context.Context, _ string) (*gradebook.Subject, error) {
	return nil, gradebook.ErrSubjectNotFound
}

func (r *stubSubjectRepo) GetByName(_ context.Context, _ string) (*gradebook.Subject, error) {
	return nil, gradebook.ErrSubjectNotFound
}

func (r *stubSubjectRepo) GetAll(_ context.Context) ([]*gradebook.Subject, error) {
	return r.subjects, r.err
}

func (r *stubSubjectRepo) Update(_ context.Context, _ *gradebook.Subject) error { return nil }
func (r *stubSubjectRepo) Delete(_ context.Context, _ string) error             { return nil }
func (r *stubSubjectRepo) Count(_ context.Context) (int, error)                 { return len(r.subjects), nil }

type stubGradeRepo struct {
	grades []*gradebook.Grade
}

func (r *stubGradeRepo) Create(_ context.Context, _ *gradebook.Grade) error { return nil }

func (r *stubGradeRepo) GetByID(_ context.Context, _ string) (*gradebook.Grade, error) {
	return nil, gradebook.ErrGradeNotFound
}

func (r *stubGradeRepo) Delete(_ context.Context, _ string) error { return nil }

func (r *stubGradeRepo) ListForSubject(_ context.Context, subjectID string, _ period.SchoolYear, _ period.Semester) ([]*gradebook.Grade, error) {
	var out []*gradebook.Grade
	for _, g := range r.grades {
		if g.SubjectID == subjectID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *stubGradeRepo) ListForPeriod(_ context.Context, _ period.SchoolYear, _ period.Semester) ([]*gradebook.Grade, error) {
	return r.grades, nil
}

func (r *stubGradeRepo) CountForPeriod(_ context.Context, _ period.SchoolYear, _ period.Semester) (int, error) {
	return len(r.grades), nil
}

type stubFinalGradeRepo struct{}

func (stubFinalGradeRepo) Upsert(_ context.Context, _ *gradebook.FinalGrade) error { return nil }

func (stubFinalGradeRepo) Get(_ context.Context, _ string, _ period.SchoolYear, _ period.Semester) (*gradebook.FinalGrade, error) {
	return nil, gradebook.ErrFinalGradeNotFound
}

func (stubFinalGradeRepo) Delete(_ context.Context, _ string, _ period.SchoolYear, _ period.Semester) error {
	return nil
}

func (stubFinalGradeRepo) ListForPeriod(_ context.Context, _ period.SchoolYear, _ period.Semester) ([]*gradebook.FinalGrade, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, subjects *stubSubjectRepo, grades *stubGradeRepo, pub *capturingPublisher) (*OnGradebookChangedHandler, *selection.Selection) {
	t.Helper()

	overall := query.NewGetOverallAverageHandler(subjects, grades, stubFinalGradeRepo{})
	sel := selection.New(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC))
	return NewOnGradebookChangedHandler(overall, sel, pub, slog.Default()), sel
}

func mustSubject(t *testing.T, id, name string) *gradebook.Subject {
	t.Helper()
	s, err := gradebook.NewSubject(gradebook.NewSubjectParams{ID: id, Name: name})
	require.NoError(t, err)
	return s
}

func mustGrade(t *testing.T, id, subjectID string, value float64) *gradebook.Grade {
	t.Helper()
	g, err := gradebook.NewGrade(gradebook.NewGradeParams{
		ID:        id,
		SubjectID: subjectID,
		Type:      gradebook.GradeTypeTest,
		Value:     value,
		Year:      period.SchoolYear{StartYear: 2024, System: grading.SystemTraditional},
		Semester:  period.SemesterFirst,
	})
	require.NoError(t, err)
	return g
}

func TestBuildSnapshot(t *testing.T) {
	subjects := &stubSubjectRepo{subjects: []*gradebook.Subject{mustSubject(t, "sub-1", "Mathematik")}}
	grades := &stubGradeRepo{grades: []*gradebook.Grade{mustGrade(t, "g-1", "sub-1", 2.0)}}
	handler, sel := newTestHandler(t, subjects, grades, &capturingPublisher{})

	w, err := handler.BuildSnapshot(context.Background())
	require.NoError(t, err)

	year, semester := sel.Current()
	require.True(t, w.HasAverage())
	assert.Equal(t, 2.0, *w.OverallAverage)
	assert.Equal(t, 1, w.SubjectCount)
	assert.Equal(t, 1, w.GradeCount)
	assert.Equal(t, year.StartYear, w.Year.StartYear)
	assert.Equal(t, semester, w.Semester)
}

func TestBuildSnapshot_EmptyGradebook(t *testing.T) {
	handler, _ := newTestHandler(t, &stubSubjectRepo{}, &stubGradeRepo{}, &capturingPublisher{})

	w, err := handler.BuildSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, w.HasAverage())
	assert.Zero(t, w.SubjectCount)
}

func TestHandle_PublishesOnEveryEvent(t *testing.T) {
	pub := &capturingPublisher{}
	subjects := &stubSubjectRepo{subjects: []*gradebook.Subject{mustSubject(t, "sub-1", "Mathematik")}}
	grades := &stubGradeRepo{grades: []*gradebook.Grade{mustGrade(t, "g-1", "sub-1", 1.3)}}
	handler, _ := newTestHandler(t, subjects, grades, pub)

	err := handler.Handle(context.Background(), shared.NewBaseEvent(shared.EventGradeRecorded, "g-1"))
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, 1.3, *pub.published[0].OverallAverage)
}

func TestHandle_AggregationFailureKeepsOldSnapshot(t *testing.T) {
	pub := &capturingPublisher{}
	subjects := &stubSubjectRepo{err: errors.New("connection refused")}
	handler, _ := newTestHandler(t, subjects, &stubGradeRepo{}, pub)

	// The handler swallows the failure: the previous snapshot stays valid
	// and the command that triggered the event is not poisoned.
	err := handler.Handle(context.Background(), shared.NewBaseEvent(shared.EventGradeRecorded, "g-1"))
	assert.NoError(t, err)
	assert.Empty(t, pub.published)
}

func TestPublishSnapshot_StoreFailureIsSwallowed(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("store down")}
	handler, _ := newTestHandler(t, &stubSubjectRepo{}, &stubGradeRepo{}, pub)

	w, err := handler.BuildSnapshot(context.Background())
	require.NoError(t, err)

	// Best-effort: no panic, no error surfaced.
	handler.PublishSnapshot(context.Background(), w)
	assert.Empty(t, pub.published)
}
