package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deinadmin/school-grade-hub/internal/application/command"
	"github.com/deinadmin/school-grade-hub/internal/application/eventhandler"
	"github.com/deinadmin/school-grade-hub/internal/application/query"
	"github.com/deinadmin/school-grade-hub/internal/application/selection"
	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
	"github.com/deinadmin/school-grade-hub/internal/domain/snapshot"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ─────────────────────────────────────────────────────────────────────────────

type memSubjectRepo struct {
	byID map[string]*gradebook.Subject
}

func (r *memSubjectRepo) Create(_ context.Context, s *gradebook.Subject) error {
	for _, existing := range r.byID {
		if existing.Name == s.Name {
			return gradebook.ErrSubjectAlreadyExists
		}
	}
	r.byID[s.ID] = s
	return nil
}

func (r *memSubjectRepo) GetByID(_ context.Context, id string) (*gradebook.Subject, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, gradebook.ErrSubjectNotFound
	}
	return s, nil
}

func (r *memSubjectRepo) GetByName(_ context.Context, name string) (*gradebook.Subject, error) {
	for _, s := range r.byID {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gradebook.ErrSubjectNotFound
}

func (r *memSubjectRepo) GetAll(_ context.Context) ([]*gradebook.Subject, error) {
	out := make([]*gradebook.Subject, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out, nil
}

func (r *memSubjectRepo) Update(_ context.Context, s *gradebook.Subject) error {
	if _, ok := r.byID[s.ID]; !ok {
		return gradebook.ErrSubjectNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *memSubjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return gradebook.ErrSubjectNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memSubjectRepo) Count(_ context.Context) (int, error) { return len(r.byID), nil }

type memGradeRepo struct {
	byID map[string]*gradebook.Grade
}

func (r *memGradeRepo) Create(_ context.Context, g *gradebook.Grade) error {
	r.byID[g.ID] = g
	return nil
}

func (r *memGradeRepo) GetByID(_ context.Context, id string) (*gradebook.Grade, error) {
	g, ok := r.byID[id]
	if !ok {
		return nil, gradebook.ErrGradeNotFound
	}
	return g, nil
}

func (r *memGradeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return gradebook.ErrGradeNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memGradeRepo) ListForSubject(_ context.Context, subjectID string, year period.SchoolYear, semester period.Semester) ([]*gradebook.Grade, error) {
	var out []*gradebook.Grade
	for _, g := range r.byID {
		if g.SubjectID == subjectID && g.Year.StartYear == year.StartYear && g.Semester == semester {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGradeRepo) ListForPeriod(_ context.Context, year period.SchoolYear, semester period.Semester) ([]*gradebook.Grade, error) {
	var out []*gradebook.Grade
	for _, g := range r.byID {
		if g.Year.StartYear == year.StartYear && g.Semester == semester {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGradeRepo) CountForPeriod(ctx context.Context, year period.SchoolYear, semester period.Semester) (int, error) {
	grades, _ := r.ListForPeriod(ctx, year, semester)
	return len(grades), nil
}

type memFinalGradeRepo struct {
	byKey map[string]*gradebook.FinalGrade
}

func finalKey(subjectID string, year period.SchoolYear, semester period.Semester) string {
	return fmt.Sprintf("%s/%d/%s", subjectID, year.StartYear, semester)
}

func (r *memFinalGradeRepo) Upsert(_ context.Context, fg *gradebook.FinalGrade) error {
	r.byKey[finalKey(fg.SubjectID, fg.Year, fg.Semester)] = fg
	return nil
}

func (r *memFinalGradeRepo) Get(_ context.Context, subjectID string, year period.SchoolYear, semester period.Semester) (*gradebook.FinalGrade, error) {
	fg, ok := r.byKey[finalKey(subjectID, year, semester)]
	if !ok {
		return nil, gradebook.ErrFinalGradeNotFound
	}
	return fg, nil
}

func (r *memFinalGradeRepo) Delete(_ context.Context, subjectID string, year period.SchoolYear, semester period.Semester) error {
	key := finalKey(subjectID, year, semester)
	if _, ok := r.byKey[key]; !ok {
		return gradebook.ErrFinalGradeNotFound
	}
	delete(r.byKey, key)
	return nil
}

func (r *memFinalGradeRepo) ListForPeriod(_ context.Context, year period.SchoolYear, semester period.Semester) ([]*gradebook.FinalGrade, error) {
	var out []*gradebook.FinalGrade
	for _, fg := range r.byKey {
		if fg.Year.StartYear == year.StartYear && fg.Semester == semester {
			out = append(out, fg)
		}
	}
	return out, nil
}

type memAssignmentRepo struct {
	byYear map[int]*grading.Assignment
}

func (r *memAssignmentRepo) Get(_ context.Context, startYear int) (*grading.Assignment, error) {
	a, ok := r.byYear[startYear]
	if !ok {
		return nil, grading.ErrAssignmentNotFound
	}
	return a, nil
}

func (r *memAssignmentRepo) Set(_ context.Context, a *grading.Assignment) error {
	r.byYear[a.StartYear] = a
	return nil
}

func (r *memAssignmentRepo) All(_ context.Context) ([]*grading.Assignment, error) {
	out := make([]*grading.Assignment, 0, len(r.byYear))
	for _, a := range r.byYear {
		out = append(out, a)
	}
	return out, nil
}

// memSnapshotStore implements snapshot.Store in memory.
type memSnapshotStore struct {
	widget    snapshot.Widget
	published bool
}

func (s *memSnapshotStore) Publish(_ context.Context, w snapshot.Widget) error {
	w.LastUpdate = time.Now().UTC()
	s.widget = w
	s.published = true
	return nil
}

func (s *memSnapshotStore) Clear(_ context.Context) error {
	s.widget = snapshot.Widget{}
	s.published = false
	return nil
}

func (s *memSnapshotStore) Read(_ context.Context) snapshot.Widget {
	if !s.published {
		return snapshot.Empty(time.Now())
	}
	return s.widget
}

func (s *memSnapshotStore) ValidateAccess(_ context.Context) bool { return true }

type okPinger struct{}

func (okPinger) Ping(_ context.Context) error { return nil }

type nopBus struct{}

func (nopBus) Subscribe(_ shared.EventType, _ shared.EventHandler) error { return nil }
func (nopBus) SubscribeAll(_ shared.EventHandler) error                  { return nil }
func (nopBus) Publish(_ context.Context, _ shared.Event) error           { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Test server
// ─────────────────────────────────────────────────────────────────────────────

func newTestServer(t *testing.T) (*Server, *memSnapshotStore) {
	t.Helper()

	subjects := &memSubjectRepo{byID: make(map[string]*gradebook.Subject)}
	grades := &memGradeRepo{byID: make(map[string]*gradebook.Grade)}
	finals := &memFinalGradeRepo{byKey: make(map[string]*gradebook.FinalGrade)}
	assignments := &memAssignmentRepo{byYear: make(map[int]*grading.Assignment)}
	store := &memSnapshotStore{}
	bus := nopBus{}

	sel := selection.New(time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC))
	overall := query.NewGetOverallAverageHandler(subjects, grades, finals)
	publisher := eventhandler.NewOnGradebookChangedHandler(overall, sel, store, slog.Default())

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0

	srv := NewServer(cfg, Dependencies{
		CreateSubjectHandler:       command.NewCreateSubjectHandler(subjects, bus),
		UpdateSubjectHandler:       command.NewUpdateSubjectHandler(subjects, bus),
		DeleteSubjectHandler:       command.NewDeleteSubjectHandler(subjects, bus),
		RecordGradeHandler:         command.NewRecordGradeHandler(subjects, grades, assignments, bus),
		DeleteGradeHandler:         command.NewDeleteGradeHandler(grades, bus),
		SetFinalGradeHandler:       command.NewSetFinalGradeHandler(subjects, finals, assignments, bus),
		RemoveFinalGradeHandler:    command.NewRemoveFinalGradeHandler(finals, assignments, bus),
		ChooseGradingSystemHandler: command.NewChooseGradingSystemHandler(assignments, sel, bus),
		SelectPeriodHandler:        command.NewSelectPeriodHandler(sel, assignments, bus),
		ListSubjectsHandler:        query.NewListSubjectsHandler(subjects),
		GetGradesHandler:           query.NewGetGradesHandler(subjects, grades),
		GetSubjectAverageHandler:   query.NewGetSubjectAverageHandler(grades, finals),
		GetOverallAverageHandler:   overall,
		Selection:                  sel,
		Assignments:                assignments,
		SnapshotStore:              store,
		SnapshotPublisher:          publisher,
		DBPinger:                   okPinger{},
	})

	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, JSONResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	var resp JSONResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func createSubject(t *testing.T, srv *Server, name string) string {
	t.Helper()

	rec, resp := doRequest(t, srv, http.MethodPost, "/api/v1/subjects",
		map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code)

	data := resp.Data.(map[string]interface{})
	id, _ := data["SubjectID"].(string)
	require.NotEmpty(t, id)
	return id
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestSubjectLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	id := createSubject(t, srv, "Mathematik")

	// Duplicate names conflict.
	rec, resp := doRequest(t, srv, http.MethodPost, "/api/v1/subjects",
		map[string]string{"name": "Mathematik"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)

	rec, resp = doRequest(t, srv, http.MethodGet, "/api/v1/subjects", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total_count"])

	rec, _ = doRequest(t, srv, http.MethodPut, "/api/v1/subjects/"+id,
		map[string]string{"name": "Mathe LK"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, srv, http.MethodDelete, "/api/v1/subjects/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, srv, http.MethodDelete, "/api/v1/subjects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordGradeAndAverage(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSubject(t, srv, "Deutsch")

	rec, _ := doRequest(t, srv, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"subject_id": id,
		"type_name":  "major_exam",
		"value":      2.0,
		"start_year": 2024,
		"semester":   "first",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doRequest(t, srv, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"subject_id": id,
		"type_name":  "homework",
		"value":      1.0,
		"start_year": 2024,
		"semester":   "first",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doRequest(t, srv, http.MethodGet,
		"/api/v1/subjects/"+id+"/average?year=2024&semester=first", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["present"])
	assert.InDelta(t, 1.75, data["value"].(float64), 1e-9)
	assert.Equal(t, "computed", data["source"])
}

func TestRecordGrade_OutOfRangeIsUnprocessable(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSubject(t, srv, "Physik")

	rec, resp := doRequest(t, srv, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"subject_id": id,
		"type_name":  "test",
		"value":      14.0,
		"start_year": 2024,
		"semester":   "first",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_failed", resp.Error.Code)
}

func TestFinalGradeOverride(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSubject(t, srv, "Chemie")

	rec, _ := doRequest(t, srv, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"subject_id": id,
		"type_name":  "test",
		"value":      4.0,
		"start_year": 2024,
		"semester":   "first",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doRequest(t, srv, http.MethodPut, "/api/v1/subjects/"+id+"/final-grade",
		map[string]interface{}{
			"value":      2.0,
			"start_year": 2024,
			"semester":   "first",
		})
	require.Equal(t, http.StatusOK, rec.Code)

	_, resp := doRequest(t, srv, http.MethodGet,
		"/api/v1/subjects/"+id+"/average?year=2024&semester=first", nil)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, 2.0, data["value"])
	assert.Equal(t, "final", data["source"])

	rec, _ = doRequest(t, srv, http.MethodDelete, "/api/v1/subjects/"+id+"/final-grade?year=2024&semester=first", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, resp = doRequest(t, srv, http.MethodGet,
		"/api/v1/subjects/"+id+"/average?year=2024&semester=first", nil)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, "computed", data["source"])
}

func TestChooseGradingSystem_InvalidSystem(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodPut, "/api/v1/grading-system",
		map[string]interface{}{"start_year": 2024, "system": "percentage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_system", resp.Error.Code)
}

func TestPeriodSelection(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodPut, "/api/v1/period",
		map[string]interface{}{"start_year": 2023, "semester": "second"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, resp := doRequest(t, srv, http.MethodGet, "/api/v1/period", nil)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2023), data["start_year"])
	assert.Equal(t, "second", data["semester"])
}

func TestSnapshotEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	id := createSubject(t, srv, "Biologie")

	// Match the period the server's selection points at (September 2024).
	rec, _ := doRequest(t, srv, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"subject_id": id,
		"type_name":  "test",
		"value":      1.7,
		"start_year": 2024,
		"semester":   "first",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doRequest(t, srv, http.MethodPost, "/api/v1/snapshot/publish", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, store.published)
	assert.Equal(t, 1.7, *store.widget.OverallAverage)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["populated"])

	rec, _ = doRequest(t, srv, http.MethodPost, "/api/v1/snapshot/clear", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.published)

	rec, resp = doRequest(t, srv, http.MethodGet, "/api/v1/snapshot/validate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["accessible"])
}

func TestUnknownSubjectIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet,
		"/api/v1/subjects/missing/average?year=2024&semester=first", nil)
	assert.Equal(t, http.StatusOK, rec.Code) // averages over no data are absent, not 404
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["present"])

	rec, _ = doRequest(t, srv, http.MethodDelete, "/api/v1/subjects/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
