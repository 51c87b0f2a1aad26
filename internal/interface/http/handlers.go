// Package http implements the JSON API of the primary process.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/application/command"
	"github.com/deinadmin/school-grade-hub/internal/application/query"
	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "School Grade Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":   "/health",
			"subjects": "/api/v1/subjects",
			"average":  "/api/v1/average",
			"period":   "/api/v1/period",
			"snapshot": "/api/v1/snapshot",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	}

	healthy := true
	if s.deps.DBPinger != nil {
		if err := s.deps.DBPinger.Ping(r.Context()); err != nil {
			healthy = false
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}
	if s.deps.SnapshotStore != nil {
		if s.deps.SnapshotStore.ValidateAccess(r.Context()) {
			status["snapshot_store"] = "ok"
		} else {
			healthy = false
			status["snapshot_store"] = "unreachable"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.DBPinger != nil {
		if err := s.deps.DBPinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListSubjectsHandler.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type createSubjectRequest struct {
	Name     string `json:"name"`
	ColorHex string `json:"color_hex"`
	Icon     string `json:"icon"`
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req createSubjectRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CreateSubjectHandler.Handle(r.Context(), command.CreateSubjectCommand{
		Name:     req.Name,
		ColorHex: req.ColorHex,
		Icon:     req.Icon,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type updateSubjectRequest struct {
	Name     string `json:"name"`
	ColorHex string `json:"color_hex"`
	Icon     string `json:"icon"`
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	var req updateSubjectRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	err := s.deps.UpdateSubjectHandler.Handle(r.Context(), command.UpdateSubjectCommand{
		SubjectID: r.PathValue("id"),
		Name:      req.Name,
		ColorHex:  req.ColorHex,
		Icon:      req.Icon,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"subject_id": r.PathValue("id")})
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteSubjectHandler.Handle(r.Context(), command.DeleteSubjectCommand{
		SubjectID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordGradeRequest struct {
	SubjectID string  `json:"subject_id"`
	TypeName  string  `json:"type_name"`
	Value     float64 `json:"value"`
	StartYear int     `json:"start_year"`
	Semester  string  `json:"semester"`
	Date      *string `json:"date"`
}

func (s *Server) handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	var req recordGradeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	year, semester := s.resolvePeriod(r, req.StartYear, req.Semester)

	var date *time.Time
	if req.Date != nil {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		date = &parsed
	}

	result, err := s.deps.RecordGradeHandler.Handle(r.Context(), command.RecordGradeCommand{
		SubjectID: req.SubjectID,
		TypeName:  req.TypeName,
		Value:     req.Value,
		StartYear: year.StartYear,
		Semester:  semester,
		Date:      date,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleDeleteGrade(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteGradeHandler.Handle(r.Context(), command.DeleteGradeCommand{
		GradeID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}

func (s *Server) handleGetGrades(w http.ResponseWriter, r *http.Request) {
	year, semester := s.periodFromQuery(r)

	result, err := s.deps.GetGradesHandler.Handle(r.Context(), query.GetGradesQuery{
		SubjectID: r.PathValue("id"),
		Year:      year,
		Semester:  semester,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetSubjectAverage(w http.ResponseWriter, r *http.Request) {
	year, semester := s.periodFromQuery(r)

	result, err := s.deps.GetSubjectAverageHandler.Handle(r.Context(), query.GetSubjectAverageQuery{
		SubjectID: r.PathValue("id"),
		Year:      year,
		Semester:  semester,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetOverallAverage(w http.ResponseWriter, r *http.Request) {
	year, semester := s.periodFromQuery(r)

	result, err := s.deps.GetOverallAverageHandler.Handle(r.Context(), query.GetOverallAverageQuery{
		Year:     year,
		Semester: semester,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// FINAL GRADE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type setFinalGradeRequest struct {
	Value     float64 `json:"value"`
	StartYear int     `json:"start_year"`
	Semester  string  `json:"semester"`
}

func (s *Server) handleSetFinalGrade(w http.ResponseWriter, r *http.Request) {
	var req setFinalGradeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	year, semester := s.resolvePeriod(r, req.StartYear, req.Semester)

	err := s.deps.SetFinalGradeHandler.Handle(r.Context(), command.SetFinalGradeCommand{
		SubjectID: r.PathValue("id"),
		Value:     req.Value,
		StartYear: year.StartYear,
		Semester:  semester,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"subject_id": r.PathValue("id")})
}

func (s *Server) handleRemoveFinalGrade(w http.ResponseWriter, r *http.Request) {
	year, semester := s.periodFromQuery(r)

	err := s.deps.RemoveFinalGradeHandler.Handle(r.Context(), command.RemoveFinalGradeCommand{
		SubjectID: r.PathValue("id"),
		StartYear: year.StartYear,
		Semester:  semester,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"subject_id": r.PathValue("id")})
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type chooseGradingSystemRequest struct {
	StartYear int    `json:"start_year"`
	System    string `json:"system"`
}

func (s *Server) handleChooseGradingSystem(w http.ResponseWriter, r *http.Request) {
	var req chooseGradingSystemRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	system := grading.System(req.System)
	if !system.IsValid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_system", "system must be traditional or points")
		return
	}

	err := s.deps.ChooseGradingSystemHandler.Handle(r.Context(), command.ChooseGradingSystemCommand{
		StartYear: req.StartYear,
		System:    system,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"start_year": req.StartYear,
		"system":     string(system),
	})
}

type selectPeriodRequest struct {
	StartYear int    `json:"start_year"`
	Semester  string `json:"semester"`
}

func (s *Server) handleSelectPeriod(w http.ResponseWriter, r *http.Request) {
	var req selectPeriodRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	err := s.deps.SelectPeriodHandler.Handle(r.Context(), command.SelectPeriodCommand{
		StartYear: req.StartYear,
		Semester:  period.ParseSemester(req.Semester),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	year, semester := s.deps.Selection.Current()
	writeJSON(w, http.StatusOK, periodDTO(year, semester))
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	year, semester := s.deps.Selection.Current()
	writeJSON(w, http.StatusOK, periodDTO(year, semester))
}

func periodDTO(year period.SchoolYear, semester period.Semester) map[string]interface{} {
	return map[string]interface{}{
		"start_year":   year.StartYear,
		"display_name": year.DisplayName(),
		"system":       string(year.System),
		"semester":     string(semester),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	widget := s.deps.SnapshotStore.Read(r.Context())

	dto := map[string]interface{}{
		"overall_average":   widget.OverallAverage,
		"subject_count":     widget.SubjectCount,
		"grade_count":       widget.GradeCount,
		"school_year_start": widget.Year.StartYear,
		"school_year":       widget.Year.DisplayName(),
		"semester":          string(widget.Semester),
		"grading_system":    string(widget.Year.System),
		"populated":         widget.IsPopulated(),
	}
	if widget.IsPopulated() {
		dto["last_update"] = widget.LastUpdate.Format(time.RFC3339Nano)
	}

	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handlePublishSnapshot(w http.ResponseWriter, r *http.Request) {
	widget, err := s.deps.SnapshotPublisher.BuildSnapshot(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.deps.SnapshotPublisher.PublishSnapshot(r.Context(), widget)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "published"})
}

func (s *Server) handleClearSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.SnapshotStore.Clear(r.Context()); err != nil {
		writeJSONError(w, http.StatusBadGateway, "snapshot_store_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleValidateSnapshotAccess(w http.ResponseWriter, r *http.Request) {
	ok := s.deps.SnapshotStore.ValidateAccess(r.Context())

	writeJSON(w, http.StatusOK, map[string]bool{"accessible": ok})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "could not read request body")
		return false
	}

	if err := json.Unmarshal(body, dest); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return false
	}

	return true
}

// periodFromQuery resolves the period for read endpoints: explicit year and
// semester query parameters win, the process-wide selection fills the gaps.
func (s *Server) periodFromQuery(r *http.Request) (period.SchoolYear, period.Semester) {
	return s.resolvePeriod(r, getQueryParamInt(r, "year", 0), r.URL.Query().Get("semester"))
}

// resolvePeriod combines explicit values with the current selection and
// resolves the grading system of the chosen year.
func (s *Server) resolvePeriod(r *http.Request, startYear int, rawSemester string) (period.SchoolYear, period.Semester) {
	year, semester := s.deps.Selection.Current()

	if startYear > 0 {
		system, err := grading.SystemForYear(r.Context(), s.deps.Assignments, startYear)
		if err != nil {
			system = grading.DefaultSystem
		}
		year = period.SchoolYear{StartYear: startYear, System: system}
	}
	if rawSemester != "" {
		semester = period.ParseSemester(rawSemester)
	}

	return year, semester
}

// writeDomainError maps domain errors to HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gradebook.ErrSubjectNotFound),
		errors.Is(err, gradebook.ErrGradeNotFound),
		errors.Is(err, gradebook.ErrFinalGradeNotFound),
		errors.Is(err, grading.ErrAssignmentNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, gradebook.ErrSubjectAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())

	case errors.Is(err, gradebook.ErrValueOutOfRange),
		errors.Is(err, gradebook.ErrInvalidSubjectName),
		errors.Is(err, gradebook.ErrUnknownGradeType),
		errors.Is(err, grading.ErrInvalidStartYear):
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())

	default:
		writeJSONError(w, http.StatusBadRequest, "bad_request", err.Error())
	}
}
