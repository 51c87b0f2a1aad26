package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GRADE COMMAND
// A grade's legality is checked against its OWN school year's grading
// system, resolved from the durable assignment (lazily created on first
// access). Out-of-range values are rejected here, never during aggregation.
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeCommand contains the data to record a grade.
type RecordGradeCommand struct {
	// SubjectID is the internal ID of the subject.
	SubjectID string

	// TypeName is the grade type name (major_exam, test, homework,
	// oral_participation).
	TypeName string

	// Value is the numeric grade value.
	Value float64

	// StartYear is the start year of the school year the grade belongs to.
	StartYear int

	// Semester is the semester the grade belongs to.
	Semester period.Semester

	// Date is the optional date the grade was received.
	Date *time.Time
}

// Validate validates the command.
func (c RecordGradeCommand) Validate() error {
	if c.SubjectID == "" {
		return errors.New("record_grade: subject_id is required")
	}
	if c.TypeName == "" {
		return errors.New("record_grade: type_name is required")
	}
	if c.StartYear < period.MinStartYear || c.StartYear > period.MaxStartYear {
		return grading.ErrInvalidStartYear
	}
	if !c.Semester.IsValid() {
		return errors.New("record_grade: invalid semester")
	}
	return nil
}

// RecordGradeResult contains the result of recording a grade.
type RecordGradeResult struct {
	// GradeID is the ID of the recorded grade.
	GradeID string

	// System is the grading system the value was validated against.
	System grading.System
}

// RecordGradeHandler handles grade recording.
type RecordGradeHandler struct {
	subjects    gradebook.SubjectRepository
	grades      gradebook.GradeRepository
	assignments grading.AssignmentRepository
	bus         shared.EventBus
}

// NewRecordGradeHandler creates the handler.
func NewRecordGradeHandler(
	subjects gradebook.SubjectRepository,
	grades gradebook.GradeRepository,
	assignments grading.AssignmentRepository,
	bus shared.EventBus,
) *RecordGradeHandler {
	return &RecordGradeHandler{
		subjects:    subjects,
		grades:      grades,
		assignments: assignments,
		bus:         bus,
	}
}

// Handle executes the command.
func (h *RecordGradeHandler) Handle(ctx context.Context, cmd RecordGradeCommand) (*RecordGradeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.subjects.GetByID(ctx, cmd.SubjectID); err != nil {
		return nil, err
	}

	gradeType, err := gradebook.GradeTypeByName(cmd.TypeName)
	if err != nil {
		return nil, err
	}

	// Resolve the grading system in force for the grade's own school year,
	// creating the assignment record on first access.
	system, err := grading.SystemForYear(ctx, h.assignments, cmd.StartYear)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve grading system: %w", err)
	}

	grade, err := gradebook.NewGrade(gradebook.NewGradeParams{
		ID:        uuid.NewString(),
		SubjectID: cmd.SubjectID,
		Type:      gradeType,
		Value:     cmd.Value,
		Year:      period.SchoolYear{StartYear: cmd.StartYear, System: system},
		Semester:  cmd.Semester,
		Date:      cmd.Date,
	})
	if err != nil {
		return nil, err
	}

	if err := h.grades.Create(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to record grade: %w", err)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventGradeRecorded, grade.ID))

	return &RecordGradeResult{GradeID: grade.ID, System: system}, nil
}
