package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET / REMOVE FINAL GRADE COMMANDS
// A final grade is an entered override, not a computed value. Once set it
// deterministically wins over the computed average for its subject/period.
// ══════════════════════════════════════════════════════════════════════════════

// SetFinalGradeCommand contains the data to set a final grade.
type SetFinalGradeCommand struct {
	// SubjectID is the internal ID of the subject.
	SubjectID string

	// Value is the final grade value.
	Value float64

	// StartYear is the start year of the school year.
	StartYear int

	// Semester is the semester.
	Semester period.Semester
}

// Validate validates the command.
func (c SetFinalGradeCommand) Validate() error {
	if c.SubjectID == "" {
		return errors.New("set_final_grade: subject_id is required")
	}
	if c.StartYear < period.MinStartYear || c.StartYear > period.MaxStartYear {
		return grading.ErrInvalidStartYear
	}
	if !c.Semester.IsValid() {
		return errors.New("set_final_grade: invalid semester")
	}
	return nil
}

// SetFinalGradeHandler handles final grade overrides.
type SetFinalGradeHandler struct {
	subjects    gradebook.SubjectRepository
	finalGrades gradebook.FinalGradeRepository
	assignments grading.AssignmentRepository
	bus         shared.EventBus
}

// NewSetFinalGradeHandler creates the handler.
func NewSetFinalGradeHandler(
	subjects gradebook.SubjectRepository,
	finalGrades gradebook.FinalGradeRepository,
	assignments grading.AssignmentRepository,
	bus shared.EventBus,
) *SetFinalGradeHandler {
	return &SetFinalGradeHandler{
		subjects:    subjects,
		finalGrades: finalGrades,
		assignments: assignments,
		bus:         bus,
	}
}

// Handle executes the command.
func (h *SetFinalGradeHandler) Handle(ctx context.Context, cmd SetFinalGradeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if _, err := h.subjects.GetByID(ctx, cmd.SubjectID); err != nil {
		return err
	}

	system, err := grading.SystemForYear(ctx, h.assignments, cmd.StartYear)
	if err != nil {
		return fmt.Errorf("failed to resolve grading system: %w", err)
	}

	finalGrade, err := gradebook.NewFinalGrade(
		uuid.NewString(),
		cmd.SubjectID,
		cmd.Value,
		period.SchoolYear{StartYear: cmd.StartYear, System: system},
		cmd.Semester,
	)
	if err != nil {
		return err
	}

	if err := h.finalGrades.Upsert(ctx, finalGrade); err != nil {
		return fmt.Errorf("failed to set final grade: %w", err)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventFinalGradeSet, cmd.SubjectID))

	return nil
}

// RemoveFinalGradeCommand contains the data to remove a final grade.
type RemoveFinalGradeCommand struct {
	// SubjectID is the internal ID of the subject.
	SubjectID string

	// StartYear is the start year of the school year.
	StartYear int

	// Semester is the semester.
	Semester period.Semester
}

// Validate validates the command.
func (c RemoveFinalGradeCommand) Validate() error {
	if c.SubjectID == "" {
		return errors.New("remove_final_grade: subject_id is required")
	}
	if !c.Semester.IsValid() {
		return errors.New("remove_final_grade: invalid semester")
	}
	return nil
}

// RemoveFinalGradeHandler removes final grade overrides.
type RemoveFinalGradeHandler struct {
	finalGrades gradebook.FinalGradeRepository
	assignments grading.AssignmentRepository
	bus         shared.EventBus
}

// NewRemoveFinalGradeHandler creates the handler.
func NewRemoveFinalGradeHandler(
	finalGrades gradebook.FinalGradeRepository,
	assignments grading.AssignmentRepository,
	bus shared.EventBus,
) *RemoveFinalGradeHandler {
	return &RemoveFinalGradeHandler{finalGrades: finalGrades, assignments: assignments, bus: bus}
}

// Handle executes the command.
func (h *RemoveFinalGradeHandler) Handle(ctx context.Context, cmd RemoveFinalGradeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	system, err := grading.SystemForYear(ctx, h.assignments, cmd.StartYear)
	if err != nil {
		return fmt.Errorf("failed to resolve grading system: %w", err)
	}
	year := period.SchoolYear{StartYear: cmd.StartYear, System: system}

	if err := h.finalGrades.Delete(ctx, cmd.SubjectID, year, cmd.Semester); err != nil {
		if errors.Is(err, gradebook.ErrFinalGradeNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove final grade: %w", err)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventFinalGradeRemoved, cmd.SubjectID))

	return nil
}
