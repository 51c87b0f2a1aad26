package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/application/selection"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SELECT PERIOD COMMAND
// Changes the period the primary process publishes snapshots for. The
// grading system of the selected year is resolved from its durable
// assignment, never taken from the request.
// ══════════════════════════════════════════════════════════════════════════════

// SelectPeriodCommand contains the data to select a period.
type SelectPeriodCommand struct {
	// StartYear is the start year of the school year.
	StartYear int

	// Semester is the semester.
	Semester period.Semester
}

// Validate validates the command.
func (c SelectPeriodCommand) Validate() error {
	if c.StartYear < period.MinStartYear || c.StartYear > period.MaxStartYear {
		return grading.ErrInvalidStartYear
	}
	if !c.Semester.IsValid() {
		return errors.New("select_period: invalid semester")
	}
	return nil
}

// SelectPeriodHandler handles period selection.
type SelectPeriodHandler struct {
	selection   *selection.Selection
	assignments grading.AssignmentRepository
	bus         shared.EventBus
}

// NewSelectPeriodHandler creates the handler.
func NewSelectPeriodHandler(
	sel *selection.Selection,
	assignments grading.AssignmentRepository,
	bus shared.EventBus,
) *SelectPeriodHandler {
	return &SelectPeriodHandler{selection: sel, assignments: assignments, bus: bus}
}

// Handle executes the command.
func (h *SelectPeriodHandler) Handle(ctx context.Context, cmd SelectPeriodCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	system, err := grading.SystemForYear(ctx, h.assignments, cmd.StartYear)
	if err != nil {
		return fmt.Errorf("failed to resolve grading system: %w", err)
	}

	h.selection.Set(period.SchoolYear{StartYear: cmd.StartYear, System: system}, cmd.Semester)

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventPeriodSelected, ""))

	return nil
}
