package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/deinadmin/school-grade-hub/internal/application/selection"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHOOSE GRADING SYSTEM COMMAND
// The per-year grading system assignment is mutated ONLY through this
// explicit user action. Grades already recorded for the year are not
// rescaled: they were validated against the system in force at entry time.
// ══════════════════════════════════════════════════════════════════════════════

// ChooseGradingSystemCommand contains the data to assign a grading system.
type ChooseGradingSystemCommand struct {
	// StartYear is the start year of the school year.
	StartYear int

	// System is the grading system to assign.
	System grading.System
}

// Validate validates the command.
func (c ChooseGradingSystemCommand) Validate() error {
	if c.StartYear < period.MinStartYear || c.StartYear > period.MaxStartYear {
		return grading.ErrInvalidStartYear
	}
	if !c.System.IsValid() {
		return errors.New("choose_grading_system: invalid system")
	}
	return nil
}

// ChooseGradingSystemHandler handles grading system assignment.
type ChooseGradingSystemHandler struct {
	assignments grading.AssignmentRepository
	selection   *selection.Selection
	bus         shared.EventBus
}

// NewChooseGradingSystemHandler creates the handler.
func NewChooseGradingSystemHandler(
	assignments grading.AssignmentRepository,
	sel *selection.Selection,
	bus shared.EventBus,
) *ChooseGradingSystemHandler {
	return &ChooseGradingSystemHandler{assignments: assignments, selection: sel, bus: bus}
}

// Handle executes the command.
func (h *ChooseGradingSystemHandler) Handle(ctx context.Context, cmd ChooseGradingSystemCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	assignment, err := grading.NewAssignment(cmd.StartYear, cmd.System)
	if err != nil {
		return err
	}

	if err := h.assignments.Set(ctx, assignment); err != nil {
		return fmt.Errorf("failed to assign grading system: %w", err)
	}

	// Keep the published period in sync when the changed year is selected.
	if h.selection != nil {
		h.selection.SetSystem(cmd.StartYear, cmd.System)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(
		shared.EventGradingSystemChanged,
		strconv.Itoa(cmd.StartYear),
	))

	return nil
}
