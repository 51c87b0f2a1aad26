package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE GRADE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteGradeCommand contains the data to delete a grade.
type DeleteGradeCommand struct {
	// GradeID is the internal ID of the grade.
	GradeID string
}

// Validate validates the command.
func (c DeleteGradeCommand) Validate() error {
	if c.GradeID == "" {
		return errors.New("delete_grade: grade_id is required")
	}
	return nil
}

// DeleteGradeHandler handles grade deletion.
type DeleteGradeHandler struct {
	grades gradebook.GradeRepository
	bus    shared.EventBus
}

// NewDeleteGradeHandler creates the handler.
func NewDeleteGradeHandler(grades gradebook.GradeRepository, bus shared.EventBus) *DeleteGradeHandler {
	return &DeleteGradeHandler{grades: grades, bus: bus}
}

// Handle executes the command.
func (h *DeleteGradeHandler) Handle(ctx context.Context, cmd DeleteGradeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.grades.Delete(ctx, cmd.GradeID); err != nil {
		if errors.Is(err, gradebook.ErrGradeNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete grade: %w", err)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventGradeDeleted, cmd.GradeID))

	return nil
}
