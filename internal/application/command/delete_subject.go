package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE SUBJECT COMMAND
// Deleting a subject cascades: every grade and final grade referencing it
// is removed atomically before the deletion is considered complete. No
// concurrent reader may observe a dangling grade.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteSubjectCommand contains the data to delete a subject.
type DeleteSubjectCommand struct {
	// SubjectID is the internal ID of the subject.
	SubjectID string
}

// Validate validates the command.
func (c DeleteSubjectCommand) Validate() error {
	if c.SubjectID == "" {
		return errors.New("delete_subject: subject_id is required")
	}
	return nil
}

// DeleteSubjectHandler handles subject deletion.
type DeleteSubjectHandler struct {
	subjects gradebook.SubjectRepository
	bus      shared.EventBus
}

// NewDeleteSubjectHandler creates the handler.
func NewDeleteSubjectHandler(subjects gradebook.SubjectRepository, bus shared.EventBus) *DeleteSubjectHandler {
	return &DeleteSubjectHandler{subjects: subjects, bus: bus}
}

// Handle executes the command. The cascade itself is implemented by the
// repository in a single transaction (grades, final grades, then the
// subject row), so the atomicity guarantee lives at the storage boundary.
func (h *DeleteSubjectHandler) Handle(ctx context.Context, cmd DeleteSubjectCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.subjects.Delete(ctx, cmd.SubjectID); err != nil {
		if errors.Is(err, gradebook.ErrSubjectNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventSubjectDeleted, cmd.SubjectID))

	return nil
}
