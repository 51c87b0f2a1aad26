// Package command implements the write side of CQRS: command handlers
// mutate the durable store and publish domain events on success.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SUBJECT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSubjectCommand contains the data to update a subject. Empty fields
// keep their current values.
type UpdateSubjectCommand struct {
	// SubjectID is the internal ID of the subject.
	SubjectID string

	// Name is the new subject name (empty = unchanged).
	Name string

	// ColorHex is the new subject color (empty = unchanged).
	ColorHex string

	// Icon is the new icon name (empty = unchanged).
	Icon string
}

// Validate validates the command.
func (c UpdateSubjectCommand) Validate() error {
	if c.SubjectID == "" {
		return errors.New("update_subject: subject_id is required")
	}
	if c.Name == "" && c.ColorHex == "" && c.Icon == "" {
		return errors.New("update_subject: nothing to update")
	}
	return nil
}

// UpdateSubjectHandler handles subject updates.
type UpdateSubjectHandler struct {
	subjects gradebook.SubjectRepository
	bus      shared.EventBus
}

// NewUpdateSubjectHandler creates the handler.
func NewUpdateSubjectHandler(subjects gradebook.SubjectRepository, bus shared.EventBus) *UpdateSubjectHandler {
	return &UpdateSubjectHandler{subjects: subjects, bus: bus}
}

// Handle executes the command.
func (h *UpdateSubjectHandler) Handle(ctx context.Context, cmd UpdateSubjectCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	subject, err := h.subjects.GetByID(ctx, cmd.SubjectID)
	if err != nil {
		return err
	}

	if cmd.Name != "" {
		if err := subject.Rename(cmd.Name); err != nil {
			return err
		}
	}
	if cmd.ColorHex != "" || cmd.Icon != "" {
		subject.Restyle(cmd.ColorHex, cmd.Icon)
	}

	if err := h.subjects.Update(ctx, subject); err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventSubjectUpdated, subject.ID))

	return nil
}
