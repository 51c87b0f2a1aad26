// Package command contains write operations (CQRS - Commands).
// All gradebook mutations flow through these handlers, which gives the
// primary process its single-writer semantics. Every successful mutation
// publishes a domain event so the widget snapshot can be republished.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE SUBJECT COMMAND
// Subjects are long-lived aggregate roots: they are NOT scoped to a school
// year or semester. Only their grades are period-scoped.
// ══════════════════════════════════════════════════════════════════════════════

// CreateSubjectCommand contains the data to create a subject.
type CreateSubjectCommand struct {
	// Name is the subject name (non-empty, unique).
	Name string

	// ColorHex is the subject color (optional, defaults applied by domain).
	ColorHex string

	// Icon is the symbol name of the subject icon (optional).
	Icon string
}

// Validate validates the command.
func (c CreateSubjectCommand) Validate() error {
	if c.Name == "" {
		return errors.New("create_subject: name is required")
	}
	return nil
}

// CreateSubjectResult contains the result of creating a subject.
type CreateSubjectResult struct {
	// SubjectID is the ID of the created subject.
	SubjectID string

	// Name is the normalized subject name.
	Name string
}

// CreateSubjectHandler handles subject creation.
type CreateSubjectHandler struct {
	subjects gradebook.SubjectRepository
	bus      shared.EventBus
}

// NewCreateSubjectHandler creates the handler.
func NewCreateSubjectHandler(subjects gradebook.SubjectRepository, bus shared.EventBus) *CreateSubjectHandler {
	return &CreateSubjectHandler{subjects: subjects, bus: bus}
}

// Handle executes the command.
func (h *CreateSubjectHandler) Handle(ctx context.Context, cmd CreateSubjectCommand) (*CreateSubjectResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	subject, err := gradebook.NewSubject(gradebook.NewSubjectParams{
		ID:       uuid.NewString(),
		Name:     cmd.Name,
		ColorHex: cmd.ColorHex,
		Icon:     cmd.Icon,
	})
	if err != nil {
		return nil, err
	}

	if err := h.subjects.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	_ = h.bus.Publish(ctx, shared.NewBaseEvent(shared.EventSubjectCreated, subject.ID))

	return &CreateSubjectResult{SubjectID: subject.ID, Name: subject.Name}, nil
}
