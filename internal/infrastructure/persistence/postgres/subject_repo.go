// Package postgres implements the durable persistence layer of the grade hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SubjectRepository implements gradebook.SubjectRepository for PostgreSQL.
type SubjectRepository struct {
	conn *Connection
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(conn *Connection) *SubjectRepository {
	return &SubjectRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new subject.
func (r *SubjectRepository) Create(ctx context.Context, s *gradebook.Subject) error {
	query := `
		INSERT INTO subjects (id, name, color_hex, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Name,
		s.ColorHex,
		s.Icon,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return gradebook.ErrSubjectAlreadyExists
		}
		return fmt.Errorf("failed to create subject: %w", err)
	}

	return nil
}

// GetByID returns a subject by internal ID.
func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*gradebook.Subject, error) {
	query := `
		SELECT id, name, color_hex, icon, created_at, updated_at
		FROM subjects
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanSubject(row)
}

// GetByName returns a subject by its unique name.
func (r *SubjectRepository) GetByName(ctx context.Context, name string) (*gradebook.Subject, error) {
	query := `
		SELECT id, name, color_hex, icon, created_at, updated_at
		FROM subjects
		WHERE name = $1
	`

	row := r.conn.QueryRow(ctx, query, name)
	return r.scanSubject(row)
}

// GetAll returns all subjects ordered by name.
func (r *SubjectRepository) GetAll(ctx context.Context) ([]*gradebook.Subject, error) {
	query := `
		SELECT id, name, color_hex, icon, created_at, updated_at
		FROM subjects
		ORDER BY name
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	return r.scanSubjects(rows)
}

// Update updates an existing subject.
func (r *SubjectRepository) Update(ctx context.Context, s *gradebook.Subject) error {
	query := `
		UPDATE subjects
		SET name = $2, color_hex = $3, icon = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Name,
		s.ColorHex,
		s.Icon,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return gradebook.ErrSubjectAlreadyExists
		}
		return fmt.Errorf("failed to update subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gradebook.ErrSubjectNotFound
	}

	return nil
}

// Delete removes a subject together with ALL of its grades and final
// grades in a single transaction. The ON DELETE CASCADE constraints do
// the actual cleanup; the transaction guarantees no reader observes a
// half-deleted subject.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete subject: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return gradebook.ErrSubjectNotFound
		}
		return nil
	})
}

// Count returns the total number of subjects.
func (r *SubjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subjects: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *SubjectRepository) scanSubject(row pgx.Row) (*gradebook.Subject, error) {
	var s gradebook.Subject

	err := row.Scan(&s.ID, &s.Name, &s.ColorHex, &s.Icon, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, gradebook.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to scan subject: %w", err)
	}

	return &s, nil
}

func (r *SubjectRepository) scanSubjects(rows pgx.Rows) ([]*gradebook.Subject, error) {
	subjects := make([]*gradebook.Subject, 0)

	for rows.Next() {
		var s gradebook.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.ColorHex, &s.Icon, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subject row: %w", err)
		}
		subjects = append(subjects, &s)
	}

	return subjects, rows.Err()
}
