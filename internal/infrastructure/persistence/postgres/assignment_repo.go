// Package postgres implements the durable persistence layer of the grade hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADING SYSTEM ASSIGNMENT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// AssignmentRepository implements grading.AssignmentRepository for PostgreSQL.
type AssignmentRepository struct {
	conn *Connection
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(conn *Connection) *AssignmentRepository {
	return &AssignmentRepository{conn: conn}
}

// Get returns the assignment for a start year.
func (r *AssignmentRepository) Get(ctx context.Context, startYear int) (*grading.Assignment, error) {
	query := `
		SELECT start_year, grading_system, created_at, updated_at
		FROM grading_system_assignments
		WHERE start_year = $1
	`

	row := r.conn.QueryRow(ctx, query, startYear)
	return scanAssignment(row)
}

// Set creates or updates an assignment. Assignments are never deleted
// automatically, so upsert is the only write path.
func (r *AssignmentRepository) Set(ctx context.Context, a *grading.Assignment) error {
	query := `
		INSERT INTO grading_system_assignments (start_year, grading_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (start_year)
		DO UPDATE SET grading_system = EXCLUDED.grading_system,
					  updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		a.StartYear,
		string(a.System),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set grading system assignment: %w", err)
	}

	return nil
}

// All returns every assignment ordered by start year.
func (r *AssignmentRepository) All(ctx context.Context) ([]*grading.Assignment, error) {
	query := `
		SELECT start_year, grading_system, created_at, updated_at
		FROM grading_system_assignments
		ORDER BY start_year
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*grading.Assignment, 0)
	for rows.Next() {
		var (
			a         grading.Assignment
			rawSystem string
		)

		if err := rows.Scan(&a.StartYear, &rawSystem, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}

		a.System = grading.ParseSystem(rawSystem)
		assignments = append(assignments, &a)
	}

	return assignments, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning Helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanAssignment(row pgx.Row) (*grading.Assignment, error) {
	var (
		a         grading.Assignment
		rawSystem string
	)

	err := row.Scan(&a.StartYear, &rawSystem, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, grading.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}

	a.System = grading.ParseSystem(rawSystem)
	return &a, nil
}
