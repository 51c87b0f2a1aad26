// Package postgres implements the durable persistence layer of the grade hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// FINAL GRADE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// FinalGradeRepository implements gradebook.FinalGradeRepository for PostgreSQL.
type FinalGradeRepository struct {
	conn *Connection
}

// NewFinalGradeRepository creates a new FinalGradeRepository.
func NewFinalGradeRepository(conn *Connection) *FinalGradeRepository {
	return &FinalGradeRepository{conn: conn}
}

// Upsert creates or replaces the final grade of a subject for a period.
// The UNIQUE (subject_id, school_year_start, semester) constraint drives
// the conflict resolution.
func (r *FinalGradeRepository) Upsert(ctx context.Context, fg *gradebook.FinalGrade) error {
	query := `
		INSERT INTO final_grades (
			id, subject_id, value, school_year_start, grading_system, semester,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (subject_id, school_year_start, semester)
		DO UPDATE SET value = EXCLUDED.value,
					  grading_system = EXCLUDED.grading_system,
					  updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		fg.ID,
		fg.SubjectID,
		fg.Value,
		fg.Year.StartYear,
		string(fg.Year.System),
		string(fg.Semester),
		fg.CreatedAt,
		fg.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return gradebook.ErrSubjectNotFound
		}
		return fmt.Errorf("failed to upsert final grade: %w", err)
	}

	return nil
}

// Get returns the final grade of a subject for an exact period.
func (r *FinalGradeRepository) Get(ctx context.Context, subjectID string, year period.SchoolYear, semester period.Semester) (*gradebook.FinalGrade, error) {
	query := `
		SELECT id, subject_id, value, school_year_start, grading_system, semester,
			   created_at, updated_at
		FROM final_grades
		WHERE subject_id = $1 AND school_year_start = $2 AND semester = $3
	`

	row := r.conn.QueryRow(ctx, query, subjectID, year.StartYear, string(semester))
	return r.scanFinalGrade(row)
}

// Delete removes the final grade of a subject for a period.
func (r *FinalGradeRepository) Delete(ctx context.Context, subjectID string, year period.SchoolYear, semester period.Semester) error {
	query := `
		DELETE FROM final_grades
		WHERE subject_id = $1 AND school_year_start = $2 AND semester = $3
	`

	tag, err := r.conn.Exec(ctx, query, subjectID, year.StartYear, string(semester))
	if err != nil {
		return fmt.Errorf("failed to delete final grade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gradebook.ErrFinalGradeNotFound
	}

	return nil
}

// ListForPeriod returns all final grades of a period.
func (r *FinalGradeRepository) ListForPeriod(ctx context.Context, year period.SchoolYear, semester period.Semester) ([]*gradebook.FinalGrade, error) {
	query := `
		SELECT id, subject_id, value, school_year_start, grading_system, semester,
			   created_at, updated_at
		FROM final_grades
		WHERE school_year_start = $1 AND semester = $2
		ORDER BY subject_id
	`

	rows, err := r.conn.Query(ctx, query, year.StartYear, string(semester))
	if err != nil {
		return nil, fmt.Errorf("failed to query final grades: %w", err)
	}
	defer rows.Close()

	finals := make([]*gradebook.FinalGrade, 0)
	for rows.Next() {
		fg, err := scanFinalGradeColumns(rows)
		if err != nil {
			return nil, err
		}
		finals = append(finals, fg)
	}

	return finals, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *FinalGradeRepository) scanFinalGrade(row pgx.Row) (*gradebook.FinalGrade, error) {
	fg, err := scanFinalGradeColumns(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, gradebook.ErrFinalGradeNotFound
		}
		return nil, err
	}
	return fg, nil
}

func scanFinalGradeColumns(row pgx.Row) (*gradebook.FinalGrade, error) {
	var (
		fg        gradebook.FinalGrade
		startYear int
		rawSystem string
		rawSem    string
	)

	err := row.Scan(&fg.ID, &fg.SubjectID, &fg.Value, &startYear, &rawSystem, &rawSem, &fg.CreatedAt, &fg.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan final grade: %w", err)
	}

	fg.Year = period.SchoolYear{StartYear: startYear, System: grading.ParseSystem(rawSystem)}
	fg.Semester = period.ParseSemester(rawSem)

	return &fg, nil
}
