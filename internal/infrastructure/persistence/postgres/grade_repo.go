// Package postgres implements the durable persistence layer of the grade hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/gradebook"
	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GradeRepository implements gradebook.GradeRepository for PostgreSQL.
type GradeRepository struct {
	conn *Connection
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(conn *Connection) *GradeRepository {
	return &GradeRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new grade.
func (r *GradeRepository) Create(ctx context.Context, g *gradebook.Grade) error {
	query := `
		INSERT INTO grades (
			id, subject_id, grade_type, value,
			school_year_start, grading_system, semester, graded_on, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		g.ID,
		g.SubjectID,
		g.Type.Name,
		g.Value,
		g.Year.StartYear,
		string(g.Year.System),
		string(g.Semester),
		g.Date,
		g.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return gradebook.ErrSubjectNotFound
		}
		return fmt.Errorf("failed to create grade: %w", err)
	}

	return nil
}

// Delete removes a grade by ID.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete grade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gradebook.ErrGradeNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns a grade by ID.
func (r *GradeRepository) GetByID(ctx context.Context, id string) (*gradebook.Grade, error) {
	query := `
		SELECT id, subject_id, grade_type, value,
			   school_year_start, grading_system, semester, graded_on, created_at
		FROM grades
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanGrade(row)
}

// ListForSubject returns the grades of one subject for an exact period.
// Both school year and semester must match; there are no wildcard reads.
func (r *GradeRepository) ListForSubject(ctx context.Context, subjectID string, year period.SchoolYear, semester period.Semester) ([]*gradebook.Grade, error) {
	query := `
		SELECT id, subject_id, grade_type, value,
			   school_year_start, grading_system, semester, graded_on, created_at
		FROM grades
		WHERE subject_id = $1 AND school_year_start = $2 AND semester = $3
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query, subjectID, year.StartYear, string(semester))
	if err != nil {
		return nil, fmt.Errorf("failed to query grades for subject: %w", err)
	}
	defer rows.Close()

	return r.scanGrades(rows)
}

// ListForPeriod returns all grades of a period across all subjects.
func (r *GradeRepository) ListForPeriod(ctx context.Context, year period.SchoolYear, semester period.Semester) ([]*gradebook.Grade, error) {
	query := `
		SELECT id, subject_id, grade_type, value,
			   school_year_start, grading_system, semester, graded_on, created_at
		FROM grades
		WHERE school_year_start = $1 AND semester = $2
		ORDER BY subject_id, created_at
	`

	rows, err := r.conn.Query(ctx, query, year.StartYear, string(semester))
	if err != nil {
		return nil, fmt.Errorf("failed to query grades for period: %w", err)
	}
	defer rows.Close()

	return r.scanGrades(rows)
}

// CountForPeriod returns the number of grades in a period.
func (r *GradeRepository) CountForPeriod(ctx context.Context, year period.SchoolYear, semester period.Semester) (int, error) {
	query := `SELECT COUNT(*) FROM grades WHERE school_year_start = $1 AND semester = $2`

	var count int
	err := r.conn.QueryRow(ctx, query, year.StartYear, string(semester)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count grades: %w", err)
	}

	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *GradeRepository) scanGrade(row pgx.Row) (*gradebook.Grade, error) {
	var (
		g         gradebook.Grade
		typeName  string
		startYear int
		rawSystem string
		rawSem    string
		gradedOn  *time.Time
	)

	err := row.Scan(&g.ID, &g.SubjectID, &typeName, &g.Value, &startYear, &rawSystem, &rawSem, &gradedOn, &g.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, gradebook.ErrGradeNotFound
		}
		return nil, fmt.Errorf("failed to scan grade: %w", err)
	}

	if err := hydrateGrade(&g, typeName, startYear, rawSystem, rawSem, gradedOn); err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *GradeRepository) scanGrades(rows pgx.Rows) ([]*gradebook.Grade, error) {
	grades := make([]*gradebook.Grade, 0)

	for rows.Next() {
		var (
			g         gradebook.Grade
			typeName  string
			startYear int
			rawSystem string
			rawSem    string
			gradedOn  *time.Time
		)

		err := rows.Scan(&g.ID, &g.SubjectID, &typeName, &g.Value, &startYear, &rawSystem, &rawSem, &gradedOn, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grade row: %w", err)
		}

		if err := hydrateGrade(&g, typeName, startYear, rawSystem, rawSem, gradedOn); err != nil {
			return nil, err
		}

		grades = append(grades, &g)
	}

	return grades, rows.Err()
}

// hydrateGrade rebuilds the domain value objects from raw column values.
// Unknown grade types are a data corruption signal and surface as errors;
// unknown systems and semesters fall back to defaults the same way the
// rest of the codebase treats unparseable persisted values.
func hydrateGrade(g *gradebook.Grade, typeName string, startYear int, rawSystem, rawSem string, gradedOn *time.Time) error {
	gradeType, err := gradebook.GradeTypeByName(typeName)
	if err != nil {
		return fmt.Errorf("grade %s: %w", g.ID, err)
	}

	g.Type = gradeType
	g.Year = period.SchoolYear{StartYear: startYear, System: grading.ParseSystem(rawSystem)}
	g.Semester = period.ParseSemester(rawSem)
	g.Date = gradedOn

	return nil
}
