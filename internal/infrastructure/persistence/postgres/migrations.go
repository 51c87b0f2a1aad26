// Package postgres implements the durable persistence layer of the grade hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE SUBJECTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create subjects table
-- Version: 001

CREATE TABLE IF NOT EXISTS subjects (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL UNIQUE,
    color_hex VARCHAR(9) NOT NULL DEFAULT '#808080',
    icon VARCHAR(50) NOT NULL DEFAULT 'book',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT non_empty_name CHECK (length(trim(name)) > 0)
);

CREATE INDEX IF NOT EXISTS idx_subjects_name ON subjects(name);
`

const migration001Down = `
DROP TABLE IF EXISTS subjects;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE GRADES AND FINAL GRADES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create grades and final_grades tables
-- Version: 002

-- Individual grade entries. Deleting a subject cascades here so no
-- orphaned grades survive a subject removal.
CREATE TABLE IF NOT EXISTS grades (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    grade_type VARCHAR(30) NOT NULL,
    value DOUBLE PRECISION NOT NULL,
    school_year_start INTEGER NOT NULL,
    grading_system VARCHAR(20) NOT NULL,
    semester VARCHAR(10) NOT NULL,
    graded_on DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_grade_type CHECK (grade_type IN ('major_exam', 'test', 'homework', 'oral_participation')),
    CONSTRAINT valid_grading_system CHECK (grading_system IN ('traditional', 'points')),
    CONSTRAINT valid_semester CHECK (semester IN ('first', 'second')),
    CONSTRAINT valid_school_year CHECK (school_year_start BETWEEN 2000 AND 2099),
    CONSTRAINT value_in_range CHECK (
        (grading_system = 'traditional' AND value >= 0.7 AND value <= 6.0)
        OR (grading_system = 'points' AND value >= 0 AND value <= 15)
    )
);

CREATE INDEX IF NOT EXISTS idx_grades_subject_id ON grades(subject_id);
CREATE INDEX IF NOT EXISTS idx_grades_period ON grades(school_year_start, semester);
CREATE INDEX IF NOT EXISTS idx_grades_subject_period ON grades(subject_id, school_year_start, semester);

-- Final grade overrides. At most one per subject and period; an override
-- replaces the computed weighted average outright.
CREATE TABLE IF NOT EXISTS final_grades (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    value DOUBLE PRECISION NOT NULL,
    school_year_start INTEGER NOT NULL,
    grading_system VARCHAR(20) NOT NULL,
    semester VARCHAR(10) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_final_grading_system CHECK (grading_system IN ('traditional', 'points')),
    CONSTRAINT valid_final_semester CHECK (semester IN ('first', 'second')),
    CONSTRAINT valid_final_school_year CHECK (school_year_start BETWEEN 2000 AND 2099),
    CONSTRAINT final_value_in_range CHECK (
        (grading_system = 'traditional' AND value >= 0.7 AND value <= 6.0)
        OR (grading_system = 'points' AND value >= 0 AND value <= 15)
    ),
    CONSTRAINT one_final_per_period UNIQUE (subject_id, school_year_start, semester)
);

CREATE INDEX IF NOT EXISTS idx_final_grades_period ON final_grades(school_year_start, semester);
`

const migration002Down = `
DROP TABLE IF EXISTS final_grades;
DROP TABLE IF EXISTS grades;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE GRADING SYSTEM ASSIGNMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create grading_system_assignments table
-- Version: 003

-- One grading system per school year. Created lazily with the default
-- system the first time a year is touched, or explicitly by the user.
CREATE TABLE IF NOT EXISTS grading_system_assignments (
    start_year INTEGER PRIMARY KEY,
    grading_system VARCHAR(20) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_assignment_system CHECK (grading_system IN ('traditional', 'points')),
    CONSTRAINT valid_assignment_year CHECK (start_year BETWEEN 2000 AND 2099)
);
`

const migration003Down = `
DROP TABLE IF EXISTS grading_system_assignments;
`

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_subjects",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_grades",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_grading_system_assignments",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
