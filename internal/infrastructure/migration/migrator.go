// Package migration drains legacy settings from the shared store into the
// durable store. The migration runs once per installation; a completion
// flag in the shared store makes every later launch a no-op.
package migration

import (
	"context"
	"errors"
	"log/slog"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	redisstore "github.com/deinadmin/school-grade-hub/internal/infrastructure/persistence/redis"
)

// State describes how far the migration has advanced. There is no
// intermediate state: the flag is only written after a verified full pass,
// so a crash mid-migration simply retries on the next launch.
type State string

const (
	// StateNotStarted means the completion flag is absent.
	StateNotStarted State = "not_started"

	// StateCompleted means a full pass succeeded and the flag is set.
	StateCompleted State = "completed"
)

// Migrator copies legacy per-year grading system choices into the durable
// assignment store.
type Migrator struct {
	legacy      *redisstore.LegacySettings
	assignments grading.AssignmentRepository
	logger      *slog.Logger
}

// NewMigrator creates a Migrator.
func NewMigrator(legacy *redisstore.LegacySettings, assignments grading.AssignmentRepository, logger *slog.Logger) *Migrator {
	return &Migrator{
		legacy:      legacy,
		assignments: assignments,
		logger:      logger.With(slog.String("component", "legacy_migrator")),
	}
}

// Run executes the migration. It never blocks or fails the launch: every
// failure is logged, the flag stays unset and the whole pass retries next
// time. Existing durable assignments are never overwritten - an explicit
// user choice always beats a legacy record.
func (m *Migrator) Run(ctx context.Context) State {
	completed, err := m.legacy.MigrationCompleted(ctx)
	if err != nil {
		m.logger.Warn("could not read migration flag, skipping", slog.String("error", err.Error()))
		return StateNotStarted
	}
	if completed {
		return StateCompleted
	}

	records, err := m.legacy.SystemAssignments(ctx)
	if err != nil {
		m.logger.Warn("could not read legacy settings, skipping", slog.String("error", err.Error()))
		return StateNotStarted
	}

	migrated := 0
	for _, rec := range records {
		ok, err := m.migrateRecord(ctx, rec)
		if err != nil {
			// Durable store trouble: leave the flag unset so the whole
			// pass runs again on the next launch.
			m.logger.Warn("legacy record migration failed, will retry next launch",
				slog.Int("start_year", rec.StartYear),
				slog.String("error", err.Error()),
			)
			return StateNotStarted
		}
		if ok {
			migrated++
		}
	}

	// A pass with zero records is still a successful pass.
	if err := m.legacy.MarkCompleted(ctx); err != nil {
		m.logger.Warn("could not set migration flag, will retry next launch", slog.String("error", err.Error()))
		return StateNotStarted
	}

	m.logger.Info("legacy settings migration completed",
		slog.Int("records", len(records)),
		slog.Int("migrated", migrated),
	)
	return StateCompleted
}

// migrateRecord moves one legacy record. Returns true when a new durable
// assignment was created, false when the record was skipped.
func (m *Migrator) migrateRecord(ctx context.Context, rec redisstore.LegacyAssignment) (bool, error) {
	system := grading.System(rec.RawSystem)
	if !system.IsValid() {
		// Unknown tag: nothing trustworthy to migrate.
		m.logger.Warn("skipping legacy record with unknown system tag",
			slog.Int("start_year", rec.StartYear),
			slog.String("raw_system", rec.RawSystem),
		)
		return false, nil
	}

	_, err := m.assignments.Get(ctx, rec.StartYear)
	if err == nil {
		// Already assigned: never clobber.
		return false, nil
	}
	if !errors.Is(err, grading.ErrAssignmentNotFound) {
		return false, err
	}

	assignment, err := grading.NewAssignment(rec.StartYear, system)
	if err != nil {
		// Out-of-range year: skip, not fatal.
		m.logger.Warn("skipping legacy record with invalid year",
			slog.Int("start_year", rec.StartYear),
		)
		return false, nil
	}

	return true, m.assignments.Set(ctx, assignment)
}
