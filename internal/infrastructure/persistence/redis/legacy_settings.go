package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEGACY SETTINGS
// The previous storage generation kept per-year grading system choices as
// plain keys in the shared store. The migrator drains this namespace into
// the durable store exactly once; the keys themselves are left in place.
// ══════════════════════════════════════════════════════════════════════════════

const (
	legacySystemKeyPrefix = "legacy:gradingSystem:"
	legacyCompletedKey    = "legacy:migrationCompleted"
)

// LegacyAssignment is one raw record from the legacy namespace. The system
// tag is kept raw: validation is the migrator's decision, not the store's.
type LegacyAssignment struct {
	StartYear int
	RawSystem string
}

// LegacySettings reads the legacy settings namespace.
type LegacySettings struct {
	client *Client
}

// NewLegacySettings creates a LegacySettings reader.
func NewLegacySettings(client *Client) *LegacySettings {
	return &LegacySettings{client: client}
}

// MigrationCompleted reports whether the one-time migration already ran.
func (l *LegacySettings) MigrationCompleted(ctx context.Context) (bool, error) {
	n, err := l.client.Client().Exists(ctx, legacyCompletedKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read migration flag: %w", err)
	}
	return n > 0, nil
}

// MarkCompleted sets the completion flag. Called only after a fully
// successful migration pass.
func (l *LegacySettings) MarkCompleted(ctx context.Context) error {
	if err := l.client.Client().Set(ctx, legacyCompletedKey, "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to set migration flag: %w", err)
	}
	return nil
}

// SystemAssignments scans the legacy namespace and returns every record
// whose year parses. Keys with a malformed year are skipped silently;
// they carry nothing the migrator could recover.
func (l *LegacySettings) SystemAssignments(ctx context.Context) ([]LegacyAssignment, error) {
	var assignments []LegacyAssignment

	iter := l.client.Client().Scan(ctx, 0, legacySystemKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		year, err := strconv.Atoi(strings.TrimPrefix(key, legacySystemKeyPrefix))
		if err != nil {
			continue
		}

		raw, err := l.client.Client().Get(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read legacy key %s: %w", key, err)
		}

		assignments = append(assignments, LegacyAssignment{
			StartYear: year,
			RawSystem: raw,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("legacy scan failed: %w", err)
	}

	return assignments, nil
}

// Seed writes a legacy record. Only tests use this; production code never
// writes into the legacy namespace.
func (l *LegacySettings) Seed(ctx context.Context, startYear int, rawSystem string) error {
	key := legacySystemKeyPrefix + strconv.Itoa(startYear)
	return l.client.Client().Set(ctx, key, rawSystem, 0).Err()
}
