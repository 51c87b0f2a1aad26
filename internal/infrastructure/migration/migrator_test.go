package migration

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	redisstore "github.com/deinadmin/school-grade-hub/internal/infrastructure/persistence/redis"
)

// fakeAssignmentRepo is an in-memory assignment store with injectable
// failures.
type fakeAssignmentRepo struct {
	byYear map[int]*grading.Assignment
	setErr error
	getErr error
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{byYear: make(map[int]*grading.Assignment)}
}

func (r *fakeAssignmentRepo) Get(_ context.Context, startYear int) (*grading.Assignment, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	a, ok := r.byYear[startYear]
	if !ok {
		return nil, grading.ErrAssignmentNotFound
	}
	return a, nil
}

func (r *fakeAssignmentRepo) Set(_ context.Context, a *grading.Assignment) error {
	if r.setErr != nil {
		return r.setErr
	}
	r.byYear[a.StartYear] = a
	return nil
}

func (r *fakeAssignmentRepo) All(_ context.Context) ([]*grading.Assignment, error) {
	out := make([]*grading.Assignment, 0, len(r.byYear))
	for _, a := range r.byYear {
		out = append(out, a)
	}
	return out, nil
}

func newTestLegacy(t *testing.T) (*redisstore.LegacySettings, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redisstore.NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	return redisstore.NewLegacySettings(client), mr
}

func TestMigrator_MigratesLegacyRecords(t *testing.T) {
	legacy, _ := newTestLegacy(t)
	repo := newFakeAssignmentRepo()
	ctx := context.Background()

	require.NoError(t, legacy.Seed(ctx, 2022, "points"))
	require.NoError(t, legacy.Seed(ctx, 2023, "traditional"))

	m := NewMigrator(legacy, repo, slog.Default())
	assert.Equal(t, StateCompleted, m.Run(ctx))

	a, err := repo.Get(ctx, 2022)
	require.NoError(t, err)
	assert.Equal(t, grading.SystemPoints, a.System)

	a, err = repo.Get(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, grading.SystemTraditional, a.System)
}

func TestMigrator_IdempotentAfterCompletion(t *testing.T) {
	legacy, _ := newTestLegacy(t)
	repo := newFakeAssignmentRepo()
	ctx := context.Background()

	require.NoError(t, legacy.Seed(ctx, 2022, "points"))

	m := NewMigrator(legacy, repo, slog.Default())
	require.Equal(t, StateCompleted, m.Run(ctx))

	// Flip the durable record; a second run must not touch it.
	changed, err := grading.NewAssignment(2022, grading.SystemTraditional)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, changed))

	assert.Equal(t, StateCompleted, m.Run(ctx))

	a, err := repo.Get(ctx, 2022)
	require.NoError(t, err)
	assert.Equal(t, grading.SystemTraditional, a.System)
}

func TestMigrator_NeverClobbersExistingAssignment(t *testing.T) {
	legacy, _ := newTestLegacy(t)
	repo := newFakeAssignmentRepo()
	ctx := context.Background()

	existing, err := grading.NewAssignment(2022, grading.SystemTraditional)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, existing))

	require.NoError(t, legacy.Seed(ctx, 2022, "points"))

	m := NewMigrator(legacy, repo, slog.Default())
	assert.Equal(t, StateCompleted, m.Run(ctx))

	// The explicit user choice beat the legacy record.
	a, err := repo.Get(ctx, 2022)
	require.NoError(t, err)
	assert.Equal(t, grading.SystemTraditional, a.System)
}

func TestMigrator_SkipsUnknownSystemTags(t *testing.T) {
	legacy, _ := newTestLegacy(t)
	repo := newFakeAssignmentRepo()
	ctx := context.Background()

	require.NoError(t, legacy.Seed(ctx, 2021, "percentage"))
	require.NoError(t, legacy.Seed(ctx, 2022, "points"))

	m := NewMigrator(legacy, repo, slog.Default())
	// Bad tags are skipped, the pass as a whole still completes.
	assert.Equal(t, StateCompleted, m.Run(ctx))

	_, err := repo.Get(ctx, 2021)
	assert.ErrorIs(t, err, grading.ErrAssignmentNotFound)

	_, err = repo.Get(ctx, 2022)
	assert.NoError(t, err)
}

func TestMigrator_DurableFailureRetriesNextLaunch(t *testing.T) {
	legacy, _ := newTestLegacy(t)
	repo := newFakeAssignmentRepo()
	ctx := context.Background()

	require.NoError(t, legacy.Seed(ctx, 2022, "points"))

	repo.setErr = errors.New("connection refused")
	m := NewMigrator(legacy, repo, slog.Default())
	assert.Equal(t, StateNotStarted, m.Run(ctx))

	completed, err := legacy.MigrationCompleted(ctx)
	require.NoError(t, err)
	assert.False(t, completed)

	// Next launch: the store is healthy again and the pass completes.
	repo.setErr = nil
	assert.Equal(t, StateCompleted, m.Run(ctx))

	a, err := repo.Get(ctx, 2022)
	require.NoError(t, err)
	assert.Equal(t, grading.SystemPoints, a.System)
}

func TestMigrator_EmptyNamespaceStillCompletes(t *testing.T) {
	legacy, _ := newTestLegacy(t)
	m := NewMigrator(legacy, newFakeAssignmentRepo(), slog.Default())

	// Zero records is still a successful pass: the flag gets set.
	assert.Equal(t, StateCompleted, m.Run(context.Background()))

	completed, err := legacy.MigrationCompleted(context.Background())
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestMigrator_UnreachableStoreSkipsSilently(t *testing.T) {
	legacy, mr := newTestLegacy(t)
	mr.Close()

	m := NewMigrator(legacy, newFakeAssignmentRepo(), slog.Default())
	assert.Equal(t, StateNotStarted, m.Run(context.Background()))
}
