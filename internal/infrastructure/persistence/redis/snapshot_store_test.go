package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deinadmin/school-grade-hub/internal/domain/grading"
	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/snapshot"
)

func newTestStore(t *testing.T) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	return NewSnapshotStore(client, slog.Default()), mr
}

func testWidget() snapshot.Widget {
	return snapshot.Widget{
		OverallAverage: snapshot.Float64Ptr(2.35),
		SubjectCount:   5,
		GradeCount:     23,
		Year:           period.SchoolYear{StartYear: 2024, System: grading.SystemTraditional},
		Semester:       period.SemesterSecond,
	}
}

func TestSnapshotStore_PublishReadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testWidget()))

	got := store.Read(ctx)
	require.True(t, got.HasAverage())
	assert.Equal(t, 2.35, *got.OverallAverage)
	assert.Equal(t, 5, got.SubjectCount)
	assert.Equal(t, 23, got.GradeCount)
	assert.Equal(t, 2024, got.Year.StartYear)
	assert.Equal(t, grading.SystemTraditional, got.Year.System)
	assert.Equal(t, period.SemesterSecond, got.Semester)
	assert.True(t, got.IsPopulated())
}

func TestSnapshotStore_AbsentAverageDeletesKey(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testWidget()))
	assert.True(t, mr.Exists("widget:overallAverage"))

	w := testWidget()
	w.OverallAverage = nil
	require.NoError(t, store.Publish(ctx, w))

	// Absence is a deleted key, never a zero value.
	assert.False(t, mr.Exists("widget:overallAverage"))

	got := store.Read(ctx)
	assert.False(t, got.HasAverage())
	assert.Equal(t, 5, got.SubjectCount)
}

func TestSnapshotStore_ReadNeverPublished(t *testing.T) {
	store, _ := newTestStore(t)

	got := store.Read(context.Background())
	assert.False(t, got.HasAverage())
	assert.False(t, got.IsPopulated())
	assert.Zero(t, got.SubjectCount)
	assert.Equal(t, period.DefaultSemester, got.Semester)
}

func TestSnapshotStore_ReadUnreachableStore(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	// Reading is total: an unreachable store yields the empty snapshot.
	got := store.Read(context.Background())
	assert.False(t, got.HasAverage())
	assert.False(t, got.IsPopulated())
}

func TestReaderClientStartsWithoutStore(t *testing.T) {
	// The reader constructor never dials: a widget process must come up
	// and render the empty state even when the store is unreachable.
	cfg := DefaultConfig()
	cfg.Port = 1
	cfg.MaxRetries = 0
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.ReadTimeout = 100 * time.Millisecond

	client := NewReaderClient(cfg)
	t.Cleanup(func() { _ = client.Close() })

	store := NewSnapshotStore(client, slog.Default())
	got := store.Read(context.Background())
	assert.False(t, got.HasAverage())
	assert.False(t, got.IsPopulated())
	assert.False(t, store.ValidateAccess(context.Background()))
}

func TestSnapshotStore_CorruptedFieldsFallBack(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testWidget()))
	mr.Set("widget:overallAverage", "not-a-number")
	mr.Set("widget:gradingSystem", "percentage")
	mr.Set("widget:semester", "third")

	got := store.Read(ctx)
	assert.False(t, got.HasAverage())
	assert.Equal(t, grading.DefaultSystem, got.Year.System)
	assert.Equal(t, period.DefaultSemester, got.Semester)
	// Intact fields survive.
	assert.Equal(t, 5, got.SubjectCount)
	assert.True(t, got.IsPopulated())
}

func TestSnapshotStore_Clear(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testWidget()))
	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists("widget:lastUpdate"))

	got := store.Read(ctx)
	assert.False(t, got.IsPopulated())
	assert.False(t, got.HasAverage())
}

func TestSnapshotStore_PublishSignalsRefresh(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sub := store.Subscribe(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Publish(ctx, testWidget()))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, ChannelRefresh, msg.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh signal received")
	}
}

func TestSnapshotStore_ValidateAccess(t *testing.T) {
	store, mr := newTestStore(t)

	assert.True(t, store.ValidateAccess(context.Background()))
	// The probe cleans up after itself.
	assert.False(t, mr.Exists("widget:accessProbe"))

	mr.Close()
	assert.False(t, store.ValidateAccess(context.Background()))
}

func TestSnapshotStore_NoTTLOnSnapshotKeys(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, store.Publish(context.Background(), testWidget()))

	// The snapshot never expires on its own.
	assert.Equal(t, time.Duration(0), mr.TTL("widget:lastUpdate"))
	assert.Equal(t, time.Duration(0), mr.TTL("widget:overallAverage"))
}

func TestLegacySettings(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	legacy := NewLegacySettings(client)
	ctx := context.Background()

	completed, err := legacy.MigrationCompleted(ctx)
	require.NoError(t, err)
	assert.False(t, completed)

	require.NoError(t, legacy.Seed(ctx, 2022, "points"))
	require.NoError(t, legacy.Seed(ctx, 2023, "traditional"))
	mr.Set("legacy:gradingSystem:not-a-year", "points")

	records, err := legacy.SystemAssignments(ctx)
	require.NoError(t, err)
	// The malformed-year key is skipped.
	assert.Len(t, records, 2)

	require.NoError(t, legacy.MarkCompleted(ctx))
	completed, err = legacy.MigrationCompleted(ctx)
	require.NoError(t, err)
	assert.True(t, completed)
}
