package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/period"
	"github.com/deinadmin/school-grade-hub/internal/domain/snapshot"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYS AND CHANNELS
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot keys. The store holds aggregated values, never raw entities.
// No TTLs: the snapshot never expires on its own, only Clear removes it.
const (
	keyOverallAverage  = "widget:overallAverage"
	keySubjectCount    = "widget:subjectCount"
	keyGradeCount      = "widget:gradeCount"
	keySchoolYearStart = "widget:schoolYearStart"
	keySemester        = "widget:semester"
	keyGradingSystem   = "widget:gradingSystem"
	keyLastUpdate      = "widget:lastUpdate"

	keyAccessProbe = "widget:accessProbe"

	// ChannelRefresh is the pub/sub channel the reader process listens on.
	// The signal is best-effort: deliveries may be coalesced or lost, the
	// reader's periodic refresh covers the gap.
	ChannelRefresh = "widget:refresh"
)

// snapshotKeys lists every key Publish writes, in MGET order.
var snapshotKeys = []string{
	keyOverallAverage,
	keySubjectCount,
	keyGradeCount,
	keySchoolYearStart,
	keySemester,
	keyGradingSystem,
	keyLastUpdate,
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT STORE
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotStore implements snapshot.Store on Redis. One writer (the primary
// process), one reader (the widget process); the polarity of every value is
// already resolved by the aggregation layer before it lands here.
type SnapshotStore struct {
	client *Client
	logger *slog.Logger
	now    func() time.Time
}

// NewSnapshotStore creates a SnapshotStore.
func NewSnapshotStore(client *Client, logger *slog.Logger) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		logger: logger.With(slog.String("component", "snapshot_store")),
		now:    time.Now,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Publisher
// ─────────────────────────────────────────────────────────────────────────────

// Publish writes every snapshot field in one pipeline, stamps the update
// time, then signals the reader. An absent overall average DELETEs the key:
// absence is a distinct state, not a zero.
func (s *SnapshotStore) Publish(ctx context.Context, w snapshot.Widget) error {
	now := s.now().UTC()

	pipe := s.client.Client().TxPipeline()

	if w.HasAverage() {
		pipe.Set(ctx, keyOverallAverage, strconv.FormatFloat(*w.OverallAverage, 'f', -1, 64), 0)
	} else {
		pipe.Del(ctx, keyOverallAverage)
	}
	pipe.Set(ctx, keySubjectCount, strconv.Itoa(w.SubjectCount), 0)
	pipe.Set(ctx, keyGradeCount, strconv.Itoa(w.GradeCount), 0)
	pipe.Set(ctx, keySchoolYearStart, strconv.Itoa(w.Year.StartYear), 0)
	pipe.Set(ctx, keySemester, string(w.Semester), 0)
	pipe.Set(ctx, keyGradingSystem, string(w.Year.System), 0)
	pipe.Set(ctx, keyLastUpdate, now.Format(time.RFC3339Nano), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("snapshot publish failed: %w", err)
	}

	s.signalRefresh(ctx)
	return nil
}

// Clear deletes every snapshot key and signals the reader so it redraws
// the empty state. This is the only way back to the uninitialized state.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	if err := s.client.Client().Del(ctx, snapshotKeys...).Err(); err != nil {
		return fmt.Errorf("snapshot clear failed: %w", err)
	}

	s.signalRefresh(ctx)
	return nil
}

// signalRefresh fires the refresh signal. Failures are logged and swallowed:
// the reader also refreshes on a timer, so a lost signal only delays it.
func (s *SnapshotStore) signalRefresh(ctx context.Context) {
	if err := s.client.Client().Publish(ctx, ChannelRefresh, "refresh").Err(); err != nil {
		s.logger.Warn("refresh signal failed", slog.String("error", err.Error()))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reader
// ─────────────────────────────────────────────────────────────────────────────

// Read returns the last published snapshot. The read is total: an
// unreachable store, a snapshot that was never published, or corrupted
// values all yield a well-defined empty snapshot, never an error. The
// reader process has no recovery path, so it must always get something
// it can render.
func (s *SnapshotStore) Read(ctx context.Context) snapshot.Widget {
	values, err := s.client.Client().MGet(ctx, snapshotKeys...).Result()
	if err != nil {
		s.logger.Warn("snapshot read failed", slog.String("error", err.Error()))
		return snapshot.Empty(s.now())
	}

	lastUpdate, ok := parseTime(values[6])
	if !ok {
		// Never published (or the stamp is gone): uninitialized state.
		return snapshot.Empty(s.now())
	}

	w := snapshot.Empty(s.now())
	w.LastUpdate = lastUpdate

	if avg, ok := parseFloat(values[0]); ok {
		w.OverallAverage = snapshot.Float64Ptr(avg)
	}
	if n, ok := parseInt(values[1]); ok {
		w.SubjectCount = n
	}
	if n, ok := parseInt(values[2]); ok {
		w.GradeCount = n
	}

	startYear, _ := parseInt(values[3])
	w.Year = period.FromPersisted(startYear, asString(values[5]), s.now())
	w.Semester = period.ParseSemester(asString(values[4]))

	return w
}

// ValidateAccess writes a probe value and reads it straight back.
// Diagnostic only, not part of the hot path.
func (s *SnapshotStore) ValidateAccess(ctx context.Context) bool {
	probe := strconv.FormatInt(s.now().UnixNano(), 10)

	if err := s.client.Client().Set(ctx, keyAccessProbe, probe, time.Minute).Err(); err != nil {
		return false
	}

	got, err := s.client.Client().Get(ctx, keyAccessProbe).Result()
	if err != nil || got != probe {
		return false
	}

	_ = s.client.Client().Del(ctx, keyAccessProbe).Err()
	return true
}

// Subscribe opens a subscription on the refresh channel for the reader
// process. The caller owns the returned PubSub and must close it.
func (s *SnapshotStore) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.Client().Subscribe(ctx, ChannelRefresh)
}

// ─────────────────────────────────────────────────────────────────────────────
// Parsing Helpers
// ─────────────────────────────────────────────────────────────────────────────

// MGET returns nil for missing keys and strings otherwise. Every parser
// treats anything unexpected as absent.

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseFloat(v interface{}) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseInt(v interface{}) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseTime(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
