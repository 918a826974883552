package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/excel-master-lab/excel_quest_api/model"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

type memProgressStore struct {
	data map[string][]byte
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{data: map[string][]byte{}}
}

func (s *memProgressStore) Get(key string) ([]byte, error) {
	raw, ok := s.data[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return raw, nil
}

func (s *memProgressStore) Set(key string, value []byte) error {
	s.data[key] = value
	return nil
}

func (s *memProgressStore) Delete(key string) error {
	delete(s.data, key)
	return nil
}

func newTestProgressService(store progressStore, now time.Time) *ProgressService {
	svc := &ProgressService{store: store}
	svc.now = func() time.Time { return now }
	return svc
}

func seedProgress(t *testing.T, store *memProgressStore, progress *model.Progress) {
	t.Helper()
	raw, err := json.Marshal(progress)
	require.NoError(t, err)
	store.data[shared.ProgressKeyPrefix+":"+progress.StudentID] = raw
}

func TestLoadNewStudentDefaults(t *testing.T) {
	svc := newTestProgressService(newMemProgressStore(), time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	progress, err := svc.Load("alice")
	require.NoError(t, err)
	require.Equal(t, "alice", progress.StudentID)
	require.Empty(t, progress.CompletedLessons)
	require.Equal(t, 0, progress.Stars)
	require.Equal(t, 0, progress.XP)
	require.Equal(t, 1, progress.Level)
	require.Equal(t, 1, progress.Streak)
	require.Equal(t, 0, progress.DailyProgress)
}

func TestRecordCompletionIdempotent(t *testing.T) {
	svc := newTestProgressService(newMemProgressStore(), time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	first, err := svc.RecordCompletion("alice", "lesson-1", shared.StarsPerLesson, shared.XPPerLesson)
	require.NoError(t, err)
	require.Equal(t, 10, first.Stars)
	require.Equal(t, 20, first.XP)
	require.Equal(t, 20, first.DailyProgress)
	require.Equal(t, []string{"lesson-1"}, first.CompletedLessons)

	again, err := svc.RecordCompletion("alice", "lesson-1", shared.StarsPerLesson, shared.XPPerLesson)
	require.NoError(t, err)
	require.Equal(t, 10, again.Stars)
	require.Equal(t, 20, again.XP)
	require.Equal(t, []string{"lesson-1"}, again.CompletedLessons)
}

func TestLevelDerivation(t *testing.T) {
	svc := newTestProgressService(newMemProgressStore(), time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	var progress *model.Progress
	var err error
	for i := 0; i < 4; i++ {
		progress, err = svc.RecordCompletion("alice", "lesson-"+string(rune('1'+i)), 10, 20)
		require.NoError(t, err)
	}
	require.Equal(t, 80, progress.XP)
	require.Equal(t, 1, progress.Level)

	progress, err = svc.RecordCompletion("alice", "lesson-5", 10, 20)
	require.NoError(t, err)
	require.Equal(t, 100, progress.XP)
	require.Equal(t, 2, progress.Level)
}

func TestDayRolloverConsecutiveDay(t *testing.T) {
	store := newMemProgressStore()
	seedProgress(t, store, &model.Progress{
		StudentID:     "alice",
		XP:            120,
		Streak:        3,
		DailyProgress: 40,
		LastActiveDay: "2026-03-09",
	})

	svc := newTestProgressService(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	progress, err := svc.Load("alice")
	require.NoError(t, err)
	require.Equal(t, 4, progress.Streak)
	require.Equal(t, 0, progress.DailyProgress)
	require.Equal(t, "2026-03-10", progress.LastActiveDay)
	require.Equal(t, 2, progress.Level)
}

func TestDayRolloverAfterGap(t *testing.T) {
	store := newMemProgressStore()
	seedProgress(t, store, &model.Progress{
		StudentID:     "alice",
		Streak:        7,
		DailyProgress: 40,
		LastActiveDay: "2026-03-05",
	})

	svc := newTestProgressService(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	progress, err := svc.Load("alice")
	require.NoError(t, err)
	require.Equal(t, 1, progress.Streak)
	require.Equal(t, 0, progress.DailyProgress)
}

func TestDayRolloverSameDayNoChange(t *testing.T) {
	store := newMemProgressStore()
	seedProgress(t, store, &model.Progress{
		StudentID:     "alice",
		Streak:        3,
		DailyProgress: 40,
		LastActiveDay: "2026-03-10",
	})

	svc := newTestProgressService(store, time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC))

	progress, err := svc.Load("alice")
	require.NoError(t, err)
	require.Equal(t, 3, progress.Streak)
	require.Equal(t, 40, progress.DailyProgress)
}

func TestRedeem(t *testing.T) {
	store := newMemProgressStore()
	seedProgress(t, store, &model.Progress{
		StudentID:     "alice",
		Stars:         60,
		LastActiveDay: "2026-03-10",
	})

	svc := newTestProgressService(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	progress, err := svc.Redeem("alice", shared.RewardStarCost)
	require.NoError(t, err)
	require.Equal(t, 10, progress.Stars)
}

func TestRedeemInsufficientStars(t *testing.T) {
	store := newMemProgressStore()
	seedProgress(t, store, &model.Progress{
		StudentID:     "alice",
		Stars:         30,
		LastActiveDay: "2026-03-10",
	})

	svc := newTestProgressService(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err := svc.Redeem("alice", shared.RewardStarCost)
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	require.Equal(t, 409, appErr.StatusCode)

	// Balance untouched after the failed redemption.
	progress, err := svc.Load("alice")
	require.NoError(t, err)
	require.Equal(t, 30, progress.Stars)
}

func TestReset(t *testing.T) {
	store := newMemProgressStore()
	seedProgress(t, store, &model.Progress{
		StudentID:        "alice",
		CompletedLessons: []string{"lesson-1", "lesson-2"},
		Stars:            20,
		XP:               40,
		Streak:           5,
		LastActiveDay:    "2026-03-10",
	})

	svc := newTestProgressService(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	progress, err := svc.Reset("alice")
	require.NoError(t, err)
	require.Empty(t, progress.CompletedLessons)
	require.Equal(t, 0, progress.Stars)
	require.Equal(t, 0, progress.XP)
	require.Equal(t, 1, progress.Level)
	require.Equal(t, 1, progress.Streak)
}

func TestMalformedBlobFailsOpen(t *testing.T) {
	store := newMemProgressStore()
	store.data[shared.ProgressKeyPrefix+":alice"] = []byte("{not json")

	svc := newTestProgressService(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	progress, err := svc.Load("alice")
	require.NoError(t, err)
	require.Equal(t, "alice", progress.StudentID)
	require.Equal(t, 0, progress.XP)
	require.Equal(t, 1, progress.Level)
	require.Equal(t, 1, progress.Streak)
}

func TestFileProgressStoreRoundTrip(t *testing.T) {
	store := &fileProgressStore{dir: t.TempDir()}

	require.NoError(t, store.Set("excel_master_progress:bob", []byte(`{"stars":5}`)))

	raw, err := store.Get("excel_master_progress:bob")
	require.NoError(t, err)
	require.JSONEq(t, `{"stars":5}`, string(raw))

	require.NoError(t, store.Delete("excel_master_progress:bob"))
	require.NoError(t, store.Delete("excel_master_progress:bob"))

	_, err = store.Get("excel_master_progress:bob")
	require.Error(t, err)
}
