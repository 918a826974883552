package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/excel-master-lab/excel_quest_api/model"
)

func newTestRepository(t *testing.T) *RecordRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.LearningRecord{},
		&model.LeaderboardEntry{},
		&model.ChatMessage{},
		&model.QuestionCount{},
	))

	return NewRecordRepository(db)
}

func TestCreateAndLookupLearningRecord(t *testing.T) {
	repo := newTestRepository(t)

	saved, err := repo.CreateLearningRecord(&model.LearningRecord{
		StudentID:        "alice",
		StudentName:      "Alice",
		LessonID:         "l1",
		TimeSpentSeconds: 42,
		AnswerAttempts:   2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	id, err := repo.GetLearningRecordID("alice", "l1")
	require.NoError(t, err)
	require.Equal(t, saved.ID, id)

	_, err = repo.GetLearningRecordID("alice", "l2")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBestEntriesCollapsesToFastestRun(t *testing.T) {
	repo := newTestRepository(t)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rows := []model.LeaderboardEntry{
		{StudentID: "a", StudentName: "Anna", CompletionTimeSeconds: 100, CompletedAt: base},
		{StudentID: "a", StudentName: "Anna", CompletionTimeSeconds: 80, CompletedAt: base.Add(time.Hour)},
		{StudentID: "b", StudentName: "Ben", CompletionTimeSeconds: 90, CompletedAt: base},
		{StudentID: "c", StudentName: "Cleo", CompletionTimeSeconds: 110, CompletedAt: base},
	}
	for i := range rows {
		_, err := repo.CreateLeaderboardEntry(&rows[i])
		require.NoError(t, err)
	}

	best, err := repo.BestEntries()
	require.NoError(t, err)
	require.Len(t, best, 3)

	require.Equal(t, "a", best[0].StudentID)
	require.Equal(t, float64(80), best[0].CompletionTimeSeconds)
	require.Equal(t, "b", best[1].StudentID)
	require.Equal(t, "c", best[2].StudentID)
}

func TestBestEntriesTieBreaksOnCompletedAt(t *testing.T) {
	repo := newTestRepository(t)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := repo.CreateLeaderboardEntry(&model.LeaderboardEntry{
		StudentID: "a", CompletionTimeSeconds: 90, CompletedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.CreateLeaderboardEntry(&model.LeaderboardEntry{
		StudentID: "a", CompletionTimeSeconds: 90, CompletedAt: base,
	})
	require.NoError(t, err)

	best, err := repo.BestEntries()
	require.NoError(t, err)
	require.Len(t, best, 1)
	require.Equal(t, base.Unix(), best[0].CompletedAt.Unix())
}

func TestChatMessagesOrderedByTimestamp(t *testing.T) {
	repo := newTestRepository(t)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := repo.CreateChatMessage(&model.ChatMessage{
		LearningRecordID: "r1", MessageContent: "second", Timestamp: base.Add(time.Minute),
	})
	require.NoError(t, err)
	_, err = repo.CreateChatMessage(&model.ChatMessage{
		LearningRecordID: "r1", MessageContent: "first", IsUser: true, Timestamp: base,
	})
	require.NoError(t, err)
	_, err = repo.CreateChatMessage(&model.ChatMessage{
		LearningRecordID: "r2", MessageContent: "other record", Timestamp: base,
	})
	require.NoError(t, err)

	messages, err := repo.GetChatMessages("r1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "first", messages[0].MessageContent)
	require.Equal(t, "second", messages[1].MessageContent)
}

func TestQuestionCountLifecycle(t *testing.T) {
	repo := newTestRepository(t)

	qc, err := repo.GetOrCreateQuestionCount("r1", "alice", "l1")
	require.NoError(t, err)
	require.Equal(t, 0, qc.QuestionCount)

	again, err := repo.GetOrCreateQuestionCount("r1", "alice", "l1")
	require.NoError(t, err)
	require.Equal(t, qc.ID, again.ID)

	require.NoError(t, repo.IncrementQuestionCount(qc.ID))
	require.NoError(t, repo.IncrementQuestionCount(qc.ID))

	final, err := repo.GetOrCreateQuestionCount("r1", "alice", "l1")
	require.NoError(t, err)
	require.Equal(t, 2, final.QuestionCount)

	require.Error(t, repo.IncrementQuestionCount("missing"))
}
