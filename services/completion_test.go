package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/model"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

type fakeCatalog struct {
	lessons []*model.Lesson
}

func (f *fakeCatalog) ByID(lessonID string) (*model.Lesson, error) {
	for _, lesson := range f.lessons {
		if lesson.ID == lessonID {
			return lesson, nil
		}
	}
	return nil, fmt.Errorf("lesson %s not found", lessonID)
}

func (f *fakeCatalog) ByOrder(n int) (*model.Lesson, error) {
	for _, lesson := range f.lessons {
		if lesson.OrderNumber == n {
			return lesson, nil
		}
	}
	return nil, fmt.Errorf("lesson number %d not found", n)
}

func (f *fakeCatalog) CheckAnswer(lessonID, submission string) (bool, error) {
	lesson, err := f.ByID(lessonID)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(lesson.Question.Answer), strings.TrimSpace(submission)), nil
}

type fakeRecordSink struct {
	learningRecords []*model.LearningRecord
	leaderboard     []*model.LeaderboardEntry
	failLearning    bool
	rank            int
}

func (f *fakeRecordSink) SaveLearningRecord(record *model.LearningRecord) (string, error) {
	if f.failLearning {
		return "", shared.ErrRecordPersistFailed(errors.New("connection refused"))
	}
	f.learningRecords = append(f.learningRecords, record)
	return fmt.Sprintf("record-%d", len(f.learningRecords)), nil
}

func (f *fakeRecordSink) SaveLeaderboardEntry(entry *model.LeaderboardEntry) (string, error) {
	f.leaderboard = append(f.leaderboard, entry)
	return fmt.Sprintf("entry-%d", len(f.leaderboard)), nil
}

func (f *fakeRecordSink) GetPlayerRank(studentID string) (int, error) {
	return f.rank, nil
}

func (f *fakeRecordSink) GetLeaderboardStats() (*dto.LeaderboardStatsData, error) {
	return &dto.LeaderboardStatsData{ParticipantCount: len(f.leaderboard)}, nil
}

type fakeFlusher struct {
	calls []string
}

func (f *fakeFlusher) Flush(studentID, lessonID, learningRecordID string) {
	f.calls = append(f.calls, studentID+"/"+lessonID+"/"+learningRecordID)
}

type completionFixture struct {
	svc     *CompletionService
	catalog *fakeCatalog
	records *fakeRecordSink
	flusher *fakeFlusher
	clock   time.Time
}

func newCompletionFixture(t *testing.T) *completionFixture {
	t.Helper()

	fix := &completionFixture{
		catalog: &fakeCatalog{lessons: []*model.Lesson{
			{ID: "l1", OrderNumber: 1, Title: "Basics", Question: model.Question{Answer: "=SUM(A1:A5)", Explanation: "Adds the range."}},
			{ID: "l2", OrderNumber: 2, Title: "Final", IsFinal: true, Question: model.Question{Answer: "=COUNTIF(B2:B6,\">60\")", Explanation: "Counts passing scores."}},
		}},
		records: &fakeRecordSink{rank: 1},
		flusher: &fakeFlusher{},
		clock:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	progress := newTestProgressService(newMemProgressStore(), fix.clock)

	fix.svc = &CompletionService{
		catalog:           fix.catalog,
		progress:          progress,
		records:           fix.records,
		chat:              fix.flusher,
		sessions:          make(map[string]*studentSessions),
		rewardRedirectURL: "https://example.com/survey",
	}
	fix.svc.now = func() time.Time { return fix.clock }
	return fix
}

func (fix *completionFixture) advance(d time.Duration) {
	fix.clock = fix.clock.Add(d)
}

func submitReq(answer string) dto.SubmitAnswerRequest {
	return dto.SubmitAnswerRequest{StudentID: "alice", StudentName: "Alice", Answer: answer}
}

func TestSubmitWithoutStart(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.SubmitAnswer("l1", submitReq("=SUM(A1:A5)"))
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	require.Equal(t, 400, appErr.StatusCode)
}

func TestSubmitUnknownLesson(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.SubmitAnswer("nope", submitReq("whatever"))
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	require.Equal(t, 404, appErr.StatusCode)
}

func TestStartLessonIdempotent(t *testing.T) {
	fix := newCompletionFixture(t)

	first, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)
	require.NotNil(t, first.GameStartedAt)
	require.Equal(t, first.StartedAt, *first.GameStartedAt)

	fix.advance(30 * time.Second)

	again, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)
	require.Equal(t, first.StartedAt, again.StartedAt)
	require.Equal(t, *first.GameStartedAt, *again.GameStartedAt)
}

func TestSubmitIncorrectCountsAttempt(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)

	resp, err := fix.svc.SubmitAnswer("l1", submitReq("=SUM(A1:A6)"))
	require.NoError(t, err)
	require.False(t, resp.Correct)
	require.Equal(t, 1, resp.Attempts)
	require.Nil(t, resp.Progress)

	resp, err = fix.svc.SubmitAnswer("l1", submitReq("wrong again"))
	require.NoError(t, err)
	require.Equal(t, 2, resp.Attempts)

	require.Empty(t, fix.records.learningRecords)
}

func TestSubmitCorrectAppliesRewardOnce(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)

	fix.advance(45 * time.Second)

	resp, err := fix.svc.SubmitAnswer("l1", submitReq("  =sum(a1:a5) "))
	require.NoError(t, err)
	require.True(t, resp.Correct)
	require.Equal(t, 1, resp.Attempts)
	require.Equal(t, "Adds the range.", resp.Explanation)
	require.InDelta(t, 45, resp.ElapsedSeconds, 0.001)
	require.Equal(t, 10, resp.Progress.Stars)
	require.Equal(t, 20, resp.Progress.XP)
	require.Empty(t, resp.RecordWarning)

	require.Len(t, fix.records.learningRecords, 1)
	record := fix.records.learningRecords[0]
	require.Equal(t, "alice", record.StudentID)
	require.Equal(t, "l1", record.LessonID)
	require.Equal(t, 1, record.AnswerAttempts)
	require.InDelta(t, 45, record.TimeSpentSeconds, 0.001)

	require.Equal(t, []string{"alice/l1/record-1"}, fix.flusher.calls)

	// Repeat correct submission is navigation, not a second completion.
	again, err := fix.svc.SubmitAnswer("l1", submitReq("=SUM(A1:A5)"))
	require.NoError(t, err)
	require.True(t, again.Correct)
	require.True(t, again.AlreadyCompleted)
	require.Equal(t, 10, again.Progress.Stars)
	require.Len(t, fix.records.learningRecords, 1)
	require.Len(t, fix.flusher.calls, 1)
}

func TestSubmitCorrectConcurrentCreatesOneRecord(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)

	fix.advance(20 * time.Second)

	var wg sync.WaitGroup
	responses := make([]*dto.SubmitAnswerResponse, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = fix.svc.SubmitAnswer("l1", submitReq("=SUM(A1:A5)"))
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	require.Len(t, fix.records.learningRecords, 1)
	require.Len(t, fix.flusher.calls, 1)

	// Exactly one of the two racing submissions wins the completion.
	var winner *dto.SubmitAnswerResponse
	for _, resp := range responses {
		require.True(t, resp.Correct)
		if !resp.AlreadyCompleted {
			require.Nil(t, winner)
			winner = resp
		}
	}
	require.NotNil(t, winner)
	require.Equal(t, 10, winner.Progress.Stars)
}

func TestSubmitCorrectKeepsProgressWhenRecordFails(t *testing.T) {
	fix := newCompletionFixture(t)
	fix.records.failLearning = true

	_, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)

	resp, err := fix.svc.SubmitAnswer("l1", submitReq("=SUM(A1:A5)"))
	require.NoError(t, err)
	require.True(t, resp.Correct)
	require.NotEmpty(t, resp.RecordWarning)
	require.Equal(t, 10, resp.Progress.Stars)
	require.Empty(t, fix.flusher.calls)
}

func TestFinalLessonGameResult(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)

	fix.advance(40 * time.Second)
	_, err = fix.svc.SubmitAnswer("l1", submitReq("=SUM(A1:A5)"))
	require.NoError(t, err)

	_, err = fix.svc.StartLesson("alice", "l2")
	require.NoError(t, err)

	fix.advance(53 * time.Second)
	resp, err := fix.svc.SubmitAnswer("l2", submitReq("=COUNTIF(B2:B6,\">60\")"))
	require.NoError(t, err)
	require.True(t, resp.Correct)
	require.NotNil(t, resp.GameResult)

	// Total time runs from opening lesson 1, not from the final lesson.
	require.InDelta(t, 93, resp.GameResult.TotalTimeSeconds, 0.001)
	require.Equal(t, "1分33秒", resp.GameResult.TotalTimeString)
	require.Equal(t, 1, resp.GameResult.Rank)
	require.NotNil(t, resp.GameResult.Stats)

	require.Len(t, fix.records.leaderboard, 1)
	entry := fix.records.leaderboard[0]
	require.InDelta(t, 93, entry.CompletionTimeSeconds, 0.001)
	require.Equal(t, 20, entry.StarsEarned)
}

func TestLeaderboardSubmittedAtMostOnce(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.StartLesson("alice", "l2")
	require.NoError(t, err)

	fix.advance(30 * time.Second)
	_, err = fix.svc.SubmitAnswer("l2", submitReq("=COUNTIF(B2:B6,\">60\")"))
	require.NoError(t, err)
	require.Len(t, fix.records.leaderboard, 1)

	// Force the completion path to run again; the guard must still hold.
	fix.svc.sessions["alice"].Lessons["l2"].Completed = false

	_, err = fix.svc.SubmitAnswer("l2", submitReq("=COUNTIF(B2:B6,\">60\")"))
	require.NoError(t, err)
	require.Len(t, fix.records.leaderboard, 1)
}

func TestFinalLessonWithoutGameStartFallsBack(t *testing.T) {
	fix := newCompletionFixture(t)

	// Lesson 1 never opened: the anchor falls back to this lesson's start.
	_, err := fix.svc.StartLesson("alice", "l2")
	require.NoError(t, err)

	fix.advance(70 * time.Second)
	resp, err := fix.svc.SubmitAnswer("l2", submitReq("=COUNTIF(B2:B6,\">60\")"))
	require.NoError(t, err)
	require.NotNil(t, resp.GameResult)
	require.InDelta(t, 70, resp.GameResult.TotalTimeSeconds, 0.001)
}

func TestRedeemReward(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.RedeemReward("alice")
	require.Error(t, err)

	keeper := fix.svc.progress.(*ProgressService)
	_, err = keeper.RecordCompletion("alice", "bonus", 60, 0)
	require.NoError(t, err)

	resp, err := fix.svc.RedeemReward("alice")
	require.NoError(t, err)
	require.Equal(t, 10, resp.Progress.Stars)
	require.Equal(t, "https://example.com/survey", resp.RedirectURL)
}

func TestResetProgressClearsSessions(t *testing.T) {
	fix := newCompletionFixture(t)

	_, err := fix.svc.StartLesson("alice", "l1")
	require.NoError(t, err)

	resp, err := fix.svc.ResetProgress("alice")
	require.NoError(t, err)
	require.Equal(t, 0, resp.Stars)
	require.Empty(t, resp.CompletedLessons)

	// Session timers are gone; submitting without reopening is rejected.
	_, err = fix.svc.SubmitAnswer("l1", submitReq("=SUM(A1:A5)"))
	require.Error(t, err)
}
