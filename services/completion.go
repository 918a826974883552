package services

import (
	"os"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/model"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

// answerCatalog is the slice of CatalogService the controller needs.
type answerCatalog interface {
	ByID(lessonID string) (*model.Lesson, error)
	ByOrder(n int) (*model.Lesson, error)
	CheckAnswer(lessonID, submission string) (bool, error)
}

// progressKeeper is the slice of ProgressService the controller needs.
type progressKeeper interface {
	Load(studentID string) (*model.Progress, error)
	RecordCompletion(studentID, lessonID string, starsDelta, xpDelta int) (*model.Progress, error)
	Redeem(studentID string, cost int) (*model.Progress, error)
	Reset(studentID string) (*model.Progress, error)
}

// recordSink is the slice of RecordService the controller needs.
type recordSink interface {
	SaveLearningRecord(record *model.LearningRecord) (string, error)
	SaveLeaderboardEntry(entry *model.LeaderboardEntry) (string, error)
	GetPlayerRank(studentID string) (int, error)
	GetLeaderboardStats() (*dto.LeaderboardStatsData, error)
}

// transcriptFlusher lets the controller hand a fresh learning-record id to the
// chat buffer so pending messages can be persisted.
type transcriptFlusher interface {
	Flush(studentID, lessonID, learningRecordID string)
}

// lessonSession is the per-(student, lesson) visit state. A session moves
// Unanswered -> Completed on the first correct submission and stays there.
type lessonSession struct {
	StartedAt time.Time
	Attempts  int
	Completed bool
}

type studentSessions struct {
	// GameStartedAt is set when lesson 1 is first opened and is the anchor
	// for total completion time. Revisiting lesson 1 does not move it.
	GameStartedAt time.Time

	// LeaderboardSubmitted guards the final-lesson leaderboard insert; the
	// storage layer itself does not enforce uniqueness.
	LeaderboardSubmitted bool

	Lessons map[string]*lessonSession
}

// CompletionService orchestrates answer submission: validation against the
// catalog, the one-shot progress reward, remote record persistence and the
// final-lesson leaderboard submission.
type CompletionService struct {
	context.DefaultService

	catalog  answerCatalog
	progress progressKeeper
	records  recordSink
	chat     transcriptFlusher

	mu       sync.Mutex
	sessions map[string]*studentSessions

	rewardRedirectURL string

	now func() time.Time
}

const COMPLETION_SVC = "completion_svc"

func (svc CompletionService) Id() string {
	return COMPLETION_SVC
}

func (svc *CompletionService) Configure(ctx *context.Context) error {
	svc.sessions = make(map[string]*studentSessions)
	svc.now = time.Now

	svc.rewardRedirectURL = os.Getenv("REWARD_SURVEY_URL")
	if svc.rewardRedirectURL == "" {
		svc.rewardRedirectURL = "https://forms.gle/excel-master-reward"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *CompletionService) Start() error {
	svc.catalog = svc.Service(CATALOG_SVC).(*CatalogService)
	svc.progress = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.records = svc.Service(RECORD_SVC).(*RecordService)
	svc.chat = svc.Service(CHAT_SVC).(*ChatService)
	return nil
}

func (svc *CompletionService) studentLocked(studentID string) *studentSessions {
	student, ok := svc.sessions[studentID]
	if !ok {
		student = &studentSessions{Lessons: make(map[string]*lessonSession)}
		svc.sessions[studentID] = student
	}
	return student
}

// StartLesson records the session start timestamp for a lesson visit. Opening
// an already-open lesson keeps the original timestamp.
func (svc *CompletionService) StartLesson(studentID, lessonID string) (*dto.StartLessonResponse, error) {
	lesson, err := svc.catalog.ByID(lessonID)
	if err != nil {
		return nil, shared.ErrLessonNotFound(lessonID)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	student := svc.studentLocked(studentID)
	session, ok := student.Lessons[lessonID]
	if !ok {
		session = &lessonSession{StartedAt: svc.now()}
		student.Lessons[lessonID] = session
	}

	if lesson.OrderNumber == 1 && student.GameStartedAt.IsZero() {
		student.GameStartedAt = session.StartedAt
	}

	resp := &dto.StartLessonResponse{
		LessonID:  lessonID,
		StartedAt: session.StartedAt,
	}
	if !student.GameStartedAt.IsZero() {
		gameStart := student.GameStartedAt
		resp.GameStartedAt = &gameStart
	}
	return resp, nil
}

// SubmitAnswer runs the submission state machine. Incorrect answers only bump
// the attempt counter; correct answers apply the reward exactly once and then
// trigger remote persistence, which is never allowed to undo local progress.
func (svc *CompletionService) SubmitAnswer(lessonID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	lesson, err := svc.catalog.ByID(lessonID)
	if err != nil {
		return nil, shared.ErrLessonNotFound(lessonID)
	}

	svc.mu.Lock()
	student := svc.studentLocked(req.StudentID)
	session, ok := student.Lessons[lessonID]
	if !ok || session.StartedAt.IsZero() {
		svc.mu.Unlock()
		return nil, shared.ErrInvalidSessionStart(lessonID)
	}

	session.Attempts++
	attempts := session.Attempts
	startedAt := session.StartedAt
	svc.mu.Unlock()

	correct, err := svc.catalog.CheckAnswer(lessonID, req.Answer)
	if err != nil {
		return nil, shared.ErrLessonNotFound(lessonID)
	}

	recordSubmission(correct)
	if !correct {
		return &dto.SubmitAnswerResponse{Correct: false, Attempts: attempts}, nil
	}

	now := svc.now()
	elapsed := now.Sub(startedAt).Seconds()

	// Test-and-set under the lock so two correct submissions racing each
	// other produce exactly one completion (and one learning record).
	svc.mu.Lock()
	alreadyDone := session.Completed
	session.Completed = true
	svc.mu.Unlock()

	if alreadyDone {
		// Terminal state: a repeat correct submission is a navigation
		// action, not a new completion.
		progress, _ := svc.progress.Load(req.StudentID)
		return &dto.SubmitAnswerResponse{
			Correct:          true,
			Attempts:         attempts,
			AlreadyCompleted: true,
			Explanation:      lesson.Question.Explanation,
			Progress:         ToProgressResponse(progress),
		}, nil
	}

	progress, err := svc.progress.RecordCompletion(req.StudentID, lessonID, shared.StarsPerLesson, shared.XPPerLesson)
	if err != nil {
		return nil, err
	}
	recordLessonCompleted()

	resp := &dto.SubmitAnswerResponse{
		Correct:        true,
		Attempts:       attempts,
		Explanation:    lesson.Question.Explanation,
		ElapsedSeconds: elapsed,
		Progress:       ToProgressResponse(progress),
	}

	// Local progress is authoritative: a failed insert is logged and
	// surfaced as a warning, never rolled back.
	recordID, err := svc.records.SaveLearningRecord(&model.LearningRecord{
		StudentID:        req.StudentID,
		StudentName:      req.StudentName,
		LessonID:         lessonID,
		StartedAt:        startedAt,
		CompletedAt:      now,
		TimeSpentSeconds: elapsed,
		AnswerAttempts:   attempts,
	})
	if err != nil {
		log.Printf("Learning record persist failed for %s/%s: %v", req.StudentID, lessonID, err)
		resp.RecordWarning = "failed to persist learning record"
	} else if svc.chat != nil {
		svc.chat.Flush(req.StudentID, lessonID, recordID)
	}

	if lesson.IsFinal {
		resp.GameResult = svc.finishGame(student, req, progress, startedAt, now)
	}

	return resp, nil
}

// finishGame handles the final-lesson extras: total time from the game start,
// the guarded leaderboard insert and a standing refresh. Nothing here can fail
// the completion itself.
func (svc *CompletionService) finishGame(student *studentSessions, req dto.SubmitAnswerRequest, progress *model.Progress, lessonStart, now time.Time) *dto.GameResultSummary {
	svc.mu.Lock()
	gameStart := student.GameStartedAt
	submitted := student.LeaderboardSubmitted
	if !submitted {
		student.LeaderboardSubmitted = true
	}
	svc.mu.Unlock()

	if gameStart.IsZero() {
		// Lesson 1 was never opened in this session; fall back to this
		// lesson's start so the entry still carries a sane timestamp.
		gameStart = lessonStart
	}

	totalSeconds := now.Sub(gameStart).Seconds()
	result := &dto.GameResultSummary{
		TotalTimeSeconds: totalSeconds,
		TotalTimeString:  shared.FormatCompletionTime(totalSeconds),
	}

	if !submitted {
		_, err := svc.records.SaveLeaderboardEntry(&model.LeaderboardEntry{
			StudentID:             req.StudentID,
			StudentName:           req.StudentName,
			CompletionTimeSeconds: totalSeconds,
			CompletionTimeString:  result.TotalTimeString,
			StartedAt:             gameStart,
			CompletedAt:           now,
			StarsEarned:           progress.Stars,
		})
		if err != nil {
			log.Printf("Leaderboard entry persist failed for %s: %v", req.StudentID, err)
		} else {
			recordLeaderboardSubmission()
		}
	}

	rank, err := svc.records.GetPlayerRank(req.StudentID)
	if err != nil {
		log.Printf("Failed to fetch player rank for %s: %v", req.StudentID, err)
	}
	result.Rank = rank

	stats, err := svc.records.GetLeaderboardStats()
	if err != nil {
		log.Printf("Failed to fetch leaderboard stats: %v", err)
	}
	result.Stats = stats

	return result
}

// GetProgress returns the student's current progress (with day rollover applied).
func (svc *CompletionService) GetProgress(studentID string) (*dto.ProgressResponse, error) {
	progress, err := svc.progress.Load(studentID)
	if err != nil {
		return nil, err
	}
	return ToProgressResponse(progress), nil
}

// RedeemReward spends the fixed star cost and hands back the external redirect
// the client follows to claim the reward.
func (svc *CompletionService) RedeemReward(studentID string) (*dto.RedeemRewardResponse, error) {
	progress, err := svc.progress.Redeem(studentID, shared.RewardStarCost)
	if err != nil {
		return nil, err
	}
	return &dto.RedeemRewardResponse{
		Progress:    ToProgressResponse(progress),
		RedirectURL: svc.rewardRedirectURL,
	}, nil
}

// ResetProgress clears both the stored progress and any in-memory session
// timers (lesson starts, leaderboard guard) for the student.
func (svc *CompletionService) ResetProgress(studentID string) (*dto.ProgressResponse, error) {
	svc.mu.Lock()
	delete(svc.sessions, studentID)
	svc.mu.Unlock()

	progress, err := svc.progress.Reset(studentID)
	if err != nil {
		return nil, err
	}
	return ToProgressResponse(progress), nil
}

// ToProgressResponse shapes internal progress state for clients.
func ToProgressResponse(progress *model.Progress) *dto.ProgressResponse {
	if progress == nil {
		return nil
	}
	return &dto.ProgressResponse{
		StudentID:        progress.StudentID,
		CompletedLessons: progress.CompletedLessons,
		Stars:            progress.Stars,
		XP:               progress.XP,
		Level:            progress.Level,
		XPToNextLevel:    shared.LevelStepXP - progress.XP%shared.LevelStepXP,
		Streak:           progress.Streak,
		DailyProgress:    progress.DailyProgress,
		DailyGoal:        shared.DailyGoalXP,
		UpdatedAt:        progress.UpdatedAt,
	}
}
