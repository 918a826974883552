package services

import (
	"errors"
	"os"
	"sync"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/model"
	"github.com/excel-master-lab/excel_quest_api/services/repositories"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

// RecordService is the client for the remote record store. Inserts are
// append-only; ranking reads collapse each student's rows to their fastest
// run before any ordering or counting.
type RecordService struct {
	context.DefaultService

	repo *repositories.RecordRepository

	// incrementLocks serializes question-count increments per record id;
	// the update is a read-modify-write and loses writes when raced.
	incrementMu    sync.Mutex
	incrementLocks map[string]*sync.Mutex
}

const RECORD_SVC = "record_svc"

func (svc RecordService) Id() string {
	return RECORD_SVC
}

func (svc *RecordService) Configure(ctx *context.Context) error {
	svc.incrementLocks = make(map[string]*sync.Mutex)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RecordService) Start() error {
	var db *gorm.DB
	if os.Getenv("DB_DRIVER") == "postgres" {
		db = svc.Service(POSTGRES_SVC).(*PostgresService).Db()
	} else {
		db = svc.Service(SQLITE_SVC).(*SqliteService).Db()
	}

	svc.repo = repositories.NewRecordRepository(db)
	return nil
}

// ==================== LEARNING RECORDS ====================

func (svc *RecordService) SaveLearningRecord(record *model.LearningRecord) (string, error) {
	saved, err := svc.repo.CreateLearningRecord(record)
	if err != nil {
		log.Printf("Failed to save learning record for %s/%s: %v", record.StudentID, record.LessonID, err)
		return "", shared.ErrRecordPersistFailed(err)
	}
	return saved.ID, nil
}

// GetLearningRecordID returns the empty string (no error) when no record
// exists for the pair yet.
func (svc *RecordService) GetLearningRecordID(studentID, lessonID string) (string, error) {
	id, err := svc.repo.GetLearningRecordID(studentID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ==================== LEADERBOARD ====================

func (svc *RecordService) SaveLeaderboardEntry(entry *model.LeaderboardEntry) (string, error) {
	saved, err := svc.repo.CreateLeaderboardEntry(entry)
	if err != nil {
		log.Printf("Failed to save leaderboard entry for %s: %v", entry.StudentID, err)
		return "", shared.ErrRecordPersistFailed(err)
	}
	return saved.ID, nil
}

// GetPlayerRank ranks a student by their fastest run: 1 plus the number of
// students whose best time is strictly faster. A student with no entries is
// unranked and gets the sentinel 0.
func (svc *RecordService) GetPlayerRank(studentID string) (int, error) {
	best, err := svc.repo.BestEntries()
	if err != nil {
		return 0, err
	}

	var mine *model.LeaderboardEntry
	for i := range best {
		if best[i].StudentID == studentID {
			mine = &best[i]
			break
		}
	}
	if mine == nil {
		return 0, nil
	}

	rank := 1
	for i := range best {
		if best[i].StudentID != studentID && best[i].CompletionTimeSeconds < mine.CompletionTimeSeconds {
			rank++
		}
	}
	return rank, nil
}

// GetLeaderboardStats aggregates over each student's best run. Student ids and
// names are masked here, before the data can reach any external surface.
func (svc *RecordService) GetLeaderboardStats() (*dto.LeaderboardStatsData, error) {
	best, err := svc.repo.BestEntries()
	if err != nil {
		return nil, err
	}

	stats := &dto.LeaderboardStatsData{
		ParticipantCount: len(best),
		Rankings:         make([]dto.RankingEntry, 0, len(best)),
	}
	if len(best) == 0 {
		return stats, nil
	}

	var total float64
	for i, entry := range best {
		total += entry.CompletionTimeSeconds
		stats.Rankings = append(stats.Rankings, dto.RankingEntry{
			Rank:                  i + 1,
			StudentID:             shared.MaskStudentID(entry.StudentID),
			StudentName:           shared.MaskStudentName(entry.StudentName),
			CompletionTimeSeconds: entry.CompletionTimeSeconds,
			CompletionTimeString:  entry.CompletionTimeString,
			StarsEarned:           entry.StarsEarned,
			CompletedAt:           entry.CompletedAt,
		})
	}

	stats.FastestTimeString = shared.FormatCompletionTime(best[0].CompletionTimeSeconds)
	stats.AverageTimeString = shared.FormatCompletionTime(total / float64(len(best)))
	return stats, nil
}

// ==================== CHAT ====================

func (svc *RecordService) SaveChatMessage(msg *model.ChatMessage) error {
	if _, err := svc.repo.CreateChatMessage(msg); err != nil {
		log.Printf("Failed to save chat message for record %s: %v", msg.LearningRecordID, err)
		return shared.ErrRecordPersistFailed(err)
	}
	return nil
}

func (svc *RecordService) GetChatMessages(learningRecordID string) ([]model.ChatMessage, error) {
	return svc.repo.GetChatMessages(learningRecordID)
}

func (svc *RecordService) GetOrCreateQuestionCount(learningRecordID, studentID, lessonID string) (*model.QuestionCount, error) {
	return svc.repo.GetOrCreateQuestionCount(learningRecordID, studentID, lessonID)
}

func (svc *RecordService) IncrementQuestionCount(id string) error {
	svc.incrementMu.Lock()
	lock, ok := svc.incrementLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		svc.incrementLocks[id] = lock
	}
	svc.incrementMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return svc.repo.IncrementQuestionCount(id)
}
