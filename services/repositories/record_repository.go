package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/excel-master-lab/excel_quest_api/model"
)

// RecordRepository handles the remote record tables: learning records,
// leaderboard entries, chat messages and question counts.
type RecordRepository struct {
	BaseRepository
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== LEARNING RECORDS ====================

func (ds *RecordRepository) CreateLearningRecord(record *model.LearningRecord) (*model.LearningRecord, error) {
	if record.ID == "" {
		id, _ := uuid.NewV7()
		record.ID = id.String()
	}
	record.CreatedAt = time.Now()

	if err := ds.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// GetLearningRecordID looks up the record id for a (student, lesson) pair.
// Returns gorm.ErrRecordNotFound when the lesson has not been completed.
func (ds *RecordRepository) GetLearningRecordID(studentID, lessonID string) (string, error) {
	var record model.LearningRecord
	err := ds.db.
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		Order("created_at ASC").
		First(&record).Error
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// ==================== LEADERBOARD ====================

func (ds *RecordRepository) CreateLeaderboardEntry(entry *model.LeaderboardEntry) (*model.LeaderboardEntry, error) {
	if entry.ID == "" {
		id, _ := uuid.NewV7()
		entry.ID = id.String()
	}
	entry.CreatedAt = time.Now()

	if err := ds.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// BestEntries returns each student's fastest leaderboard entry, sorted by
// completion time ascending. Ties within one student resolve to the earliest
// completed row.
func (ds *RecordRepository) BestEntries() ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := ds.db.
		Order("completion_time_seconds ASC, completed_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	best := make([]model.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		if seen[entry.StudentID] {
			continue
		}
		seen[entry.StudentID] = true
		best = append(best, entry)
	}
	return best, nil
}

// ==================== CHAT ====================

func (ds *RecordRepository) CreateChatMessage(msg *model.ChatMessage) (*model.ChatMessage, error) {
	if msg.ID == "" {
		id, _ := uuid.NewV7()
		msg.ID = id.String()
	}
	msg.CreatedAt = time.Now()

	if err := ds.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (ds *RecordRepository) GetChatMessages(learningRecordID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := ds.db.
		Where("learning_record_id = ?", learningRecordID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// ==================== QUESTION COUNTS ====================

// GetOrCreateQuestionCount fetches the question count row for a learning
// record, creating it with a zero count on first use.
func (ds *RecordRepository) GetOrCreateQuestionCount(learningRecordID, studentID, lessonID string) (*model.QuestionCount, error) {
	var qc model.QuestionCount
	err := ds.db.Where("learning_record_id = ?", learningRecordID).First(&qc).Error
	if err == nil {
		return &qc, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	id, _ := uuid.NewV7()
	qc = model.QuestionCount{
		ID:               id.String(),
		LearningRecordID: learningRecordID,
		StudentID:        studentID,
		LessonID:         lessonID,
		QuestionCount:    0,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := ds.db.Create(&qc).Error; err != nil {
		return nil, err
	}
	return &qc, nil
}

// IncrementQuestionCount is a read-modify-write; callers must serialize calls
// for the same id.
func (ds *RecordRepository) IncrementQuestionCount(id string) error {
	var qc model.QuestionCount
	if err := ds.db.Where("id = ?", id).First(&qc).Error; err != nil {
		return err
	}

	qc.QuestionCount++
	qc.UpdatedAt = time.Now()
	return ds.db.Save(&qc).Error
}
