package model

import "time"

// LearningRecord is one successful lesson completion. Append-only: rows are
// never updated after insert.
type LearningRecord struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	StudentID        string    `json:"student_id" gorm:"not null;index"`
	StudentName      string    `json:"student_name"`
	LessonID         string    `json:"lesson_id" gorm:"not null;index"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	TimeSpentSeconds float64   `json:"time_spent_seconds"`
	AnswerAttempts   int       `json:"answer_attempts"`
	CreatedAt        time.Time `json:"created_at"`
}

func (LearningRecord) TableName() string {
	return "learning_records"
}

// LeaderboardEntry is one finished run of the whole course. A student may have
// several rows; ranking reads use each student's minimum completion time. The
// table itself enforces no uniqueness.
type LeaderboardEntry struct {
	ID                    string    `json:"id" gorm:"primaryKey"`
	StudentID             string    `json:"student_id" gorm:"not null;index"`
	StudentName           string    `json:"student_name"`
	CompletionTimeSeconds float64   `json:"completion_time_seconds" gorm:"not null"`
	CompletionTimeString  string    `json:"completion_time_string"`
	StartedAt             time.Time `json:"started_at"`
	CompletedAt           time.Time `json:"completed_at"`
	StarsEarned           int       `json:"stars_earned"`
	CreatedAt             time.Time `json:"created_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard"
}

// ChatMessage is one persisted tutoring-chat message, anchored to the learning
// record of the lesson it was sent in.
type ChatMessage struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	LearningRecordID string    `json:"learning_record_id" gorm:"not null;index"`
	StudentID        string    `json:"student_id" gorm:"index"`
	LessonID         string    `json:"lesson_id"`
	MessageContent   string    `json:"message_content" gorm:"type:text"`
	IsUser           bool      `json:"is_user"`
	ImageRef         string    `json:"image_ref,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	CreatedAt        time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// QuestionCount tracks how many questions a student asked the tutor during one
// lesson. Incremented read-modify-write, one call per question.
type QuestionCount struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	LearningRecordID string    `json:"learning_record_id" gorm:"not null;index"`
	StudentID        string    `json:"student_id" gorm:"index"`
	LessonID         string    `json:"lesson_id"`
	QuestionCount    int       `json:"question_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (QuestionCount) TableName() string {
	return "question_counts"
}
