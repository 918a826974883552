package dto

import "time"

// Lesson DTOs
type LessonResponse struct {
	ID          string `json:"lesson_id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
	Duration    string `json:"duration,omitempty"`
	IsFinal     bool   `json:"is_final"`

	// Note: the answer key is never included in the response
	QuestionDescription string `json:"question_description"`
	Hint                string `json:"hint,omitempty"`
}

type LessonCollectionResponse struct {
	Lessons []LessonResponse `json:"lessons"`
	Total   int              `json:"total"`
}

type StartLessonRequest struct {
	StudentID string `json:"student_id" validate:"required,student_id"`
}

type StartLessonResponse struct {
	LessonID  string    `json:"lesson_id"`
	StartedAt time.Time `json:"started_at"`
	// GameStartedAt is the timestamp total completion time is measured from.
	// It is set when lesson 1 is first opened.
	GameStartedAt *time.Time `json:"game_started_at,omitempty"`
}

type SubmitAnswerRequest struct {
	StudentID   string `json:"student_id" validate:"required,student_id"`
	StudentName string `json:"student_name" validate:"required,min=1,max=50"`
	Answer      string `json:"answer" validate:"required"`
}

type SubmitAnswerResponse struct {
	Correct  bool `json:"correct"`
	Attempts int  `json:"attempts"`

	// Set only on a correct submission.
	Explanation      string             `json:"explanation,omitempty"`
	AlreadyCompleted bool               `json:"already_completed,omitempty"`
	ElapsedSeconds   float64            `json:"elapsed_seconds,omitempty"`
	Progress         *ProgressResponse  `json:"progress,omitempty"`
	RecordWarning    string             `json:"record_warning,omitempty"`
	GameResult       *GameResultSummary `json:"game_result,omitempty"`
}

// GameResultSummary is attached when the final lesson is completed.
type GameResultSummary struct {
	TotalTimeSeconds float64               `json:"total_time_seconds"`
	TotalTimeString  string                `json:"total_time_string"`
	Rank             int                   `json:"rank"`
	Stats            *LeaderboardStatsData `json:"stats,omitempty"`
}
