package dto

import "time"

type SendChatMessageRequest struct {
	StudentID string `json:"student_id" validate:"required,student_id"`
	Content   string `json:"content" validate:"required,max=4000"`
	ImageRef  string `json:"image_ref,omitempty" validate:"omitempty,max=512"`
}

type ChatMessageResponse struct {
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatTranscriptResponse struct {
	LessonID string                `json:"lesson_id"`
	Messages []ChatMessageResponse `json:"messages"`
	// Pending counts messages still buffered in memory waiting for the
	// lesson's learning record.
	Pending int `json:"pending"`
}

type ChatImageUploadResponse struct {
	ImageRef string `json:"image_ref"`
	Size     int64  `json:"size"`
}
