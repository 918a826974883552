package handlers

import (
	"context"
	"mime/multipart"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/model"
)

type CatalogServiceInterface interface {
	List() []model.Lesson
	ByID(lessonID string) (*model.Lesson, error)
}

type CompletionServiceInterface interface {
	StartLesson(studentID, lessonID string) (*dto.StartLessonResponse, error)
	SubmitAnswer(lessonID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	GetProgress(studentID string) (*dto.ProgressResponse, error)
	RedeemReward(studentID string) (*dto.RedeemRewardResponse, error)
	ResetProgress(studentID string) (*dto.ProgressResponse, error)
}

type RecordServiceInterface interface {
	GetLeaderboardStats() (*dto.LeaderboardStatsData, error)
	GetPlayerRank(studentID string) (int, error)
}

type ChatServiceInterface interface {
	SendMessage(ctx context.Context, lessonID string, req dto.SendChatMessageRequest) (*dto.ChatMessageResponse, error)
	Transcript(studentID, lessonID string) (*dto.ChatTranscriptResponse, error)
}

type MediaServiceInterface interface {
	UploadChatImage(studentID string, file *multipart.FileHeader) (*dto.ChatImageUploadResponse, error)
	DeleteChatImage(ref string) error
}
