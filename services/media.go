package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

// MediaService stores screenshots the learner attaches to tutor questions.
// An upload returns an opaque ref that chat messages carry instead of bytes.
type MediaService struct {
	context.DefaultService
	minioSvc *MinIOService
}

const MEDIA_SVC = "chat_media_svc"

const maxChatImageSize = 5 * 1024 * 1024

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Start() error {
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

func (svc *MediaService) UploadChatImage(studentID string, file *multipart.FileHeader) (*dto.ChatImageUploadResponse, error) {
	if !svc.isValidImageFile(file.Filename) {
		return nil, shared.ErrBadRequest("Invalid image file format. Supported: JPG, PNG, WEBP")
	}

	if file.Size > maxChatImageSize {
		return nil, shared.ErrBadRequest("Image file too large. Maximum size: 5MB")
	}

	id, _ := uuid.NewV7()
	objectName := fmt.Sprintf("chat_images/%s/%s_%d%s", studentID, id.String(), time.Now().Unix(), filepath.Ext(file.Filename))

	src, err := file.Open()
	if err != nil {
		return nil, shared.NewAppError(500, "Failed to open uploaded file", err)
	}
	defer src.Close()

	uploadInfo, err := svc.minioSvc.UploadFile(objectName, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, shared.NewAppError(500, "Failed to upload file to storage", err)
	}

	log.Printf("Uploaded chat image for %s: %s", studentID, uploadInfo.Key)

	return &dto.ChatImageUploadResponse{
		ImageRef: objectName,
		Size:     file.Size,
	}, nil
}

// FetchChatImage resolves a ref back to bytes for the tutor's inline image
// input. Refs outside the chat prefix are rejected.
func (svc *MediaService) FetchChatImage(ref string) ([]byte, string, error) {
	if !strings.HasPrefix(ref, "chat_images/") {
		return nil, "", shared.ErrBadRequest("Invalid image ref")
	}
	return svc.minioSvc.GetFile(ref)
}

func (svc *MediaService) DeleteChatImage(ref string) error {
	if !strings.HasPrefix(ref, "chat_images/") {
		return shared.ErrBadRequest("Invalid image ref")
	}
	return svc.minioSvc.DeleteFile(ref)
}

func (svc *MediaService) isValidImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	validExts := []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

	for _, validExt := range validExts {
		if ext == validExt {
			return true
		}
	}
	return false
}
