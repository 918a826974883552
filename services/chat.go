package services

import (
	goContext "context"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/model"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

// chatRecordStore is the slice of RecordService the chat buffer needs.
type chatRecordStore interface {
	SaveChatMessage(msg *model.ChatMessage) error
	GetChatMessages(learningRecordID string) ([]model.ChatMessage, error)
	GetOrCreateQuestionCount(learningRecordID, studentID, lessonID string) (*model.QuestionCount, error)
	IncrementQuestionCount(id string) error
	GetLearningRecordID(studentID, lessonID string) (string, error)
}

// replyGenerator is the slice of TutorService the chat buffer needs.
type replyGenerator interface {
	Reply(ctx goContext.Context, lesson *model.Lesson, history []model.ChatMessage, message string, image []byte, imageMIME string) (string, error)
}

// imageFetcher resolves an uploaded image ref to its bytes for the tutor.
type imageFetcher interface {
	FetchChatImage(ref string) ([]byte, string, error)
}

// chatBuffer is the session transcript for one (student, lesson) pair.
// Messages sent before the lesson's learning record exists sit in the pending
// queue until Flush hands over the record id.
type chatBuffer struct {
	transcript       []model.ChatMessage
	pending          []model.ChatMessage
	pendingQuestions int
	recordID         string
}

// ChatService holds in-memory tutoring transcripts and defers persistence
// until the owning lesson has a learning record.
type ChatService struct {
	context.DefaultService

	catalog answerCatalog
	records chatRecordStore
	tutor   replyGenerator
	media   imageFetcher

	mu      sync.Mutex
	buffers map[string]*chatBuffer

	now func() time.Time
}

const CHAT_SVC = "chat_svc"

func (svc ChatService) Id() string {
	return CHAT_SVC
}

func (svc *ChatService) Configure(ctx *context.Context) error {
	svc.buffers = make(map[string]*chatBuffer)
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *ChatService) Start() error {
	svc.catalog = svc.Service(CATALOG_SVC).(*CatalogService)
	svc.records = svc.Service(RECORD_SVC).(*RecordService)
	svc.tutor = svc.Service(TUTOR_SVC).(*TutorService)
	svc.media = svc.Service(MEDIA_SVC).(*MediaService)
	return nil
}

func bufferKey(studentID, lessonID string) string {
	return studentID + "|" + lessonID
}

// bufferFor returns the session buffer, creating it on first use. The record
// id lookup hits the database, so it runs outside the service lock.
func (svc *ChatService) bufferFor(studentID, lessonID string) *chatBuffer {
	key := bufferKey(studentID, lessonID)

	svc.mu.Lock()
	buffer, ok := svc.buffers[key]
	svc.mu.Unlock()
	if ok {
		return buffer
	}

	// The lesson may already be completed (e.g. after a page reload); pick
	// up the record id so messages persist immediately.
	var recordID string
	if id, err := svc.records.GetLearningRecordID(studentID, lessonID); err == nil {
		recordID = id
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if buffer, ok = svc.buffers[key]; ok {
		return buffer
	}
	buffer = &chatBuffer{recordID: recordID}
	svc.buffers[key] = buffer
	return buffer
}

// SendMessage appends a student message, generates the tutor reply and appends
// that too. Both are persisted immediately when the lesson already has a
// learning record, otherwise they wait in the pending queue.
func (svc *ChatService) SendMessage(ctx goContext.Context, lessonID string, req dto.SendChatMessageRequest) (*dto.ChatMessageResponse, error) {
	lesson, err := svc.catalog.ByID(lessonID)
	if err != nil {
		return nil, shared.ErrLessonNotFound(lessonID)
	}

	buffer := svc.bufferFor(req.StudentID, lessonID)

	svc.mu.Lock()
	history := make([]model.ChatMessage, len(buffer.transcript))
	copy(history, buffer.transcript)

	userMsg := model.ChatMessage{
		StudentID:      req.StudentID,
		LessonID:       lessonID,
		MessageContent: req.Content,
		IsUser:         true,
		ImageRef:       req.ImageRef,
		Timestamp:      svc.now(),
	}
	svc.depositLocked(buffer, userMsg, true)
	buffer.transcript = append(buffer.transcript, userMsg)
	svc.mu.Unlock()

	var image []byte
	var imageMIME string
	if req.ImageRef != "" && svc.media != nil {
		image, imageMIME, err = svc.media.FetchChatImage(req.ImageRef)
		if err != nil {
			log.Printf("Failed to fetch chat image %s: %v", req.ImageRef, err)
			image, imageMIME = nil, ""
		}
	}

	replyText, err := svc.tutor.Reply(ctx, lesson, history, req.Content, image, imageMIME)
	if err != nil {
		// Reply normally degrades to a canned message; a hard error here
		// still must not lose the student's message.
		log.Printf("Tutor reply failed: %v", err)
		replyText = "# 系統錯誤\n\n> 抱歉，我現在無法回應。請稍後再試。"
	}

	tutorMsg := model.ChatMessage{
		StudentID:      req.StudentID,
		LessonID:       lessonID,
		MessageContent: replyText,
		IsUser:         false,
		Timestamp:      svc.now(),
	}

	svc.mu.Lock()
	svc.depositLocked(buffer, tutorMsg, false)
	buffer.transcript = append(buffer.transcript, tutorMsg)
	svc.mu.Unlock()

	return &dto.ChatMessageResponse{
		Content:   tutorMsg.MessageContent,
		IsUser:    false,
		Timestamp: tutorMsg.Timestamp,
	}, nil
}

// depositLocked either persists a message right away (record id known) or
// queues it. Persistence failures are logged, never propagated: the in-memory
// transcript is what the learner sees.
func (svc *ChatService) depositLocked(buffer *chatBuffer, msg model.ChatMessage, isQuestion bool) {
	if buffer.recordID == "" {
		buffer.pending = append(buffer.pending, msg)
		if isQuestion {
			buffer.pendingQuestions++
		}
		return
	}

	msg.LearningRecordID = buffer.recordID
	if err := svc.records.SaveChatMessage(&msg); err != nil {
		log.Printf("Failed to persist chat message: %v", err)
		return
	}

	if isQuestion {
		svc.bumpQuestionCount(buffer.recordID, msg.StudentID, msg.LessonID, 1)
	}
}

func (svc *ChatService) bumpQuestionCount(recordID, studentID, lessonID string, n int) {
	qc, err := svc.records.GetOrCreateQuestionCount(recordID, studentID, lessonID)
	if err != nil {
		log.Printf("Failed to get question count record for %s: %v", recordID, err)
		return
	}
	for i := 0; i < n; i++ {
		if err := svc.records.IncrementQuestionCount(qc.ID); err != nil {
			log.Printf("Failed to increment question count %s: %v", qc.ID, err)
			return
		}
	}
}

// Flush persists every queued message in original order once a learning record
// id is available, then applies one question-count increment per queued
// student question. Best effort: failures are logged and the queue is cleared
// either way so a later trigger cannot replay duplicates.
func (svc *ChatService) Flush(studentID, lessonID, learningRecordID string) {
	// The flush carries the record id itself, so a missing buffer is created
	// directly without the lookup bufferFor would do.
	key := bufferKey(studentID, lessonID)
	svc.mu.Lock()
	buffer, ok := svc.buffers[key]
	if !ok {
		buffer = &chatBuffer{}
		svc.buffers[key] = buffer
	}
	buffer.recordID = learningRecordID
	pending := buffer.pending
	questions := buffer.pendingQuestions
	buffer.pending = nil
	buffer.pendingQuestions = 0
	svc.mu.Unlock()

	flushed := 0
	for i := range pending {
		pending[i].LearningRecordID = learningRecordID
		if err := svc.records.SaveChatMessage(&pending[i]); err != nil {
			log.Printf("Failed to flush chat message %d for record %s: %v", i, learningRecordID, err)
			continue
		}
		flushed++
	}

	if questions > 0 {
		svc.bumpQuestionCount(learningRecordID, studentID, lessonID, questions)
	}

	if flushed > 0 {
		recordChatMessagesFlushed(flushed)
	}
}

// Transcript returns what the learner sees: the in-memory session transcript,
// or the persisted messages when no session buffer exists yet.
func (svc *ChatService) Transcript(studentID, lessonID string) (*dto.ChatTranscriptResponse, error) {
	if _, err := svc.catalog.ByID(lessonID); err != nil {
		return nil, shared.ErrLessonNotFound(lessonID)
	}

	svc.mu.Lock()
	buffer, ok := svc.buffers[bufferKey(studentID, lessonID)]
	var messages []model.ChatMessage
	var pendingCount int
	if ok {
		messages = make([]model.ChatMessage, len(buffer.transcript))
		copy(messages, buffer.transcript)
		pendingCount = len(buffer.pending)
	}
	svc.mu.Unlock()

	if !ok {
		if recordID, err := svc.records.GetLearningRecordID(studentID, lessonID); err == nil && recordID != "" {
			stored, err := svc.records.GetChatMessages(recordID)
			if err != nil {
				return nil, err
			}
			messages = stored
		}
	}

	resp := &dto.ChatTranscriptResponse{
		LessonID: lessonID,
		Messages: make([]dto.ChatMessageResponse, 0, len(messages)),
		Pending:  pendingCount,
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, dto.ChatMessageResponse{
			Content:   msg.MessageContent,
			IsUser:    msg.IsUser,
			ImageRef:  msg.ImageRef,
			Timestamp: msg.Timestamp,
		})
	}
	return resp, nil
}
