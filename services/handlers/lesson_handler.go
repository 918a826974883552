package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/model"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

type LessonHandler struct {
	catalogSvc    CatalogServiceInterface
	completionSvc CompletionServiceInterface
}

func NewLessonHandler(catalogSvc CatalogServiceInterface, completionSvc CompletionServiceInterface) *LessonHandler {
	return &LessonHandler{
		catalogSvc:    catalogSvc,
		completionSvc: completionSvc,
	}
}

// toLessonResponse strips the answer key; clients only ever see the question.
func toLessonResponse(lesson *model.Lesson, includeContent bool) dto.LessonResponse {
	resp := dto.LessonResponse{
		ID:                  lesson.ID,
		Number:              lesson.OrderNumber,
		Title:               lesson.Title,
		Description:         lesson.Description,
		Duration:            lesson.Duration,
		IsFinal:             lesson.IsFinal,
		QuestionDescription: lesson.Question.Description,
		Hint:                lesson.Question.Hint,
	}
	if includeContent {
		resp.Content = lesson.Content
	}
	return resp
}

// @Summary List lessons
// @Description Returns the lesson catalog in play order without answer keys
// @Tags lessons
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.LessonCollectionResponse}
// @Router /api/v1/lessons [get]
func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	lessons := h.catalogSvc.List()

	resp := dto.LessonCollectionResponse{
		Lessons: make([]dto.LessonResponse, 0, len(lessons)),
		Total:   len(lessons),
	}
	for i := range lessons {
		resp.Lessons = append(resp.Lessons, toLessonResponse(&lessons[i], false))
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get lesson
// @Description Returns one lesson with its teaching content and question
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.LessonResponse}
// @Router /api/v1/lessons/{lessonId} [get]
func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")
	lesson, err := h.catalogSvc.ByID(lessonID)
	if err != nil {
		return shared.ErrLessonNotFound(lessonID)
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", toLessonResponse(lesson, true))
}

// @Summary Start lesson
// @Description Records the session start timestamp answer timing is measured from
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param startLessonRequest body dto.StartLessonRequest true "Student identity"
// @Success 200 {object} shared.Response{data=dto.StartLessonResponse}
// @Router /api/v1/lessons/{lessonId}/start [post]
func (h *LessonHandler) StartLesson(c *fiber.Ctx) error {
	var req dto.StartLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.completionSvc.StartLesson(req.StudentID, c.Params("lessonId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Lesson started", resp)
}

// @Summary Submit answer
// @Description Checks the submitted answer and applies completion rewards
// @Tags lessons
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param submitAnswerRequest body dto.SubmitAnswerRequest true "Submitted answer"
// @Success 200 {object} shared.Response{data=dto.SubmitAnswerResponse}
// @Router /api/v1/lessons/{lessonId}/submit [post]
func (h *LessonHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.completionSvc.SubmitAnswer(c.Params("lessonId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
