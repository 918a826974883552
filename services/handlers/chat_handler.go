package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

type ChatHandler struct {
	chatSvc  ChatServiceInterface
	mediaSvc MediaServiceInterface
}

func NewChatHandler(chatSvc ChatServiceInterface, mediaSvc MediaServiceInterface) *ChatHandler {
	return &ChatHandler{
		chatSvc:  chatSvc,
		mediaSvc: mediaSvc,
	}
}

// @Summary Send chat message
// @Description Sends a question to the tutor and returns its reply
// @Tags chat
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param sendChatMessageRequest body dto.SendChatMessageRequest true "Message"
// @Success 200 {object} shared.Response{data=dto.ChatMessageResponse}
// @Router /api/v1/lessons/{lessonId}/chat [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.SendChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.chatSvc.SendMessage(c.UserContext(), c.Params("lessonId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get chat transcript
// @Description Returns the tutoring transcript for a student and lesson
// @Tags chat
// @Accept json
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} shared.Response{data=dto.ChatTranscriptResponse}
// @Router /api/v1/lessons/{lessonId}/chat/{studentId} [get]
func (h *ChatHandler) GetTranscript(c *fiber.Ctx) error {
	resp, err := h.chatSvc.Transcript(c.Params("studentId"), c.Params("lessonId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Upload chat image
// @Description Stores a screenshot and returns the ref to attach to a message
// @Tags chat
// @Accept multipart/form-data
// @Produce json
// @Param student_id formData string true "Student ID"
// @Param image formData file true "Image file"
// @Success 201 {object} shared.Response{data=dto.ChatImageUploadResponse}
// @Router /api/v1/chat/images [post]
func (h *ChatHandler) UploadImage(c *fiber.Ctx) error {
	studentID := c.FormValue("student_id")
	if studentID == "" {
		return shared.ErrBadRequest("student_id is required")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return shared.ErrBadRequest("image file is required")
	}

	resp, err := h.mediaSvc.UploadChatImage(studentID, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Image uploaded", resp)
}

// @Summary Delete chat image
// @Description Removes an uploaded screenshot that is no longer attached to a message
// @Tags chat
// @Produce json
// @Param ref path string true "Image ref (path under chat_images/)"
// @Success 200 {object} shared.Response
// @Router /api/v1/chat/images/{ref} [delete]
func (h *ChatHandler) DeleteImage(c *fiber.Ctx) error {
	ref := "chat_images/" + c.Params("+")
	if err := h.mediaSvc.DeleteChatImage(ref); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Image deleted", nil)
}
