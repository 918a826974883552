package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/excel-master-lab/excel_quest_api/shared"
)

type ProgressHandler struct {
	completionSvc CompletionServiceInterface
}

func NewProgressHandler(completionSvc CompletionServiceInterface) *ProgressHandler {
	return &ProgressHandler{completionSvc: completionSvc}
}

// @Summary Get progress
// @Description Returns the student's progress snapshot after daily rollover
// @Tags progress
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/{studentId} [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	resp, err := h.completionSvc.GetProgress(c.Params("studentId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Redeem reward
// @Description Spends stars on the reward and returns the survey redirect URL
// @Tags progress
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} shared.Response{data=dto.RedeemRewardResponse}
// @Router /api/v1/progress/{studentId}/redeem [post]
func (h *ProgressHandler) RedeemReward(c *fiber.Ctx) error {
	resp, err := h.completionSvc.RedeemReward(c.Params("studentId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Reward redeemed", resp)
}

// @Summary Reset progress
// @Description Wipes the student's progress and sessions back to defaults
// @Tags progress
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/progress/{studentId}/reset [post]
func (h *ProgressHandler) ResetProgress(c *fiber.Ctx) error {
	resp, err := h.completionSvc.ResetProgress(c.Params("studentId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Progress reset", resp)
}
