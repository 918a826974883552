package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/excel-master-lab/excel_quest_api/dto"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

type LeaderboardHandler struct {
	recordSvc RecordServiceInterface
}

func NewLeaderboardHandler(recordSvc RecordServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{recordSvc: recordSvc}
}

// @Summary Get leaderboard
// @Description Returns masked rankings over each student's fastest run
// @Tags leaderboard
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.LeaderboardStatsData}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	stats, err := h.recordSvc.GetLeaderboardStats()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", stats)
}

// @Summary Get player rank
// @Description Returns the student's rank by best time, 0 when unranked
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} shared.Response{data=dto.PlayerRankResponse}
// @Router /api/v1/leaderboard/rank/{studentId} [get]
func (h *LeaderboardHandler) GetPlayerRank(c *fiber.Ctx) error {
	studentID := c.Params("studentId")

	rank, err := h.recordSvc.GetPlayerRank(studentID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", dto.PlayerRankResponse{
		StudentID: studentID,
		Rank:      rank,
	})
}
