package dto

import "time"

type ProgressResponse struct {
	StudentID        string    `json:"student_id"`
	CompletedLessons []string  `json:"completed_lessons"`
	Stars            int       `json:"stars"`
	XP               int       `json:"exp"`
	Level            int       `json:"level"`
	XPToNextLevel    int       `json:"xp_to_next_level"`
	Streak           int       `json:"streak"`
	DailyProgress    int       `json:"daily_progress"`
	DailyGoal        int       `json:"daily_goal"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type RedeemRewardResponse struct {
	Progress    *ProgressResponse `json:"progress"`
	RedirectURL string            `json:"redirect_url"`
}
