package dto

import "time"

// RankingEntry is one student's best run, already masked for public display.
type RankingEntry struct {
	Rank                  int       `json:"rank"`
	StudentID             string    `json:"student_id"`
	StudentName           string    `json:"student_name"`
	CompletionTimeSeconds float64   `json:"completion_time_seconds"`
	CompletionTimeString  string    `json:"completion_time_string"`
	StarsEarned           int       `json:"stars_earned"`
	CompletedAt           time.Time `json:"completed_at"`
}

type LeaderboardStatsData struct {
	ParticipantCount  int            `json:"participant_count"`
	FastestTimeString string         `json:"fastest_time_string"`
	AverageTimeString string         `json:"average_time_string"`
	Rankings          []RankingEntry `json:"rankings"`
}

type PlayerRankResponse struct {
	StudentID string `json:"student_id"`
	// Rank is 0 when the student has no leaderboard entries yet.
	Rank int `json:"rank"`
}
