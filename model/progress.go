package model

import "time"

// Progress is the per-student gamification state. It is stored as a single
// JSON blob under a fixed key per student and mutated read-modify-write by
// one caller at a time; concurrent writers from separate clients are
// last-writer-wins.
type Progress struct {
	StudentID        string    `json:"student_id"`
	CompletedLessons []string  `json:"completed_lessons"`
	Stars            int       `json:"stars"`
	XP               int       `json:"exp"`
	Level            int       `json:"level"`
	Streak           int       `json:"streak"`
	DailyProgress    int       `json:"daily_progress"`
	LastActiveDay    string    `json:"last_active_day,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultProgress is the state of a student who has never played.
func DefaultProgress(studentID string) *Progress {
	return &Progress{
		StudentID:        studentID,
		CompletedLessons: []string{},
		Stars:            0,
		XP:               0,
		Level:            1,
		Streak:           1,
		DailyProgress:    0,
	}
}

// HasCompleted reports membership in the completed-lesson set.
func (p *Progress) HasCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}
