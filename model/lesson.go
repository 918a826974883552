package model

// Lesson is one unit of curriculum content. The catalog is static: loaded once
// at startup and immutable for the process lifetime.
type Lesson struct {
	ID          string   `json:"lesson_id"`
	OrderNumber int      `json:"number"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	IsFinal     bool     `json:"is_final,omitempty"`
	Question    Question `json:"question"`
}

// Question is the practice exercise attached to a lesson. Answer is the key a
// submission is checked against, case-insensitively after trimming.
type Question struct {
	Description string `json:"description"`
	Answer      string `json:"answer"`
	Hint        string `json:"hint,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}
