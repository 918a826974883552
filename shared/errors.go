package shared

import (
	"errors"
	"net/http"
)

// AppError is the error type handlers are allowed to bubble up to the HTTP
// layer. Anything else is rendered as an internal error.
type AppError struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`

	cause error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewAppError(statusCode int, message string, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, cause: cause}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func ErrNotFound(message string) *AppError {
	if message == "" {
		message = "Not Found"
	}
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func ErrBadRequest(message string) *AppError {
	if message == "" {
		message = "Bad Request"
	}
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

// ErrLessonNotFound is raised when a submitted lesson id is not in the catalog.
func ErrLessonNotFound(lessonID string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: "lesson not found", Data: lessonID}
}

// ErrInvalidSessionStart means no session start timestamp was recorded for the
// lesson being submitted. The client must open the lesson before answering.
func ErrInvalidSessionStart(lessonID string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: "no session start recorded for lesson", Data: lessonID}
}

// ErrInsufficientStars is returned by reward redemption when the balance is
// below the redemption cost.
func ErrInsufficientStars(have, need int) *AppError {
	return &AppError{
		StatusCode: http.StatusConflict,
		Message:    "insufficient stars",
		Data:       map[string]int{"stars": have, "required": need},
	}
}

// ErrRecordPersistFailed wraps a remote persistence failure. Local progress is
// authoritative, so callers surface this as a recoverable warning rather than
// rolling anything back.
func ErrRecordPersistFailed(cause error) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Message: "failed to persist learning record", cause: cause}
}
