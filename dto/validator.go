package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("student_id", validateStudentID)
}

func GetValidator() *validator.Validate {
	return validate
}

// Student ids are client-generated; keep them to a safe charset so they can be
// used in storage keys and object names verbatim.
var studentIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

func validateStudentID(fl validator.FieldLevel) bool {
	return studentIDRegex.MatchString(fl.Field().String())
}

func (r StartLessonRequest) Validate() error     { return validate.Struct(r) }
func (r SubmitAnswerRequest) Validate() error    { return validate.Struct(r) }
func (r SendChatMessageRequest) Validate() error { return validate.Struct(r) }

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param() + " characters"
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param() + " characters"
			case "student_id":
				message = fieldError.Field() + " must be 1-64 characters of letters, numbers, '-' or '_'"
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

func CreateValidationErrorResponse(err error) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    400,
		Message: "Validation failed",
		Errors:  FormatValidationErrors(err),
	}
}
