package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

type Struct any

// Response is the envelope every endpoint answers with.
// HTTP status always mirrors Code.
type Response struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Error     string            `json:"error,omitempty"`
	Code      int               `json:"code,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Data      any               `json:"data,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Success renders data with a 200
func Success(w http.ResponseWriter, data any, message string) {
	SuccessWithStatus(w, data, message, http.StatusOK)
}

func SuccessWithStatus(w http.ResponseWriter, data any, message string, code int) {
	jsonWithStatus(w, Response{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, code)
}

// Error renders a failure envelope, the message is what the client sees
func Error(w http.ResponseWriter, message string, code int) {
	jsonWithStatus(w, Response{
		Success:   false,
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}, code)
}

// ErrorWithDetails renders a failure envelope with extra key-value context
func ErrorWithDetails(w http.ResponseWriter, message string, code int, details map[string]string) {
	jsonWithStatus(w, Response{
		Success:   false,
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}, code)
}

// DecodeError renders a 400 for malformed request bodies
func DecodeError(w http.ResponseWriter, err error) {
	message := "Failed to parse JSON request body"

	// Try to provide more specific error message based on error type
	switch err := err.(type) {
	case *json.UnmarshalTypeError:
		message = fmt.Sprintf("Invalid data type for field '%s'", err.Field)
	}

	Error(w, message, http.StatusBadRequest)
}

// ValidationErrors renders a 422 with field-level messages
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	details := make(map[string]string, len(errs))

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "email":
			message = "Invalid email format"
		case "oneof":
			message = fmt.Sprintf("Must be one of: %s", fieldError.Param())
		case "box_id":
			message = "Invalid box id format"
		default:
			message = "Invalid value"
		}

		details[fieldError.Field()] = message
	}

	ErrorWithDetails(w, "Request validation failed", http.StatusUnprocessableEntity, details)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
