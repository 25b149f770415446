package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status     string      `json:"status"`
	Error      string      `json:"error,omitempty"`
	Threats    []string    `json:"threats,omitempty"`
	RetryAfter int         `json:"retry_after,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ScanRejected reports a failed security scan with the itemized findings.
func ScanRejected(threats []string) Response {
	return Response{
		Status:  StatusError,
		Error:   "file rejected by security scan",
		Threats: threats,
	}
}

// RateLimited reports a 429 with the number of seconds to wait.
func RateLimited(retryAfter int) Response {
	return Response{
		Status:     StatusError,
		Error:      "rate limit exceeded",
		RetryAfter: retryAfter,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errorMessages string
	for _, err := range errs {
		errorMessages += err.Field() + ": " + err.Tag() + "; "
	}

	return Response{
		Status: StatusError,
		Error:  errorMessages,
	}
}

func RequestOK(message string, data interface{}) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}
