package openai

import (
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
)

// APIError is a non-2xx answer from the target, carrying the structured
// status code plus whatever the error envelope contained.
type APIError struct {
	StatusCode int
	Type       string
	Code       any
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// ErrorKind is the semantic class of a failed call.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindValidation     ErrorKind = "validation"
	KindUnclassified   ErrorKind = "unclassified"
)

var (
	authenticationMarkers = []string{"401", "unauthorized", "authentication"}
	validationMarkers     = []string{"400", "bad request", "invalid_request", "messages"}
)

// Classify maps a failed call's error to a semantic kind. A structured
// status code wins when one is present. Not every failure path carries one
// though: a broken streaming connection may surface only transport-layer
// text, so classification falls back to case-insensitive substring markers
// on the rendered message.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnclassified
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		switch apiErr.StatusCode {
		case 401, 403:
			return KindAuthentication
		case 400, 422:
			return KindValidation
		default:
			return KindUnclassified
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range authenticationMarkers {
		if strings.Contains(msg, marker) {
			return KindAuthentication
		}
	}
	for _, marker := range validationMarkers {
		if strings.Contains(msg, marker) {
			return KindValidation
		}
	}
	return KindUnclassified
}
