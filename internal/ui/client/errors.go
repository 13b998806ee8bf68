package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/constella-app/constella-web/internal/ui/types"
)

// maxRawMessageLength caps how much of a non-JSON error body is shown to the user
const maxRawMessageLength = 300

// ClientError represents an error encountered when communicating with the Constella API
// StatusCode 0 = network/connection or internal error, >0 = HTTP response received
type ClientError struct {
	StatusCode  int    `json:"status_code"`
	UserMessage string `json:"user_message"`
	LogMessage  string `json:"log_message"`
}

func (e *ClientError) Error() string {
	return e.LogMessage
}

// UserError returns the user-friendly message
func (e *ClientError) UserError() string {
	return e.UserMessage
}

// NewClientConnectionError creates a ClientError for network/connection issues
func NewClientConnectionError(err error) *ClientError {
	return &ClientError{
		StatusCode:  0,
		UserMessage: "Unable to connect. Please check your internet connection and try again.",
		LogMessage:  fmt.Sprintf("network error: %v", err),
	}
}

// NewClientInternalError creates a ClientError for internal errors, supply the error and an explanation of what was being done when the error occurred
func NewClientInternalError(err error, while string) *ClientError {
	return &ClientError{
		StatusCode:  0,
		UserMessage: "An error occurred. Please try again later.",
		LogMessage:  fmt.Sprintf("internal error: %v while %v", err, while),
	}
}

// NewClientApiError creates a ClientError from a non-2xx response sent by the API
func NewClientApiError(statusCode int, body []byte) *ClientError {
	envelope := parseErrorEnvelope(body)
	userMsg := envelope.userMessage(statusCode)

	return &ClientError{
		StatusCode:  statusCode,
		UserMessage: userMsg,
		LogMessage:  fmt.Sprintf("constella api status %d - %s", statusCode, userMsg),
	}
}

// errorEnvelope is the union of error payloads the API sends:
//
//	{"detail": [{"loc": [...], "msg": "..."}]}   request validation errors
//	{"detail": "..."}                            handled errors
//	{"message": "..."}                           generic errors
//
// RawText holds a body that was not JSON at all.
type errorEnvelope struct {
	FieldErrors []types.FieldError
	Detail      string
	Message     string
	RawText     string
}

func parseErrorEnvelope(body []byte) errorEnvelope {
	var envelope errorEnvelope

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return envelope
	}

	if !json.Valid(trimmed) {
		envelope.RawText = truncate(string(trimmed), maxRawMessageLength)
		return envelope
	}

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		// valid JSON that is not an object (e.g. a bare string or list)
		var text string
		if json.Unmarshal(trimmed, &text) == nil {
			envelope.RawText = truncate(strings.TrimSpace(text), maxRawMessageLength)
		}
		return envelope
	}

	if len(payload.Detail) > 0 {
		var fieldErrors []types.FieldError
		var detail string
		switch {
		case json.Unmarshal(payload.Detail, &fieldErrors) == nil:
			envelope.FieldErrors = fieldErrors
		case json.Unmarshal(payload.Detail, &detail) == nil:
			envelope.Detail = strings.TrimSpace(detail)
		}
	}

	if len(payload.Message) > 0 {
		var message string
		if json.Unmarshal(payload.Message, &message) == nil {
			envelope.Message = strings.TrimSpace(message)
		}
	}

	return envelope
}

// userMessage picks the display message, most specific first
func (e errorEnvelope) userMessage(statusCode int) string {
	switch {
	case len(e.FieldErrors) > 0:
		return joinFieldErrors(e.FieldErrors)
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	case e.RawText != "":
		return e.RawText
	default:
		return fmt.Sprintf("Request failed with status %d", statusCode)
	}
}

// joinFieldErrors renders each error as "<last loc element>: <msg>"
func joinFieldErrors(fieldErrors []types.FieldError) string {
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		if len(fe.Loc) == 0 {
			parts = append(parts, fe.Msg)
			continue
		}
		parts = append(parts, fmt.Sprintf("%v: %s", fe.Loc[len(fe.Loc)-1], fe.Msg))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
