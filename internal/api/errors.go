package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork matches failures where no usable response came back
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized matches 401 responses and requests made while signed out
	ErrUnauthorized = errors.New("authentication required")
	// ErrValidation matches 4xx responses other than 401
	ErrValidation = errors.New("request rejected")
)

// Error is a failed API call. Status is 0 when the request never produced a
// usable response.
type Error struct {
	Status  int
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is classify an Error against the sentinels by status
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Status == 0
	case ErrUnauthorized:
		return e.Status == 401
	case ErrValidation:
		return e.Status >= 400 && e.Status < 500 && e.Status != 401
	}
	return false
}

func networkError(err error, format string, args ...any) *Error {
	return &Error{
		Status:  0,
		Message: "Network error: " + fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func unauthorizedLocal() *Error {
	return &Error{
		Status:  401,
		Message: "Authentication required. Please login or register.",
		Body:    []byte(`{"detail":"Authentication required"}`),
	}
}

// responseError builds the error for a non-2xx response. The message is the
// body's "detail" field when present.
func responseError(status int, body []byte) *Error {
	msg := detailMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("Request failed (%d)", status)
	}
	return &Error{Status: status, Message: msg, Body: body}
}

func detailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	// Validation errors arrive as a list of {loc, msg, type} objects
	var items []json.RawMessage
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			var entry struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(item, &entry) == nil && entry.Msg != "" {
				msgs = append(msgs, entry.Msg)
				continue
			}
			var s string
			if json.Unmarshal(item, &s) == nil && s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	}

	if string(envelope.Detail) == "null" {
		return ""
	}
	return string(envelope.Detail)
}
