package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/templui/imagehost/internal/validation"
)

var (
	// ErrUnreachable means no response was received from the server
	ErrUnreachable = errors.New("server unreachable")
)

// APIError is a non-2xx response from the server
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string // server-supplied "detail", verbatim
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

// errorBody is the server's error envelope: {"detail": "..."} or, for request
// validation failures, {"detail": [{"msg": "...", ...}]}
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

// Message turns any client error into the text shown to a user
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("request failed with status %d", apiErr.StatusCode)
	case errors.Is(err, ErrUnreachable):
		return "cannot reach the image server, check that it is running"
	case validation.IsValidation(err):
		return strings.TrimPrefix(err.Error(), validation.ErrInvalid.Error()+": ")
	default:
		return err.Error()
	}
}

// StatusCode returns the HTTP status of a server-signaled failure, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
