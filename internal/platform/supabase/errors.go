package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Postgres SQLSTATEs surfaced by PostgREST.
const (
	uniqueViolation = "23505"
	invalidTextRepr = "22P02"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4096

// APIError is a non-2xx response from PostgREST or Storage.
type APIError struct {
	StatusCode int
	Code       string // PostgREST / Postgres error code, if any
	Message    string
	Details    string
	Hint       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase http %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("supabase http %d: %s", e.StatusCode, msg)
}

// errorBody covers both PostgREST ({code,message,details,hint}) and Storage
// ({statusCode,error,message}) error payloads.
type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
	Hint    string          `json:"hint"`
	Error   string          `json:"error"`
}

func newAPIError(res *http.Response) *APIError {
	apiErr := &APIError{StatusCode: res.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	apiErr.Code = body.Code
	apiErr.Message = body.Message
	apiErr.Hint = body.Hint
	if apiErr.Message == "" {
		apiErr.Message = body.Error
	}
	if len(body.Details) > 0 && string(body.Details) != "null" {
		var s string
		if json.Unmarshal(body.Details, &s) == nil {
			apiErr.Details = s
		} else {
			apiErr.Details = string(body.Details)
		}
	}
	return apiErr
}

// IsUniqueViolation reports whether err is a PostgREST unique constraint error.
func IsUniqueViolation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == uniqueViolation
}

// IsConflict reports whether err is a 409 from either API. Storage answers 409
// when an object already exists and upsert is disabled.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsInvalidInputSyntax reports whether a filter value could not be cast to the
// column type, e.g. a non-numeric string compared with an integer id.
func IsInvalidInputSyntax(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == invalidTextRepr
}
