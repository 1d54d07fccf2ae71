// Package response maps service errors to HTTP responses.
package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"geotagger/internal/shared/apperr"
)

// internalMessage is returned for unclassified failures outside debug mode.
const internalMessage = "internal server error"

// ErrorBody is the JSON body of every error response. The field name matches
// what existing web clients read.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// StatusOf returns the HTTP status for an error kind.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorWriter writes error responses. In debug mode the full error chain is
// sent to the client; otherwise only the classified message.
type ErrorWriter struct {
	debug bool
}

// NewErrorWriter creates an ErrorWriter.
func NewErrorWriter(debug bool) *ErrorWriter {
	return &ErrorWriter{debug: debug}
}

// Write aborts the request with the status and body for err.
func (w *ErrorWriter) Write(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)

	detail := apperr.PublicMessage(err, internalMessage)
	if w.debug && status == http.StatusInternalServerError {
		detail = err.Error()
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "kind", kind.String(), "path", c.FullPath(), "remote_addr", c.ClientIP())
	} else {
		slog.Warn("request rejected", "error", err, "kind", kind.String(), "path", c.FullPath(), "remote_addr", c.ClientIP())
	}
	c.AbortWithStatusJSON(status, ErrorBody{Detail: detail})
}

// BadRequest aborts with 400 and the given message.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Detail: message})
}
