// Package jwtmw issues access tokens and authenticates requests that carry them.
package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"geotagger/internal/platform/http/response"
	"geotagger/internal/shared/apperr"
)

// ContextPrincipal is the gin context key under which the authenticated
// Principal is stored.
const ContextPrincipal = "principal"

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID    string
	SessionID string
	Email     string
}

// Authenticator resolves a bearer token to a Principal. Implementations must
// check that the referenced session is still valid, not only the signature.
// Rejected tokens are reported as apperr.KindUnauthorized; any other error is
// treated as a server failure.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (Principal, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (Principal, error) {
	return f(ctx, token)
}

// AuthRequired returns a middleware that rejects requests without a valid bearer token.
func AuthRequired(a Authenticator, errWriter *response.ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody{Detail: "missing bearer token"})
			return
		}
		authenticate(c, a, errWriter, tokenStr)
	}
}

// AuthOptional returns a middleware that authenticates the request when an
// Authorization header is present and passes it through unchanged otherwise.
// A header that is present but does not verify is rejected.
func AuthOptional(a Authenticator, errWriter *response.ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody{Detail: "missing bearer token"})
			return
		}
		authenticate(c, a, errWriter, tokenStr)
	}
}

// PrincipalFrom returns the Principal stored by AuthRequired or AuthOptional.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return tokenStr, tokenStr != ""
}

func authenticate(c *gin.Context, a Authenticator, errWriter *response.ErrorWriter, tokenStr string) {
	principal, err := a.Authenticate(c.Request.Context(), tokenStr)
	if err != nil {
		if !apperr.Is(err, apperr.KindUnauthorized) {
			// セッションストア障害などは401ではなく5xxで返す
			errWriter.Write(c, err)
			return
		}
		slog.Warn("token rejected", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody{Detail: "invalid token"})
		return
	}
	c.Set(ContextPrincipal, principal)
	c.Next()
}
