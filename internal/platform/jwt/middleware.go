// Package jwtmw provides the bearer token service and the gin middleware that
// gates protected routes.
package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID is the gin context key holding the verified caller id.
	ContextUserID = "userID"
	// ContextEmail is the gin context key holding the verified caller email.
	ContextEmail = "email"
)

// TokenVerifier resolves a raw bearer token into a verified identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// AuthRequired returns a Gin middleware that resolves the caller from the
// Authorization header and aborts with an auth error when it cannot.
// Failures are attached with c.Error so the error boundary renders them.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Preflight requests never carry credentials
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		// 1. Get Authorization header
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, ErrMissingCredential)
			return
		}

		// 2. Expect exactly "Bearer <token>"
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abort(c, ErrMalformedCredential)
			return
		}

		// 3. Verify signature and expiry
		identity, err := verifier.Verify(parts[1])
		if err != nil {
			abort(c, err)
			return
		}

		// 4. Attach the caller for downstream handlers
		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextEmail, identity.Email)
		c.Next()
	}
}

// UserID returns the verified caller id set by AuthRequired.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
