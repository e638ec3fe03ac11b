package middleware

import (
	"strings"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/authz"
	"community-recycle-tracker/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// Verifier turns a raw bearer token into a session.
type Verifier interface {
	Verify(raw string) (*auth.Session, error)
}

// Authenticate requires a valid bearer token and stores the session in the
// request context.
func Authenticate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			_ = c.Error(errutil.Unauthorized("missing bearer token", nil))
			c.Abort()
			return
		}

		session, err := v.Verify(strings.TrimSpace(raw))
		if err != nil {
			_ = c.Error(errutil.Unauthorized("invalid bearer token", err))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// Authorize checks the session role against the access control policy.
func Authorize(a authz.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := auth.FromContext(c.Request.Context())
		if !ok {
			_ = c.Error(errutil.Unauthorized("missing session", nil))
			c.Abort()
			return
		}

		allowed, err := a.Allow(session.Role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			_ = c.Error(errutil.Internal("failed to evaluate access policy", err))
			c.Abort()
			return
		}

		if !allowed {
			_ = c.Error(errutil.Forbidden("role not allowed for this operation", nil))
			c.Abort()
			return
		}

		c.Next()
	}
}
