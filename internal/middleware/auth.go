package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/service"
)

const identityKey = "identity"

// Identity is the caller resolved from a verified token.
type Identity struct {
	UserID  int64
	Email   string
	Role    domain.Role
	Purpose auth.Purpose
}

// TokenVerifier checks a raw token and returns its claims.
type TokenVerifier interface {
	VerifyToken(raw string) (*auth.Claims, error)
}

// Authorizer re-reads an identity and checks its stored role.
type Authorizer interface {
	Authorize(ctx context.Context, userID int64, roles ...domain.Role) (*domain.User, error)
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// Authenticate resolves the credential carrier: the named cookie, or an
// Authorization bearer header when the cookie is absent. Any failure ends
// the request with 401.
func Authenticate(verifier TokenVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c, cookieName)
		if raw == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := verifier.VerifyToken(raw)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(identityKey, Identity{
			UserID:  claims.UserID,
			Email:   claims.UserEmail,
			Role:    claims.Role,
			Purpose: claims.Purpose,
		})

		if txn := nrgin.Transaction(c); txn != nil {
			txn.AddAttribute("user.id", claims.UserID)
		}

		c.Next()
	}
}

// RequireSession rejects reset-purpose tokens on ordinary routes.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok || id.Purpose != auth.PurposeSession {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

// RequireRole re-derives the caller's role from storage. A token whose role
// claim no longer matches storage is rejected as unauthenticated; a stored
// role outside roles is forbidden.
func RequireRole(authorizer Authorizer, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		user, err := authorizer.Authorize(c.Request.Context(), id.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				abortUnauthorized(c)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "failed",
				"message": "Internal server error",
			})
			return
		}

		if user.Role != id.Role {
			abortUnauthorized(c)
			return
		}
		if len(roles) > 0 && !user.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "failed",
				"message": "Forbidden",
			})
			return
		}

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "failed",
		"message": "Unauthorized",
	})
}
