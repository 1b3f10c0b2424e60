package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chronicle_backend/internal/platform/identity"
)

const (
	// ContextUserID holds the authenticated user's id.
	ContextUserID = "userID"
	// ContextUserEmail holds the authenticated user's email.
	ContextUserEmail = "userEmail"
)

// TokenResolver maps a bearer token to the identity that owns it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*identity.Identity, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively; an empty string means no token was sent.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired returns a gin middleware that resolves the bearer token with the
// identity provider on every request and stores the caller's id and email in
// the context. missingMessage is the 401 text used when no token is sent.
func AuthRequired(resolver TokenResolver, missingMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": missingMessage})
			return
		}

		ident, err := resolver.ResolveToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			slog.Error("token resolution failed", "error", err, "request_id", RequestIDFromContext(c))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify access token"})
			return
		}

		c.Set(ContextUserID, ident.ID)
		c.Set(ContextUserEmail, ident.Email)
		c.Next()
	}
}
