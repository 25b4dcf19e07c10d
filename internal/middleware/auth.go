package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
)

const (
	// TokenHeader carries a bare access token.
	TokenHeader = "x-auth-token"

	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// RequireAuth resolves the caller from a bearer token, the x-auth-token
// header or, failing both, the session cookie.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := requestToken(c); token != "" {
			claims, err := tokens.Validate(token)
			if err != nil {
				apierrors.Unauthorized(c, msgInvalidToken)
				return
			}
			c.Set(constants.ContextKeyUserID, claims.UserID)
			c.Next()
			return
		}

		if userID, ok := sessionUserID(c); ok {
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		apierrors.Unauthorized(c, msgNoToken)
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func requestToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(c.GetHeader(TokenHeader))
}

// sessionUserID reads the session only when the sessions middleware is
// installed; sessions.Default panics otherwise.
func sessionUserID(c *gin.Context) (string, bool) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return "", false
	}
	id, ok := sessions.Default(c).Get(constants.ContextKeyUserID).(string)
	return id, ok && id != ""
}
