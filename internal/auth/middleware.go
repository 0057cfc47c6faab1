package auth

import (
	"context"
	"net/http"
	"strings"

	"quiz-app/internal/dao"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	UserIDKey    = "user_id"
	SessionIDKey = "session_id"
)

// SessionChecker resolves the user owning the session carried by ctx. An
// empty id means the session is gone.
type SessionChecker interface {
	UserID(ctx context.Context) (string, error)
}

type Middleware struct {
	tokens   *TokenManager
	sessions SessionChecker
}

func NewMiddleware(tokens *TokenManager, sessions SessionChecker) *Middleware {
	return &Middleware{tokens: tokens, sessions: sessions}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	// EventSource cannot set headers
	return c.Query("access_token")
}

// Authenticate resolves the bearer token when one is present. A token for a
// live session puts the session into the request context and the user id
// into the gin context. Requests without a usable token continue anonymously.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			logrus.WithError(err).Debug("Rejected bearer token")
			c.Next()
			return
		}

		ctx := dao.ContextWithSession(c.Request.Context(), claims.Session())
		userID, err := m.sessions.UserID(ctx)
		if err != nil {
			logrus.WithError(err).WithField("session_id", claims.SessionID).Warn("Session lookup failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session lookup failed"})
			return
		}
		if userID == "" || userID != claims.UserID {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Set(UserIDKey, userID)
		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id, or an empty string.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
