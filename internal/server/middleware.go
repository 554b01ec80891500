package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/controle-pgm/controle/internal/auth"
)

const sessionKey = "session"

func setSession(c *gin.Context, data *auth.SessionData) {
	c.Set(sessionKey, data)
}

// GetSessionData returns the authenticated session attached to the request.
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	data, ok := value.(*auth.SessionData)
	return data, ok
}

// sessionMiddleware validates the session cookie and attaches the session
// data to the request context. Requests without a valid cookie get a plain
// 401; the client turns that into the global invalidation signal.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(auth.CookieName)
		if err != nil || cookie == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}

		claims, err := s.tokens.ValidateToken(cookie)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Rejected session cookie")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			c.Abort()
			return
		}

		setSession(c, &auth.SessionData{
			UserID:             claims.UserID,
			Email:              claims.Email,
			Name:               claims.Name,
			Role:               claims.Role,
			MustChangePassword: claims.MustChangePassword,
		})

		c.Next()
	}
}

// adminOnlyMiddleware rejects non-admin sessions with 403.
func (s *Server) adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSessionData(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}
		if !session.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
