package delivery

import (
	"net/http"
	"strings"

	authdomain "notify-backend/internal/auth/domain"
	"notify-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const (
	ContextVerdict = "verdict"
	ContextUserID  = "userID"
)

// Identify classifies the caller exactly once and stores the verdict in
// the request context. It never aborts; route groups decide what each
// verdict may do.
func Identify(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := ""
		authHeader := c.GetHeader("Authorization")
		if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
			bearer = parts[1]
		}

		verdict, user, err := authUsecase.Authorize(bearer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization check failed"})
			c.Abort()
			return
		}

		c.Set(ContextVerdict, verdict)
		if user != nil {
			c.Set(ContextUserID, user.ID)
		}
		c.Next()
	}
}

// Verdict reads the verdict stored by Identify.
func Verdict(c *gin.Context) authdomain.Verdict {
	if v, ok := c.Get(ContextVerdict); ok {
		if verdict, ok := v.(authdomain.Verdict); ok {
			return verdict
		}
	}
	return authdomain.VerdictAnonymous
}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Verdict(c) == authdomain.VerdictAnonymous {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSender restricts a route to callers allowed to dispatch
// notifications: staff users and the service identity.
func RequireSender() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Verdict(c).CanSend() {
			c.JSON(http.StatusForbidden, gin.H{"error": "staff or service role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
