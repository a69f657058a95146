package approuters

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AmanShaikh33/HUDDLENEW/internal/auth"
	"github.com/AmanShaikh33/HUDDLENEW/internal/handler"
)

// RequireAuth verifies the session credential cookie and binds the user
// id to the request context. Same contract as the socket gateway.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := tokens.FromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication error"})
			return
		}
		c.Set(handler.UserIDKey, userID)
		c.Next()
	}
}
