package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the caller's user id. The gateway in front of this
// service authenticates the user; the id arrives here already trusted.
const Header = "X-Sharer-User-Id"

const contextKey = "callerID"

// Required is a Gin middleware that extracts the caller's user id from the
// X-Sharer-User-Id header and stores it in the request context.
func Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + Header + " header",
			})
			return
		}

		if _, err := uuid.Parse(id); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid " + Header + " header",
			})
			return
		}

		c.Set(contextKey, id)
		c.Next()
	}
}
