package identity

import "github.com/gin-gonic/gin"

// CallerID returns the requesting user's id or empty string.
func CallerID(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
