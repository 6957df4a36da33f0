package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhilyaKokare/visitor-pass-service/pkg/response"
)

// Header carrying the shared credential for service-to-service calls
const InternalAPIKeyHeader = "X-Internal-API-Key"

// InternalAPIAuth creates a middleware that authenticates internal
// service-to-service requests using a shared key. It is a separate trust
// boundary from the end-user JWT middleware.
func InternalAPIAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(InternalAPIKeyHeader)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Internal API key is required"))
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("Invalid internal API key"))
			return
		}

		c.Next()
	}
}
