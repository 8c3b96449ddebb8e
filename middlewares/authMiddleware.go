package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

type authString string

const authContextKey = authString("auth")

// AuthMiddleware validates the bearer token and stashes the verified claims.
// Requests without a token pass through; protected routes enforce presence
// themselves.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		customClaim, _ := validate.Claims.(*utils.JwtCustomClaim)

		ctx := context.WithValue(c.Request.Context(), authContextKey, customClaim)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CtxClaims returns the verified claims for the request, or nil.
func CtxClaims(ctx context.Context) *utils.JwtCustomClaim {
	raw, _ := ctx.Value(authContextKey).(*utils.JwtCustomClaim)
	return raw
}
