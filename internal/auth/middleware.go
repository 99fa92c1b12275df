package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware gates back-office routes on the static X-API-Key header.
func APIKeyMiddleware(expectedKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid or missing API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CronMiddleware gates scheduler-invoked routes on a bearer secret.
func CronMiddleware(cronSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		expected := "Bearer " + cronSecret
		if authHeader == "" || subtle.ConstantTimeCompare([]byte(authHeader), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionMiddleware authenticates dashboard requests from the session
// cookie, falling back to a bearer token for API clients.
func SessionMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.TrimSpace(parts[0]) == "Bearer" {
				tokenString = strings.TrimSpace(parts[1])
			}
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := ValidateSessionToken(tokenString, jwtSecret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			}
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("gym_id", claims.GymID)
		c.Set("admin_email", claims.Email)
		c.Set("admin_role", claims.Role)

		c.Next()
	}
}

// GetGymID returns the gym bound to the authenticated session.
func GetGymID(c *gin.Context) (string, bool) {
	gymID, exists := c.Get("gym_id")
	if !exists {
		return "", false
	}

	id, ok := gymID.(string)
	if !ok {
		return "", false
	}

	return id, true
}

func GetAdminID(c *gin.Context) (string, bool) {
	adminID, exists := c.Get("admin_id")
	if !exists {
		return "", false
	}

	id, ok := adminID.(string)
	if !ok {
		return "", false
	}

	return id, true
}
