package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careercompass/mentor-booking-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// AuthMiddleware creates a middleware that requires a valid JWT token
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, errCode := bearerClaims(c, jwtService)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "A valid bearer token is required",
				"code":    errCode,
			})
			c.Abort()
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
		})
		c.Next()
	}
}

// OptionalAuthMiddleware sets the user context when a valid bearer token
// is present and lets the request through as a guest otherwise. The
// booking flow uses it: a missing identity routes the run onto the
// guest/degraded path rather than rejecting it.
func OptionalAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := bearerClaims(c, jwtService)
		if claims != nil {
			c.Set(UserContextKey, UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Name:   claims.Name,
			})
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwtService *jwt.Service) (*jwt.Claims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "MISSING_AUTH_HEADER"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "INVALID_AUTH_FORMAT"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, "INVALID_AUTH_FORMAT"
	}

	claims, err := jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, "INVALID_TOKEN"
	}

	return claims, ""
}

// GetUserContext retrieves the user context set by the auth middlewares
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}
	userCtx, ok := value.(UserContext)
	return userCtx, ok
}
