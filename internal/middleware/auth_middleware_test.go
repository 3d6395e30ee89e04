package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careercompass/mentor-booking-backend/pkg/jwt"
)

func setupAuthTest(t *testing.T) (*jwt.Service, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := jwt.NewService("access-secret", 15*time.Minute)
	router := gin.New()

	return jwtService, router
}

func identityHandler(c *gin.Context) {
	userCtx, ok := GetUserContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"guest": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"guest": false, "email": userCtx.Email})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtService, router := setupAuthTest(t)
	router.GET("/protected", AuthMiddleware(jwtService), identityHandler)

	token, err := jwtService.GenerateAccessToken(uuid.New(), "nadia@example.com", "Nadia Perera")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nadia@example.com")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	jwtService, router := setupAuthTest(t)
	router.GET("/protected", AuthMiddleware(jwtService), identityHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	jwtService, router := setupAuthTest(t)
	router.GET("/protected", AuthMiddleware(jwtService), identityHandler)

	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtService, router := setupAuthTest(t)
	router.GET("/protected", AuthMiddleware(jwtService), identityHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestOptionalAuthMiddleware_GuestPassesThrough(t *testing.T) {
	jwtService, router := setupAuthTest(t)
	router.POST("/bookings", OptionalAuthMiddleware(jwtService), identityHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guest":true`)
}

func TestOptionalAuthMiddleware_BadTokenStillPasses(t *testing.T) {
	jwtService, router := setupAuthTest(t)
	router.POST("/bookings", OptionalAuthMiddleware(jwtService), identityHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer expired-or-garbage")
	router.ServeHTTP(w, req)

	// An unusable token downgrades to guest instead of rejecting
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guest":true`)
}

func TestOptionalAuthMiddleware_ValidTokenSetsIdentity(t *testing.T) {
	jwtService, router := setupAuthTest(t)
	router.POST("/bookings", OptionalAuthMiddleware(jwtService), identityHandler)

	token, err := jwtService.GenerateAccessToken(uuid.New(), "nadia@example.com", "Nadia Perera")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guest":false`)
	assert.Contains(t, w.Body.String(), "nadia@example.com")
}
