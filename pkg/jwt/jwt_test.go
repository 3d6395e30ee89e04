package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("access-secret", 15*time.Minute)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "nadia@example.com", "Nadia Perera")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "nadia@example.com", claims.Email)
	assert.Equal(t, "Nadia Perera", claims.Name)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "careercompass-mentor-booking", claims.Issuer)
}

func TestValidateAccessToken_RejectsRefreshTokenType(t *testing.T) {
	// The identity service mints refresh tokens with the same secret;
	// they must never pass as access tokens here
	claims := Claims{
		UserID:    uuid.New(),
		Email:     "nadia@example.com",
		TokenType: RefreshToken,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).
		SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = newTestService().ValidateAccessToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token type")
}

func TestValidateAccessToken_RejectsWrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewService("different-secret", 15*time.Minute)

	token, err := other.GenerateAccessToken(uuid.New(), "nadia@example.com", "Nadia")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_RejectsExpired(t *testing.T) {
	svc := NewService("access-secret", -time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), "nadia@example.com", "Nadia")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_RejectsGarbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}
