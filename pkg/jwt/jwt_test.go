package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, issuer, subject, role string, expiresIn time.Duration, method jwtlib.SigningMethod) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(expiresIn)),
		},
	}
	token, err := jwtlib.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerify_ValidToken(t *testing.T) {
	v := NewVerifier("secret", "meeting-recorder", 30*time.Second)
	token := signToken(t, "secret", "meeting-recorder", "operator-1", "operator", time.Hour, jwtlib.SigningMethodHS256)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.Subject)
	assert.Equal(t, "operator", claims.Role)
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewVerifier("secret", "meeting-recorder", 30*time.Second)
	token := signToken(t, "other-secret", "meeting-recorder", "operator-1", "operator", time.Hour, jwtlib.SigningMethodHS256)

	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	v := NewVerifier("secret", "meeting-recorder", 30*time.Second)
	token := signToken(t, "secret", "someone-else", "operator-1", "operator", time.Hour, jwtlib.SigningMethodHS256)

	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerify_ExpiredToken(t *testing.T) {
	v := NewVerifier("secret", "meeting-recorder", time.Second)
	token := signToken(t, "secret", "meeting-recorder", "operator-1", "operator", -time.Hour, jwtlib.SigningMethodHS256)

	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerify_LeewayToleratesSmallSkew(t *testing.T) {
	v := NewVerifier("secret", "meeting-recorder", time.Minute)
	token := signToken(t, "secret", "meeting-recorder", "operator-1", "operator", -10*time.Second, jwtlib.SigningMethodHS256)

	_, err := v.Verify(token)
	assert.NoError(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	v := NewVerifier("secret", "meeting-recorder", 0)
	_, err := v.Verify("not.a.token")
	assert.Error(t, err)
}
