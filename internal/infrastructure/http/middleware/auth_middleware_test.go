package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-recorder/pkg/jwt"
)

func operatorToken(t *testing.T, secret string) string {
	t.Helper()
	now := time.Now()
	claims := jwt.Claims{
		Role: "operator",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "op-1",
			Issuer:    "meeting-recorder",
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func runProtected(authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	verifier := jwt.NewVerifier("secret", "meeting-recorder", 30*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/x/bot", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := EchoAuth(verifier)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c
}

func TestEchoAuth_ValidToken(t *testing.T) {
	token := operatorToken(t, "secret")
	rec, c := runProtected("Bearer " + token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op-1", c.Get("operator"))
	assert.Equal(t, "operator", c.Get("role"))
}

func TestEchoAuth_MissingHeader(t *testing.T) {
	rec, _ := runProtected("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEchoAuth_MalformedHeader(t *testing.T) {
	rec, _ := runProtected("Token abcdef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEchoAuth_BadToken(t *testing.T) {
	token := operatorToken(t, "wrong-secret")
	rec, _ := runProtected("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
