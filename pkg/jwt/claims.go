package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents operator token claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
