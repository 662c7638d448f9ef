package models

import "github.com/golang-jwt/jwt/v5"

// Token kinds carried in the "type" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims represents the JWT claims for both access and refresh tokens
type TokenClaims struct {
	Username string `json:"username"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}
