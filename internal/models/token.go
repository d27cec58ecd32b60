package models

import "github.com/golang-jwt/jwt/v5"

// Token types written to the JOSE "typ" header.
const (
	TokenTypeAccess  = "at+jwt"
	TokenTypeRefresh = "rt+jwt"
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token.
type RefreshClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenStatus classifies the outcome of refresh token validation.
type TokenStatus int

const (
	TokenValid TokenStatus = iota
	TokenInvalidSignature
	TokenExpired
	TokenMalformed
)

func (s TokenStatus) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenInvalidSignature:
		return "invalid_signature"
	case TokenExpired:
		return "expired"
	default:
		return "malformed"
	}
}

// TokenValidation is the result of validating a refresh token. Claims is set only when Status is TokenValid.
type TokenValidation struct {
	Status TokenStatus
	Claims *RefreshClaims
}

// Valid reports whether the token can be used.
func (v TokenValidation) Valid() bool {
	return v.Status == TokenValid && v.Claims != nil
}
