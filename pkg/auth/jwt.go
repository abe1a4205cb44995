// -----------------------------------------------------------------------------
// JWT (JSON Web Token) Package
// -----------------------------------------------------------------------------
// Staff session tokens. A token is issued at login and sent by the gate
// scanner app on every request as `Authorization: Bearer <token>`.
//
// Token structure:
// Header.Payload.Signature
// eyJhbGc...eyJ1c2V...SflKxw
//
// Security notes:
// 1. Keep the secret in the environment, never in code
// 2. Serve over HTTPS only
// 3. Keep expiry short; a gate shift fits in 12 hours
// -----------------------------------------------------------------------------

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload of a staff token.
//
// Custom claims:
//   - StaffID: roster id, recorded as staff_id on validations
//   - Email:   staff email
//   - Role:    admin, coordinator or gate
//   - Gate:    assigned gate for gate crew (optional)
type JWTClaims struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Gate    string `json:"gate,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret         string        // HMAC signing secret
	Issuer         string        // Token issuer (app name)
	ExpirationTime time.Duration // Access token lifetime
}

// DefaultJWTConfig returns development defaults.
//
// Production must override the secret from the environment!
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:         "doujindesk-dev-secret-change-me",
		Issuer:         "doujindesk",
		ExpirationTime: 12 * time.Hour,
	}
}

// GenerateToken issues a signed token for a staff member.
//
// Example:
//
//	token, err := auth.GenerateToken("STF-1760781600000-9f86d081", "aoi@doujindesk.id", "gate", "gate-a", cfg)
//	// token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
func GenerateToken(staffID, email, role, gate string, config *JWTConfig) (string, error) {
	if config == nil {
		config = DefaultJWTConfig()
	}

	now := time.Now()

	claims := JWTClaims{
		StaffID: staffID,
		Email:   email,
		Role:    role,
		Gate:    gate,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.Issuer,
			Subject:   staffID,
			ExpiresAt: jwt.NewNumericDate(now.Add(config.ExpirationTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	// HS256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken parses and verifies a token.
//
// Failure cases:
// - Malformed token
// - Bad signature (tampered token)
// - Expired token
// - Token not yet valid
func ParseToken(tokenString string, config *JWTConfig) (*JWTClaims, error) {
	if config == nil {
		config = DefaultJWTConfig()
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Algorithm confusion guard
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.Secret), nil
	}, jwt.WithIssuer(config.Issuer))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.StaffID == "" {
		return nil, errors.New("token has no staff id")
	}

	return claims, nil
}

// ExtractTokenFromHeader returns the token from a Bearer Authorization
// header, or "" when the header is missing or malformed.
//
// Example:
//
//	token := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
//	if token == "" {
//	    return errors.New("missing authorization header")
//	}
func ExtractTokenFromHeader(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
