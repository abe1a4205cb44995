// -----------------------------------------------------------------------------
// Token Generation Utility
// -----------------------------------------------------------------------------
// Cryptographically secure random strings and record identifiers.
//
// Used for:
//   - Purchase ids (PUR-<unix millis>-<hex>)
//   - Validation and transaction ids
//   - Simulated payment references
//
// All randomness comes from crypto/rand.
// -----------------------------------------------------------------------------

package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// GenerateSecureToken generates a cryptographically secure random token.
//
// Parameters:
//   - length: The length of the random bytes to generate (default: 32)
//
// Returns:
//   - string: Base64 URL-encoded token
//   - error: Error if random number generation fails
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}

	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", fmt.Errorf("generate secure token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateSecureTokenHex generates a cryptographically secure random token
// encoded as hexadecimal (2 characters per byte).
//
// Example:
//
//	ref, err := token.GenerateSecureTokenHex(8)
//	// ref is 16 characters
func GenerateSecureTokenHex(length int) (string, error) {
	if length <= 0 {
		length = 32
	}

	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", fmt.Errorf("generate secure token: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

// GenerateID builds a sortable record id: PREFIX-<unix millis>-<8 hex chars>.
//
// Example:
//
//	id, err := token.GenerateID("PUR", time.Now())
//	// PUR-1760781600000-9f86d081
func GenerateID(prefix string, now time.Time) (string, error) {
	suffix, err := GenerateSecureTokenHex(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix), nil
}

// MustGenerateID is like GenerateID but panics on error.
//
// Use this where a failing system random source should be fatal.
func MustGenerateID(prefix string, now time.Time) string {
	id, err := GenerateID(prefix, now)
	if err != nil {
		panic(fmt.Sprintf("failed to generate id: %v", err))
	}
	return id
}
