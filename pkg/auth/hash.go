// -----------------------------------------------------------------------------
// Passcode Hashing
// -----------------------------------------------------------------------------
// bcrypt hashing for staff passcodes. Passcodes are never stored in plain
// text; only the hash is kept in the staff roster snapshot.
// -----------------------------------------------------------------------------

package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor.
const HashCost = 12

// Hash returns the bcrypt hash of passcode.
func Hash(passcode string) (string, error) {
	if passcode == "" {
		return "", errors.New("passcode cannot be empty")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(passcode), HashCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// HashWithCost is Hash with an explicit cost; tests use bcrypt.MinCost.
func HashWithCost(passcode string, cost int) (string, error) {
	if passcode == "" {
		return "", errors.New("passcode cannot be empty")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(passcode), cost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// Check reports whether passcode matches hash.
func Check(passcode, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode))
	return err == nil
}

// NeedsRehash reports whether hash was made with a lower cost than HashCost.
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost < HashCost
}
