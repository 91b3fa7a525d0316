package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// maxCodeAttempts bounds how many candidate codes CreateTrip tries before
// giving up with domain.ErrCodeSpaceExhausted.
const maxCodeAttempts = 10

// CodeGenerator returns a candidate trip code. Production uses RandomCode;
// tests inject deterministic sequences.
type CodeGenerator func() (string, error)

// RandomCode returns 4 random bytes as 8 upper-case hex characters.
func RandomCode() (string, error) {
	b := make([]byte, domain.TripCodeLength/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("service.RandomCode: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// NormalizeCode trims and upper-cases a user-supplied trip code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
