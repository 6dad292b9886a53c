package service

import (
	"crypto/rand"
	"fmt"

	"github.com/akamensky/base58"
)

// passwordBytes gives ~96 bits of entropy, encoding to a 16-17 character
// passcode
const passwordBytes = 12

// generatePassword creates the meeting access password. It is called
// exactly once per meeting, at provisioning; the password is never
// rotated afterwards.
func generatePassword() (string, error) {
	buf := make([]byte, passwordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate meeting password: %w", err)
	}
	return base58.Encode(buf), nil
}
