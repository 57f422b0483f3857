package device

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation constants.
const (
	maxNameLength = 100
	devEUILength  = 16 // 8 bytes, hex encoded
	nwkKeyLength  = 32 // 16 bytes, hex encoded
)

// NormalizeDevEUI trims and lower-cases a DevEUI. ChirpStack reports
// identifiers in lower case, so registry keys follow suit.
func NormalizeDevEUI(devEUI string) string {
	return strings.ToLower(strings.TrimSpace(devEUI))
}

// ValidateDevEUI checks that devEUI is exactly 16 hexadecimal characters.
func ValidateDevEUI(devEUI string) error {
	return validateHex(devEUI, devEUILength, ErrInvalidDevEUI)
}

// ValidateNwkKey checks that key is exactly 32 hexadecimal characters.
func ValidateNwkKey(key string) error {
	return validateHex(key, nwkKeyLength, ErrInvalidNwkKey)
}

// ValidateName checks that a device name is present and not too long.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

func validateHex(s string, length int, sentinel error) error {
	if len(s) != length {
		return fmt.Errorf("%w: must be %d hex characters, got %d", sentinel, length, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("%w: must be hexadecimal", sentinel)
	}
	return nil
}
