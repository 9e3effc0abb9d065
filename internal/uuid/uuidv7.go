// Package uuid generates the time-ordered identifiers used as primary keys.
package uuid

import (
	"strings"

	googleuuid "github.com/google/uuid"
)

// New generates a new UUIDv7 based on the current timestamp.
// UUIDv7 is time-ordered and suitable for use as database primary keys:
// the first 48 bits hold the Unix time in milliseconds, the rest is random
// apart from the version and variant bits.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to a random UUIDv4 when the entropy source fails
		return googleuuid.New().String()
	}
	return id.String()
}

// Compact returns a fresh UUIDv7 as 32 lower-case hex characters without dashes.
func Compact() string {
	return strings.ReplaceAll(New(), "-", "")
}

// RandomSuffix returns n upper-case hex characters taken from the random tail
// of a fresh UUIDv7. n is capped at 16, the length of the random tail.
func RandomSuffix(n int) string {
	if n > 16 {
		n = 16
	}
	hex := Compact()
	return strings.ToUpper(hex[len(hex)-n:])
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
