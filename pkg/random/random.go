package random

import (
	"crypto/rand"
	"fmt"
)

const (
	// CollisionResistantLength is the length, in bytes, of random data that is
	// long enough to be considered collision-resistant for the purposes of
	// generating watch correlation identifiers.
	CollisionResistantLength = 32
)

// New returns a byte slice of the specified length with cryptographically
// random contents.
func New(length int) ([]byte, error) {
	// Create the buffer.
	result := make([]byte, length)

	// Read random data.
	if _, err := rand.Read(result); err != nil {
		return nil, fmt.Errorf("unable to read random data: %w", err)
	}

	// Success.
	return result, nil
}
