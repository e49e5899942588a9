// Package csprng is the OS CSPRNG collaborator used to generate fresh key
// material. It exists as its own package so both hmacsha512 and poly1305
// draw randomness through one seam.
package csprng

import (
	"crypto/rand"
	"fmt"
)

// Fill fills b with cryptographically secure random bytes, or returns a
// wrapped error if the OS source could not be read.
func Fill(b []byte) error {
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("csprng: reading random bytes: %w", err)
	}
	return nil
}
