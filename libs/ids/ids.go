// Package ids produces 128-bit identifiers in their storage (raw bytes) and
// display (32 lowercase hex characters, no dashes) forms.
package ids

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RandomBytes returns a new random (v4) identifier in storage form.
func RandomBytes() []byte {
	id := uuid.New()
	return id[:]
}

// RandomHex returns a new random identifier in hex form.
func RandomHex() string {
	return BytesToHex(RandomBytes())
}

// BytesToHex converts a storage identifier to hex. Input of the wrong length is
// encoded as-is.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToBytes parses a hex identifier. Dashed UUID notation is accepted too.
func HexToBytes(s string) ([]byte, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	return id[:], nil
}

// MustHexToBytes is HexToBytes for compile-time constants.
func MustHexToBytes(s string) []byte {
	b, err := HexToBytes(s)
	if err != nil {
		panic(err)
	}
	return b
}
