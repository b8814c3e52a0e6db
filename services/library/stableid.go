package library

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeStableID builds the externally visible movie identifier from the
// anchor hit's provider and external ID. The encoding is reversible so a
// detail lookup can route back to the owning provider.
func EncodeStableID(provider, externalID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(provider + ":" + externalID))
}

// DecodeStableID reverses EncodeStableID. The decoded string is split on
// the first colon only: external IDs are allowed to contain further
// colons and round-trip unchanged.
func DecodeStableID(id string) (provider, externalID string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(id))
	if err != nil {
		return "", "", fmt.Errorf("decode movie id: %w", err)
	}
	decoded := string(raw)
	idx := strings.Index(decoded, ":")
	if idx <= 0 {
		return "", "", fmt.Errorf("malformed movie id %q", id)
	}
	return decoded[:idx], decoded[idx+1:], nil
}
