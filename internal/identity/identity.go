// Package identity derives stable storage identifiers from logical paths.
package identity

import (
	"crypto/sha1" //nolint:gosec // identifiers, not secrets
	"encoding/hex"
	"strings"
)

// Size is the length of a derived identifier in bytes.
const Size = sha1.Size

// DeriveID hashes the concatenation of parts into a raw 20 byte SHA-1 digest.
// Equal inputs always yield equal identifiers, so callers can test for a row
// before inserting it without a sequence round-trip.
func DeriveID(parts ...string) []byte {
	sum := sha1.Sum([]byte(strings.Join(parts, ""))) //nolint:gosec
	return sum[:]
}

// PaneID is the storage id of a pane owned by username inside home.
func PaneID(username, home, pane string) []byte {
	return DeriveID(username, home, pane)
}

// DashletID is the storage id of a dashlet within an owned pane.
func DashletID(username, home, pane, dashlet string) []byte {
	return DeriveID(username, home, pane, dashlet)
}

// ModuleDashletID is the catalog id of a module-provided dashlet. pane is
// empty for dashlets a module declares outside of any dashboard.
func ModuleDashletID(module, pane, dashlet string) []byte {
	return DeriveID(module, pane, dashlet)
}

// Hex renders an identifier for logs and URLs.
func Hex(id []byte) string {
	return hex.EncodeToString(id)
}

// ParseHex is the inverse of Hex.
func ParseHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
