// Package ids bridges the two primary-key schemes involved in the
// migration: the source store's 24-hex string identifiers and the target
// store's 128-bit identifiers.
package ids

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidIdentifier reports a malformed source identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// SourceIDLen is the length of a source identifier in hex characters.
const SourceIDLen = 24

// NewSourceID mints a source-style identifier: 4 bytes of unix seconds
// followed by 8 random bytes, hex encoded. The timestamp prefix makes ids
// sort lexicographically in creation order, which the backfill engine
// relies on.
func NewSourceID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(b[4:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// a time-derived suffix rather than panic.
		binary.BigEndian.PutUint64(b[4:], uint64(time.Now().UnixNano()))
	}
	return hex.EncodeToString(b[:])
}

// Valid reports whether s is a well-formed source identifier: exactly 24
// lowercase hex characters.
func Valid(s string) bool {
	if len(s) != SourceIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ToTargetID maps a source identifier onto the 128-bit target key space by
// right-padding with '0' to 32 hex characters. The mapping is deterministic
// and reversible for any valid source id: the padding occupies only the 8
// trailing characters that ToSourceID discards.
func ToTargetID(sourceID string) (uuid.UUID, error) {
	if !Valid(sourceID) {
		return uuid.Nil, ErrInvalidIdentifier
	}
	padded := sourceID + strings.Repeat("0", 32-SourceIDLen)
	return uuid.Parse(padded)
}

// ToSourceID renders a target identifier in the external 24-hex form:
// canonical hex with separators stripped, truncated to 24 characters.
//
// For target ids minted at write time (comment ids, target-only entities)
// the result is a display string only; there is no stored source row to
// round-trip to. That asymmetry is intentional.
func ToSourceID(targetID uuid.UUID) string {
	return strings.ReplaceAll(targetID.String(), "-", "")[:SourceIDLen]
}

// NewTargetID mints a fresh random target identifier for entities created
// after the source store stopped being authoritative.
func NewTargetID() uuid.UUID {
	return uuid.New()
}
