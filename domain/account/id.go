package account

import (
	"encoding/hex"
	"strings"
)

// IDKind identifies which minting scheme produced an account identifier.
type IDKind int

const (
	// KindGenerated is the native encoding: a 12-byte id rendered as 24 hex chars.
	KindGenerated IDKind = iota
	// KindLiteral is the legacy encoding: an arbitrary string used verbatim.
	KindLiteral
)

// ID is an opaque account identifier. Accounts were minted under two historical
// schemes and must remain addressable under either, so ID is a sum of the two
// encodings. IDs are comparable by value: two IDs are the same account iff their
// Key() forms are equal, regardless of which scheme produced them.
type ID struct {
	kind IDKind
	key  string // hex form for Generated (lowercase), raw string for Literal
}

// ParseID resolves an externally supplied id string into an ID. Resolution
// never fails: 24 hex characters select the Generated encoding (normalized to
// lowercase), anything else is treated as a Literal identifier that will simply
// miss if no account was stored under it.
func ParseID(s string) ID {
	if isHex24(s) {
		return ID{kind: KindGenerated, key: strings.ToLower(s)}
	}
	return ID{kind: KindLiteral, key: s}
}

// GeneratedID constructs an ID from a 12-byte native identifier.
func GeneratedID(b [12]byte) ID {
	return ID{kind: KindGenerated, key: hex.EncodeToString(b[:])}
}

// LiteralID constructs an ID from a legacy string key.
func LiteralID(s string) ID {
	return ID{kind: KindLiteral, key: s}
}

// Kind reports which encoding this ID carries.
func (id ID) Kind() IDKind { return id.kind }

// Key returns the serialized form the store indexes on.
func (id ID) Key() string { return id.key }

// String returns the external representation, identical to Key.
func (id ID) String() string { return id.key }

// Bytes returns the binary form of a Generated id. ok is false for Literal ids.
func (id ID) Bytes() (b [12]byte, ok bool) {
	if id.kind != KindGenerated {
		return b, false
	}
	raw, err := hex.DecodeString(id.key)
	if err != nil || len(raw) != 12 {
		return b, false
	}
	copy(b[:], raw)
	return b, true
}

// IsZero reports whether the ID is the empty value.
func (id ID) IsZero() bool { return id.key == "" }

func isHex24(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
