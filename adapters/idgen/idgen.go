// Package idgen provides ID generation implementations.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/artpar/saasmon/ports"
	"github.com/google/uuid"
)

// ObjectID mints 12-byte identifiers rendered as 24 hex characters, the
// store's native encoding: 4-byte unix timestamp, 5 random process bytes, and
// a 3-byte rolling counter. IDs sort roughly by creation time and are unique
// within a process.
type ObjectID struct {
	process [5]byte
	counter uint32
}

// NewObjectID creates a generator with fresh process entropy and a random
// counter start.
func NewObjectID() *ObjectID {
	g := &ObjectID{}
	if _, err := rand.Read(g.process[:]); err != nil {
		panic("idgen: crypto/rand unavailable: " + err.Error())
	}
	var seed [4]byte
	rand.Read(seed[:])
	g.counter = binary.BigEndian.Uint32(seed[:])
	return g
}

// New generates the next identifier.
func (g *ObjectID) New() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(time.Now().Unix()))
	copy(b[4:9], g.process[:])

	n := atomic.AddUint32(&g.counter, 1)
	b[9] = byte(n >> 16)
	b[10] = byte(n >> 8)
	b[11] = byte(n)

	return hex.EncodeToString(b[:])
}

// UUID generates UUIDs (request correlation, not account keys).
type UUID struct{}

// New generates a new UUID v4.
func (UUID) New() string {
	return uuid.New().String()
}

// Sequential generates sequential IDs (for testing).
type Sequential struct {
	prefix  string
	counter uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next sequential ID.
func (s *Sequential) New() string {
	n := atomic.AddUint64(&s.counter, 1)
	return s.prefix + uitoa(n)
}

// Reset resets the counter (for testing).
func (s *Sequential) Reset() {
	atomic.StoreUint64(&s.counter, 0)
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Ensure interface compliance.
var (
	_ ports.IDGenerator = (*ObjectID)(nil)
	_ ports.IDGenerator = UUID{}
	_ ports.IDGenerator = (*Sequential)(nil)
)
