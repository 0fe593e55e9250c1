// Package uuid generates the time-ordered identifiers used for books,
// transactions and bookkeeping rows.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7 for the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt generates a UUIDv7 whose timestamp is t.
//
// Layout (RFC 9562):
// - 48 bits: Unix timestamp in milliseconds
// - 4 bits: version (0111 = 7)
// - 12 bits: random data
// - 2 bits: variant (10)
// - 62 bits: random data
func NewAt(t time.Time) string {
	var id [16]byte

	binary.BigEndian.PutUint64(id[0:8], uint64(t.UnixMilli())<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return format(id)
}

// Generator returns ids for records created at a given instant.
type Generator func(time.Time) string

func format(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
