package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job ids are ULIDs: a 48-bit millisecond timestamp followed by 80 random
// bits, as 26 Crockford base32 characters, so they sort by creation time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewJobID returns a fresh ULID. Ids minted in the same millisecond carry an
// increasing sequence in the first two random bytes.
func NewJobID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	ulidMu.Lock()
	ts := uint64(now.UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}
	seq := lastSeq
	ulidMu.Unlock()

	var b [16]byte
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	hi := ts<<16 | uint64(binary.BigEndian.Uint16(b[6:8]))
	lo := binary.BigEndian.Uint64(b[8:16])
	return encodeULID(hi, lo)
}

// encodeULID writes the 128-bit value hi:lo as 26 five-bit digits, most
// significant first. The first digit only holds three bits.
func encodeULID(hi, lo uint64) string {
	var out [26]byte
	for i := range out {
		shift := uint(125 - 5*i)
		var v uint64
		switch {
		case shift >= 64:
			v = hi >> (shift - 64)
		case shift > 0:
			v = lo>>shift | hi<<(64-shift)
		default:
			v = lo >> shift
		}
		out[i] = crockford[v&31]
	}
	return string(out[:])
}
