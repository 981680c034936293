// Package uuidv7 generates UUIDv7 identifiers that are lexicographically
// time-sortable and strictly increasing within a single process.
//
// Each identifier packs a 48-bit millisecond timestamp followed by a 74-bit
// random payload (12 bits of rand_a plus 62 bits of rand_b, per RFC 9562).
// Within the same millisecond the payload is incremented rather than
// reseeded, so "order by id" agrees with generation order without a separate
// sequence column.
package uuidv7

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// randAMax is the maximum value of the 12-bit rand_a segment.
	randAMax = 0xfff
	// randBMax is the maximum value of the 62-bit rand_b segment.
	randBMax = (uint64(1) << 62) - 1
	// timestampMax is the largest millisecond timestamp encodable in 48 bits.
	timestampMax = int64(1)<<48 - 1
)

// Generator holds the process-local monotonicity state. Construct one with
// New and share it; the zero value is not usable. All methods are safe for
// concurrent use.
//
// This generator gives no cross-process collision guarantee beyond the
// payload's entropy, which is the accepted tradeoff for a single-instance
// deployment.
type Generator struct {
	mu sync.Mutex

	// now is the clock source, injectable for tests.
	now func() time.Time

	lastTimestampMs int64
	// lastRandA/lastRandB together form the 74-bit payload of the most
	// recently issued identifier.
	lastRandA uint16
	lastRandB uint64
}

// New creates a Generator backed by the system clock.
func New() *Generator {
	return &Generator{now: time.Now, lastTimestampMs: -1}
}

// Next returns a new UUIDv7, strictly greater (bytewise) than every
// identifier previously returned by this Generator.
func (g *Generator) Next() (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestampMs := g.now().UnixMilli()

	// Clock went backward: clamp to the last issued timestamp instead of
	// producing an identifier from the past.
	if timestampMs < g.lastTimestampMs {
		timestampMs = g.lastTimestampMs
	}

	if timestampMs == g.lastTimestampMs {
		if g.lastRandA == randAMax && g.lastRandB == randBMax {
			// Payload exhausted within this millisecond. Busy-wait for the
			// clock to advance; bounded to ~1ms and only reachable at
			// extreme call rates.
			timestampMs = g.waitForNextMillisecond(g.lastTimestampMs)
			if err := g.reseed(); err != nil {
				return uuid.Nil, err
			}
		} else if g.lastRandB == randBMax {
			g.lastRandA++
			g.lastRandB = 0
		} else {
			g.lastRandB++
		}
	} else {
		if err := g.reseed(); err != nil {
			return uuid.Nil, err
		}
	}

	g.lastTimestampMs = timestampMs
	return encode(timestampMs, g.lastRandA, g.lastRandB)
}

// NextString returns the canonical string form of Next.
func (g *Generator) NextString() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// reseed replaces the payload with fresh random bits.
func (g *Generator) reseed() error {
	var buf [10]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Errorf("read random payload: %w", err)
	}

	g.lastRandA = (uint16(buf[0])<<8 | uint16(buf[1])) & randAMax
	g.lastRandB = 0
	for _, b := range buf[2:] {
		g.lastRandB = g.lastRandB<<8 | uint64(b)
	}
	g.lastRandB &= randBMax
	return nil
}

func (g *Generator) waitForNextMillisecond(previousMs int64) int64 {
	nowMs := g.now().UnixMilli()
	for nowMs <= previousMs {
		nowMs = g.now().UnixMilli()
	}
	return nowMs
}

// encode lays out the timestamp and payload per RFC 9562:
// 48-bit big-endian timestamp, version nibble 7, 12-bit rand_a,
// variant bits 10, then 62-bit rand_b.
func encode(timestampMs int64, randA uint16, randB uint64) (uuid.UUID, error) {
	if timestampMs < 0 || timestampMs > timestampMax {
		return uuid.Nil, fmt.Errorf("timestamp %d out of range for uuidv7", timestampMs)
	}

	var b uuid.UUID
	b[0] = byte(timestampMs >> 40)
	b[1] = byte(timestampMs >> 32)
	b[2] = byte(timestampMs >> 24)
	b[3] = byte(timestampMs >> 16)
	b[4] = byte(timestampMs >> 8)
	b[5] = byte(timestampMs)

	b[6] = 0x70 | byte(randA>>8)&0x0f
	b[7] = byte(randA)

	b[8] = 0x80 | byte(randB>>56)&0x3f
	b[9] = byte(randB >> 48)
	b[10] = byte(randB >> 40)
	b[11] = byte(randB >> 32)
	b[12] = byte(randB >> 24)
	b[13] = byte(randB >> 16)
	b[14] = byte(randB >> 8)
	b[15] = byte(randB)

	return b, nil
}
