package nonce

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync/atomic"
	"time"
)

// Packed nonce layout, most significant first:
//
//	| unix millis (44 bits) | counter (10 bits) | random (10 bits) |
const (
	counterBits = 10
	randomBits  = 10
	counterMask = 1<<counterBits - 1
	randomMask  = 1<<randomBits - 1

	// TimestampShift is the position of the millisecond timestamp inside a packed nonce.
	TimestampShift = counterBits + randomBits
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Source or Generator.
type Option func(*options)

type options struct {
	clock  Clock
	random io.Reader
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRandom replaces the random component reader.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.random = r
	}
}

func newOptions(opts []Option) options {
	o := options{clock: time.Now, random: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Source produces packed nonces. It is safe for concurrent use and lock-free; no two calls
// on one Source return the same value.
type Source struct {
	// state is (millis << counterBits) | counter of the last issued nonce.
	state  atomic.Uint64
	clock  Clock
	random io.Reader
}

// NewSource creates an independent Source.
func NewSource(opts ...Option) *Source {
	o := newOptions(opts)
	return &Source{clock: o.clock, random: o.random}
}

var defaultSource = NewSource()

// Generate returns a packed nonce from the process-wide default Source.
func Generate() uint64 {
	return defaultSource.Next()
}

// Next returns the next packed nonce. When more than 1024 nonces are requested within one
// millisecond the timestamp component advances early rather than wrapping the counter.
func (s *Source) Next() uint64 {
	now := uint64(s.clock().UnixMilli())

	for {
		prev := s.state.Load()
		prevMillis := prev >> counterBits

		var next uint64
		if now > prevMillis {
			next = now << counterBits
		} else {
			// Same or earlier millisecond: bump the counter, carrying into the timestamp.
			next = prev + 1
		}

		if s.state.CompareAndSwap(prev, next) {
			return next<<randomBits | s.randomComponent()
		}
	}
}

func (s *Source) randomComponent() uint64 {
	var buf [2]byte
	if _, err := io.ReadFull(s.random, buf[:]); err != nil {
		// The random component only reduces predictability; uniqueness comes from state.
		return 0
	}
	return uint64(binary.BigEndian.Uint16(buf[:])) & randomMask
}

// ExtractMillis returns the millisecond timestamp component of a packed nonce.
func ExtractMillis(n uint64) uint64 {
	return n >> TimestampShift
}

// Counter returns the counter component of a packed nonce.
func Counter(n uint64) uint64 {
	return n >> randomBits & counterMask
}

// Timestamp returns the current unix time in milliseconds, the plain nonce form most
// exchange actions carry.
func Timestamp() uint64 {
	return uint64(time.Now().UnixMilli())
}

// TimestampMicros returns the current unix time in microseconds.
func TimestampMicros() uint64 {
	return uint64(time.Now().UnixMicro())
}
