package nonce

import (
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxAge is the default replay window for VerifyNonceAge.
const DefaultMaxAge = 5 * time.Minute

const (
	// Packed nonces carry millis << 20, so every packed value issued after 1973 is above this.
	packedThreshold uint64 = 100_000_000_000_000_000
	// Microsecond timestamps have 16 digits today, millisecond ones 13.
	microsThreshold uint64 = 100_000_000_000_000
)

// ErrNonceExpired is returned when a nonce is older than the allowed window.
var ErrNonceExpired = errors.New("nonce expired")

// ExtractTime interprets a nonce as a packed nonce, a microsecond timestamp or a millisecond
// timestamp, by magnitude.
func ExtractTime(n uint64) time.Time {
	switch {
	case n >= packedThreshold:
		return time.UnixMilli(int64(ExtractMillis(n)))
	case n >= microsThreshold:
		return time.UnixMicro(int64(n))
	default:
		return time.UnixMilli(int64(n))
	}
}

// FormatTimestamp renders the time component of a nonce in RFC 3339 with milliseconds.
func FormatTimestamp(n uint64) string {
	return ExtractTime(n).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// VerifyNonceAge rejects nonces whose time component is older than maxAge. Nonces from the
// future are accepted; the counterparty bounds those.
func VerifyNonceAge(n uint64, maxAge time.Duration) error {
	return verifyNonceAgeAt(n, maxAge, time.Now())
}

// VerifyNonceAgeDefault is VerifyNonceAge with DefaultMaxAge.
func VerifyNonceAgeDefault(n uint64) error {
	return VerifyNonceAge(n, DefaultMaxAge)
}

func verifyNonceAgeAt(n uint64, maxAge time.Duration, now time.Time) error {
	issued := ExtractTime(n)
	if age := now.Sub(issued); age > maxAge {
		return errors.Wrapf(ErrNonceExpired, "nonce %d is %s old, max %s", n, age.Truncate(time.Millisecond), maxAge)
	}
	return nil
}
