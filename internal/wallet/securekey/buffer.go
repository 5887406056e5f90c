package securekey

import (
	"runtime"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/util"
)

// KeyLength is the size of a secp256k1 private key.
const KeyLength = 32

// Buffer owns one private key in a dedicated memory region that is locked against swapping
// where the platform allows it and zeroed on every release path.
//
// The key is only reachable inside WithKey. Calls are serialised by an internal mutex, so a
// Buffer may be shared between goroutines; Destroy waits for a running WithKey to return.
type Buffer struct {
	mu        sync.Mutex
	region    *region
	cleanup   runtime.Cleanup
	destroyed bool
}

// region is the backing memory. It is separate from Buffer so the GC cleanup can release it
// without keeping the Buffer reachable.
type region struct {
	mu       sync.Mutex
	mem      []byte
	locked   bool
	lockErr  error
	released bool
}

// releaseHook observes the region after zeroing and before it is unmapped. Tests only.
var releaseHook func(mem []byte)

func (r *region) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	util.ZeroBytes(r.mem)
	if releaseHook != nil {
		releaseHook(r.mem)
	}
	_ = r.free()
	r.mem = nil
}

// New copies key into a fresh region. The caller remains responsible for its own copy.
func New(key []byte) (*Buffer, error) {
	if err := validate(key); err != nil {
		return nil, err
	}

	r, err := allocate(KeyLength)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate key region")
	}
	copy(r.mem, key)

	b := &Buffer{region: r}
	b.cleanup = runtime.AddCleanup(b, func(r *region) { r.release() }, r)

	return b, nil
}

// Generate creates a Buffer holding a new random key.
func Generate() (*Buffer, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate private key")
	}
	defer priv.Zero()

	raw := priv.Key.Bytes()
	defer util.ZeroBytes(raw[:])

	return New(raw[:])
}

// validate checks that key is a 32-byte scalar in [1, n-1].
func validate(key []byte) error {
	if len(key) != KeyLength {
		return errors.Wrapf(types.ErrInvalidPrivateKeyFormat, "key must be %d bytes, got %d", KeyLength, len(key))
	}

	var scalar secp256k1.ModNScalar
	defer scalar.Zero()

	if overflow := scalar.SetByteSlice(key); overflow || scalar.IsZero() {
		return errors.Wrap(types.ErrInvalidPrivateKeyFormat, "key is not a valid secp256k1 scalar")
	}

	return nil
}

// WithKey calls fn with the key bytes. fn must not retain the slice or copy it anywhere that
// outlives the call.
func (b *Buffer) WithKey(fn func(key []byte) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return types.ErrKeyDestroyed
	}

	return fn(b.region.mem)
}

// Destroy zeroes and releases the key immediately. It is safe to call more than once; only
// the call that released the key returns true.
func (b *Buffer) Destroy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return false
	}
	b.destroyed = true

	b.cleanup.Stop()
	b.region.release()

	return true
}

// Destroyed reports whether Destroy has been called.
func (b *Buffer) Destroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.destroyed
}

// Locked reports whether the region is locked against swapping.
func (b *Buffer) Locked() bool {
	return b.region.locked
}

// LockError returns why locking failed, or nil.
func (b *Buffer) LockError() error {
	return b.region.lockErr
}
