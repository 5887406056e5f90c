//go:build !unix

package securekey

import (
	"github.com/pkg/errors"
)

// allocate falls back to heap memory where anonymous mappings and mlock are unavailable.
func allocate(size int) (*region, error) {
	return &region{
		mem:     make([]byte, size),
		lockErr: errors.New("memory locking is not supported on this platform"),
	}, nil
}

func (r *region) free() error {
	return nil
}
