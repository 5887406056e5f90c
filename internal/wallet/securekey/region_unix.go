//go:build unix

package securekey

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// allocate maps a private anonymous region, zero-filled by the kernel, and tries to lock it.
func allocate(size int) (*region, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrap(err, "failed to map memory")
	}

	r := &region{mem: mem}
	if err := unix.Mlock(mem); err != nil {
		r.lockErr = errors.Wrap(err, "failed to lock memory")
	} else {
		r.locked = true
	}

	return r, nil
}

func (r *region) free() error {
	if r.locked {
		if err := unix.Munlock(r.mem); err != nil {
			return errors.Wrap(err, "failed to unlock memory")
		}
	}
	return unix.Munmap(r.mem)
}
