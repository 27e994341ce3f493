//go:build !windows

package block

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Lock takes an exclusive, non-blocking advisory lock on the device's
// backing file. This is the process-boundary analogue of the single
// coarse-grained lock the rest of this filesystem core assumes its caller
// already holds (see the concurrency model): it stops two separate
// processes from mounting the same image at once, which no amount of
// in-process locking can prevent.
func (d *Device) Lock() error {
	f, err := d.sysFile()
	if err != nil {
		// not a real file; nothing to flock.
		return nil
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return fmt.Errorf("block: device already locked by another process: %w", err)
	}
	return nil
}

// Unlock releases a lock taken by Lock.
func (d *Device) Unlock() error {
	f, err := d.sysFile()
	if err != nil {
		return nil
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("block: unlock device: %w", err)
	}
	return nil
}
