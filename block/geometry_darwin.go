//go:build darwin

package block

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// these constants should be part of golang.org/x/sys/unix, but aren't, yet.
const (
	dkiocGetBlockSize         = 0x40046418
	dkiocGetPhysicalBlockSize = 0x4004644D
)

func geometry(fd int) (logical, physical int64, err error) {
	l, err := unix.IoctlGetInt(fd, dkiocGetBlockSize)
	if err != nil {
		return 0, 0, fmt.Errorf("block: get logical sector size: %w", err)
	}
	p, err := unix.IoctlGetInt(fd, dkiocGetPhysicalBlockSize)
	if err != nil {
		return 0, 0, fmt.Errorf("block: get physical sector size: %w", err)
	}
	return int64(l), int64(p), nil
}
