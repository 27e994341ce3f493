//go:build linux

package block

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// logical/physical sector size ioctls, as used by BLKSSZGET/BLKBSZGET on Linux.
const (
	blksszGet = 0x1268
	blkbszGet = 0x80081270
)

// geometry reads the logical and physical sector size of a real block
// device (e.g. /dev/sdX) via ioctl. It has no meaning for a regular file.
func geometry(fd int) (logical, physical int64, err error) {
	l, err := unix.IoctlGetInt(fd, blksszGet)
	if err != nil {
		return 0, 0, fmt.Errorf("block: get logical sector size: %w", err)
	}
	p, err := unix.IoctlGetInt(fd, blkbszGet)
	if err != nil {
		return 0, 0, fmt.Errorf("block: get physical sector size: %w", err)
	}
	return int64(l), int64(p), nil
}
