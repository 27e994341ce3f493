//go:build !windows && !linux && !darwin

package block

import "errors"

func geometry(fd int) (logical, physical int64, err error) {
	return 0, 0, errors.New("block: real block devices not supported on this platform")
}
