package disk

import (
	"fmt"
	"os"
)

// DeviceType distinguishes a plain disk image file from a real block device;
// only the latter has kernel-reported sector geometry to probe.
type DeviceType int

const (
	DeviceTypeUnknown DeviceType = iota
	DeviceTypeFile
	DeviceTypeBlockDevice
)

func deviceTypeFromMode(mode os.FileMode) (DeviceType, error) {
	switch {
	case mode.IsRegular():
		return DeviceTypeFile, nil
	case mode&os.ModeDevice != 0:
		return DeviceTypeBlockDevice, nil
	default:
		return DeviceTypeUnknown, fmt.Errorf("disk: backing storage is neither a block device nor a regular file (mode %s)", mode)
	}
}
