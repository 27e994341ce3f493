package block

// Geometry reports the logical and physical sector size reported by the
// kernel for the backing device. It only succeeds when the device is a real
// block device (not a regular file), since a regular file has no intrinsic
// sector geometry of its own.
func (d *Device) Geometry() (logical, physical int64, err error) {
	f, err := d.sysFile()
	if err != nil {
		return 0, 0, err
	}
	return geometry(int(f.Fd()))
}
