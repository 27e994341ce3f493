// Package block implements the fixed-size whole-sector device abstraction
// every layer above it (free-map, inodes, directories) is built on. A Device
// knows nothing about inodes, files or directories — it only knows how to
// read and write whole SectorSize-byte sectors of a backend.Storage, and how
// many of them the device has.
package block

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/backend"
)

// SectorSize is the fixed sector size this filesystem core is built around.
// There is no mixed logical/physical sector size support: every on-disk
// structure (inode_disk, dir_entry tables, the free-map bitmap's backing
// file) is laid out in units of SectorSize bytes.
const SectorSize = 512

// Sector identifies a single SectorSize-byte region of a Device by index.
// Sector 0 is conventionally the free-map's inode and Sector 1 the root
// directory's inode, mirroring the reserved layout of the filesystem this
// package is modeled on.
type Sector uint32

// Device is a fixed-size, sector-addressed block device backed by a
// backend.Storage (a regular file or a real block device).
type Device struct {
	storage backend.Storage
	count   uint32
	log     *logrus.Entry
}

// Open wraps storage as a Device of sectorCount sectors. log may be nil, in
// which case logrus.StandardLogger() is used.
func Open(storage backend.Storage, sectorCount uint32, log *logrus.Logger) (*Device, error) {
	if storage == nil {
		return nil, fmt.Errorf("block: nil storage")
	}
	if sectorCount == 0 {
		return nil, fmt.Errorf("block: device must have at least one sector")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Device{
		storage: storage,
		count:   sectorCount,
		log:     log.WithField("component", "block"),
	}, nil
}

// SectorCount returns the number of SectorSize-byte sectors on the device.
func (d *Device) SectorCount() uint32 {
	return d.count
}

// ReadSector reads exactly SectorSize bytes from sector s into buf.
func (d *Device) ReadSector(s Sector, buf []byte) error {
	if len(buf) != SectorSize {
		return fmt.Errorf("block: read buffer must be exactly %d bytes, got %d", SectorSize, len(buf))
	}
	if uint32(s) >= d.count {
		return fmt.Errorf("block: sector %d out of range (device has %d sectors)", s, d.count)
	}
	off := int64(s) * SectorSize
	n, err := d.storage.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("block: read sector %d: %w", s, err)
	}
	if n < SectorSize {
		// short reads past the last written extent read as zero, matching a
		// freshly truncated backing file.
		for i := n; i < SectorSize; i++ {
			buf[i] = 0
		}
	}
	d.log.WithFields(logrus.Fields{"sector": s, "bytes": n}).Trace("read sector")
	return nil
}

// WriteSector writes exactly SectorSize bytes from buf to sector s.
func (d *Device) WriteSector(s Sector, buf []byte) error {
	if len(buf) != SectorSize {
		return fmt.Errorf("block: write buffer must be exactly %d bytes, got %d", SectorSize, len(buf))
	}
	if uint32(s) >= d.count {
		return fmt.Errorf("block: sector %d out of range (device has %d sectors)", s, d.count)
	}
	w, err := d.storage.Writable()
	if err != nil {
		return fmt.Errorf("block: device not writable: %w", err)
	}
	off := int64(s) * SectorSize
	n, err := w.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("block: write sector %d: %w", s, err)
	}
	if n != SectorSize {
		return fmt.Errorf("block: short write to sector %d: wrote %d of %d bytes", s, n, SectorSize)
	}
	d.log.WithFields(logrus.Fields{"sector": s, "bytes": n}).Trace("write sector")
	return nil
}

// Close releases the underlying backend.Storage.
func (d *Device) Close() error {
	return d.storage.Close()
}

// sysFile returns the *os.File backing this device, for operations (ioctl,
// flock, xattr, birth-time lookup) that only make sense against a real file
// descriptor. It returns backend.ErrNotSuitable for storage backends that
// aren't a plain *os.File.
func (d *Device) sysFile() (*os.File, error) {
	return d.storage.Sys()
}
