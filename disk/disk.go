// Package disk opens or creates the backing device/image a kernfs volume
// lives on. It has no notion of a partition table: this filesystem occupies
// the entire device, which is exactly the single fixed-size block device
// spec.md §1 describes as its out-of-scope block device driver collaborator.
package disk

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/backend"
	"github.com/kernfs/kernfs/backend/file"
	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/filesystem/kernfs"
)

const defaultBlocksize = block.SectorSize

// Disk is a reference to the whole backing device/image a kernfs volume is
// (or will be) formatted onto.
type Disk struct {
	storage           backend.Storage
	dev               *block.Device
	Type              DeviceType
	Size              int64
	LogicalBlocksize  int64
	PhysicalBlocksize int64
	log               *logrus.Logger
}

// Open opens an existing device/image at path for read-write access. The
// device must already exist; use Create to make a new one.
func Open(path string) (*Disk, error) {
	storage, err := file.OpenFromPath(path, false)
	if err != nil {
		return nil, err
	}
	return initDisk(storage)
}

// Create makes a new device/image at path of the given size, which must not
// already exist.
func Create(path string, size int64) (*Disk, error) {
	storage, err := file.CreateFromPath(path, size)
	if err != nil {
		return nil, err
	}
	return initDisk(storage)
}

func initDisk(storage backend.Storage) (*Disk, error) {
	info, err := storage.Stat()
	if err != nil {
		return nil, fmt.Errorf("disk: stat backing storage: %w", err)
	}
	if info.Size() <= 0 {
		return nil, errors.New("disk: backing storage has no size")
	}

	dt, err := deviceTypeFromMode(info.Mode())
	if err != nil {
		return nil, err
	}

	sectorCount := uint32(info.Size() / block.SectorSize)
	dev, err := block.Open(storage, sectorCount, nil)
	if err != nil {
		return nil, fmt.Errorf("disk: wrap backing storage: %w", err)
	}

	lblksize, pblksize := int64(defaultBlocksize), int64(defaultBlocksize)
	if dt == DeviceTypeBlockDevice {
		if l, p, err := dev.Geometry(); err == nil && l > 0 {
			lblksize, pblksize = l, p
		}
	}

	return &Disk{
		storage:           storage,
		dev:               dev,
		Type:              dt,
		Size:              info.Size(),
		LogicalBlocksize:  lblksize,
		PhysicalBlocksize: pblksize,
	}, nil
}

// BackingTimes returns the backing file's filesystem-reported timestamps,
// for diagnostic tools like cmd/fsck.
func (d *Disk) BackingTimes() (block.BackingTimes, error) {
	return d.dev.BackingTimes()
}

// SectorCount returns the number of block.SectorSize-byte sectors this disk
// holds, truncating any trailing partial sector.
func (d *Disk) SectorCount() uint32 {
	return uint32(d.Size / block.SectorSize)
}

// Format lays down a fresh kernfs volume spanning the entire disk.
func (d *Disk) Format(log *logrus.Logger) (*kernfs.FileSystem, error) {
	return kernfs.Format(d.storage, d.SectorCount(), log)
}

// Mount opens the kernfs volume already formatted onto this disk.
func (d *Disk) Mount(log *logrus.Logger) (*kernfs.FileSystem, error) {
	return kernfs.Open(d.storage, d.SectorCount(), log)
}

// Close releases the backing storage.
func (d *Disk) Close() error {
	return d.storage.Close()
}
