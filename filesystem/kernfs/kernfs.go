// Package kernfs implements the top-level filesystem API (C8), wiring the
// block, free-map, inode, file, directory and resolver packages together
// into the github.com/kernfs/kernfs/filesystem.FileSystem interface.
package kernfs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/backend"
	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/directory"
	"github.com/kernfs/kernfs/file"
	"github.com/kernfs/kernfs/filesystem"
	"github.com/kernfs/kernfs/freemap"
	"github.com/kernfs/kernfs/inode"
	"github.com/kernfs/kernfs/kernerr"
	"github.com/kernfs/kernfs/resolver"
)

// RootSector is the fixed sector holding the root directory's inode. Sector
// 0 is reserved for the free-map's own inode (see freemap.SelfSector).
const RootSector = freemap.RootSector

// FileSystem is a mounted kernfs volume. The syscall dispatch layer this
// module plugs into owns a single global lock serializing every call into a
// FileSystem (spec.md §5); kernfs itself does no internal locking.
type FileSystem struct {
	dev   *block.Device
	fm    *freemap.FreeMap
	table *inode.Table
	res   *resolver.Resolver
	label string

	// cwd is the current working directory's sector for the single task
	// this FileSystem instance is serving. The thread/process subsystem
	// that would own one of these per task is an external collaborator
	// out of this module's scope (spec.md §1); kernfs keeps exactly the
	// one handle that contract requires.
	cwd *directory.Handle

	log *logrus.Entry
}

// Format lays down a fresh kernfs volume on storage: a free-map covering
// sectorCount sectors, and an empty root directory at RootSector whose ".."
// points to itself. Running Format twice against the same device produces
// identical sector 0 and sector 1 contents (spec.md §8 property 4), except
// for the randomly generated volume ID that the free-map stamps into the
// padding of its sector 0 record; nothing else depends on prior volume
// state.
func Format(storage backend.Storage, sectorCount uint32, log *logrus.Logger) (*FileSystem, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	dev, err := block.Open(storage, sectorCount, log)
	if err != nil {
		return nil, fmt.Errorf("kernfs: open device: %w", err)
	}
	if err := dev.Lock(); err != nil {
		return nil, fmt.Errorf("kernfs: format: %w", err)
	}
	if err := dev.TagMagic(); err != nil {
		return nil, fmt.Errorf("kernfs: format: %w", err)
	}

	table := inode.NewTable(dev, nil, log)
	fm, err := freemap.Format(dev, table, sectorCount, log)
	if err != nil {
		return nil, fmt.Errorf("kernfs: format free-map: %w", err)
	}
	table.SetAllocator(fm)

	if _, err := directory.Create(dev, fm, RootSector, directory.DefaultEntryCapacity, RootSector); err != nil {
		return nil, fmt.Errorf("kernfs: create root directory: %w", err)
	}

	return mount(dev, fm, table, log)
}

// Open mounts an already-formatted kernfs volume.
func Open(storage backend.Storage, sectorCount uint32, log *logrus.Logger) (*FileSystem, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	dev, err := block.Open(storage, sectorCount, log)
	if err != nil {
		return nil, fmt.Errorf("kernfs: open device: %w", err)
	}
	if err := dev.Lock(); err != nil {
		return nil, fmt.Errorf("kernfs: open: %w", err)
	}
	if ok, err := dev.CheckMagic(); err != nil {
		return nil, fmt.Errorf("kernfs: open: %w", err)
	} else if !ok {
		log.WithField("component", "kernfs").Debug("backing file has no kernfs magic tag, mounting anyway")
	}

	table := inode.NewTable(dev, nil, log)
	fm, err := freemap.Open(dev, table, sectorCount, log)
	if err != nil {
		return nil, fmt.Errorf("kernfs: open free-map: %w", err)
	}
	table.SetAllocator(fm)

	return mount(dev, fm, table, log)
}

func mount(dev *block.Device, fm *freemap.FreeMap, table *inode.Table, log *logrus.Logger) (*FileSystem, error) {
	fs := &FileSystem{
		dev:   dev,
		fm:    fm,
		table: table,
		res:   resolver.New(dev, fm, table, RootSector, log),
		log:   log.WithField("component", "kernfs"),
	}
	root, err := fs.res.OpenRoot()
	if err != nil {
		return nil, fmt.Errorf("kernfs: open root directory: %w", err)
	}
	fs.cwd = root
	return fs, nil
}

// Close unmounts the volume, releasing the cwd handle, the free-map, and the
// cross-process mount lock taken by Format/Open.
func (fs *FileSystem) Close() error {
	if fs.cwd != nil {
		fs.cwd.Close()
		fs.cwd = nil
	}
	fs.fm.Close()
	if err := fs.dev.Unlock(); err != nil {
		fs.log.WithError(err).Warn("failed to release device lock")
	}
	return nil
}

// Type returns TypeKernFS.
func (fs *FileSystem) Type() filesystem.Type {
	return filesystem.TypeKernFS
}

// Label returns the volume label.
func (fs *FileSystem) Label() string {
	return fs.label
}

// SetLabel sets the volume label. kernfs has no on-disk label field (not
// part of SPEC_FULL.md's persisted layout), so this is an in-memory-only
// annotation for the lifetime of the mount, kept for interface parity with
// the rest of this module family.
func (fs *FileSystem) SetLabel(label string) error {
	fs.label = label
	return nil
}

// TotalSectors returns the device's total sector count.
func (fs *FileSystem) TotalSectors() uint32 {
	return fs.fm.TotalSectors()
}

// FreeSectors returns the number of currently-unallocated sectors.
func (fs *FileSystem) FreeSectors() uint32 {
	return fs.fm.FreeSectors()
}

// VolumeID returns the volume identifier stamped at Format time.
func (fs *FileSystem) VolumeID() uuid.UUID {
	return fs.fm.VolumeID()
}

func (fs *FileSystem) cwdSector() uint32 {
	if fs.cwd == nil {
		return RootSector
	}
	return fs.cwd.Inumber()
}

// Create makes a new regular file of the given initial size.
func (fs *FileSystem) Create(pathname string, size int64) error {
	name := resolver.GetFilename(pathname)
	if name == "" {
		return kernerr.ErrInvalidName
	}

	parent, err := fs.res.Resolve(pathname, false, fs.cwdSector())
	if err != nil {
		return err
	}
	defer parent.Close()

	sector, err := fs.fm.Allocate(1)
	if err != nil {
		return err
	}
	if _, err := inode.Create(fs.dev, fs.fm, uint32(sector), size, false); err != nil {
		fs.fm.Release(sector, 1) //nolint:errcheck
		return err
	}
	if err := parent.Add(name, uint32(sector)); err != nil {
		fs.fm.Release(sector, 1) //nolint:errcheck
		return err
	}
	return nil
}

// Mkdir makes a new, empty directory.
func (fs *FileSystem) Mkdir(pathname string) error {
	name := resolver.GetFilename(pathname)
	if name == "" {
		return kernerr.ErrInvalidName
	}

	parent, err := fs.res.Resolve(pathname, false, fs.cwdSector())
	if err != nil {
		return err
	}
	defer parent.Close()

	if _, err := parent.Lookup(name); err == nil {
		return kernerr.ErrAlreadyExists
	}

	sector, err := fs.fm.Allocate(1)
	if err != nil {
		return err
	}
	if _, err := directory.Create(fs.dev, fs.fm, uint32(sector), directory.DefaultEntryCapacity, parent.Inumber()); err != nil {
		fs.fm.Release(sector, 1) //nolint:errcheck
		return err
	}
	if err := parent.Add(name, uint32(sector)); err != nil {
		fs.fm.Release(sector, 1) //nolint:errcheck
		return err
	}
	return nil
}

// Open resolves pathname to a handle. If the final path component is empty
// (the path names a directory, e.g. ends in "/" or is "/" itself), the
// resolved directory itself is returned as the handle.
func (fs *FileSystem) Open(pathname string) (filesystem.File, error) {
	name := resolver.GetFilename(pathname)

	if name == "" {
		dir, err := fs.res.Resolve(pathname, true, fs.cwdSector())
		if err != nil {
			return nil, err
		}
		return newHandle(fs, dir), nil
	}

	parent, err := fs.res.Resolve(pathname, false, fs.cwdSector())
	if err != nil {
		return nil, err
	}
	defer parent.Close()

	sector, err := parent.Lookup(name)
	if err != nil {
		return nil, err
	}
	ino, err := fs.table.Open(sector)
	if err != nil {
		return nil, err
	}
	if ino.Removed {
		fs.table.Close(ino)
		return nil, kernerr.ErrRemoved
	}

	if ino.Disk.IsDir {
		return newHandle(fs, directory.Open(fs.dev, fs.fm, fs.table, ino, nil)), nil
	}
	return newHandle(fs, file.Open(fs.dev, fs.fm, fs.table, ino, nil)), nil
}

// Remove deletes a file, or an empty, unused directory.
func (fs *FileSystem) Remove(pathname string) error {
	name := resolver.GetFilename(pathname)
	if name == "" {
		return kernerr.ErrInvalidName
	}

	parent, err := fs.res.Resolve(pathname, false, fs.cwdSector())
	if err != nil {
		return err
	}
	defer parent.Close()

	return parent.Remove(name)
}

// Chdir resolves pathname and installs it as the current working directory.
func (fs *FileSystem) Chdir(pathname string) error {
	dir, err := fs.res.Resolve(pathname, true, fs.cwdSector())
	if err != nil {
		return err
	}
	if fs.cwd != nil {
		fs.cwd.Close()
	}
	fs.cwd = dir
	return nil
}

// Mknod, Link, Symlink, Chmod, Chown and Rename are not supported: this
// filesystem has no device nodes, links, or ownership (spec.md §1 Non-goals).
func (fs *FileSystem) Mknod(pathname string, mode uint32, dev int) error { return filesystem.ErrNotSupported }
func (fs *FileSystem) Link(oldpath, newpath string) error               { return filesystem.ErrNotSupported }
func (fs *FileSystem) Symlink(oldpath, newpath string) error            { return filesystem.ErrNotSupported }
func (fs *FileSystem) Chmod(name string, mode uint32) error             { return filesystem.ErrNotSupported }
func (fs *FileSystem) Chown(name string, uid, gid int) error            { return filesystem.ErrNotSupported }
func (fs *FileSystem) Rename(oldpath, newpath string) error             { return filesystem.ErrNotSupported }

var _ filesystem.FileSystem = (*FileSystem)(nil)
