// Package diskfs implements a small on-disk hierarchical filesystem core
// designed to live on a fixed-size block device: a free-space bitmap, a
// multi-level indexed inode (direct / single-indirect / double-indirect
// block pointers), a shared in-memory open-inode table with reference
// counting, file handles with deny-write support, a directory layer, and a
// path resolver that walks absolute or cwd-relative paths.
//
// This does **not** mount anything into the host operating system; it reads
// and writes kernfs volumes as ordinary files or block devices, the way a
// teaching kernel's filesystem module would read and write a virtual disk.
//
// Typical use, creating a fresh volume and populating it:
//
//	d, err := diskfs.Create("/tmp/disk.img", 8*1024*1024)
//	fsys, err := d.Format(nil)
//	err = fsys.Mkdir("/docs")
//	err = fsys.Create("/docs/readme", 0)
//	f, err := fsys.Open("/docs/readme")
//	_, err = f.WriteAt([]byte("hello"), 0)
//	err = f.Close()
//
// And reopening an already-formatted volume:
//
//	d, err := diskfs.Open("/tmp/disk.img")
//	fsys, err := d.Mount(nil)
package diskfs

import (
	"github.com/kernfs/kernfs/disk"
)

// Create makes a new device/image at path of the given size in bytes, which
// must not already exist. Use the returned Disk's Format method to lay down
// a fresh kernfs volume spanning it.
func Create(path string, size int64) (*disk.Disk, error) {
	return disk.Create(path, size)
}

// Open opens an existing device/image at path for read-write access. Use
// the returned Disk's Mount method to open the kernfs volume already
// formatted onto it.
func Open(path string) (*disk.Disk, error) {
	return disk.Open(path)
}
