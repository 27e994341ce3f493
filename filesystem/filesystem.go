// Package filesystem declares the surface the syscall dispatch layer (out of
// scope for this module; see spec.md §1) drives to reach the on-disk
// filesystem core. The concrete implementation lives in
// github.com/kernfs/kernfs/filesystem/kernfs.
package filesystem

import "errors"

var (
	// ErrNotSupported is returned by operations this filesystem's design does
	// not implement: no permissions/owners, no symbolic or hard links, no
	// rename (see spec.md §1 Non-goals).
	ErrNotSupported = errors.New("method not supported by this filesystem")
	// ErrReadonlyFilesystem would be returned by a read-only mount; unused
	// today since this filesystem has no read-only mode, kept for interface
	// parity with the rest of the corpus's filesystem implementations.
	ErrReadonlyFilesystem = errors.New("read-only filesystem")
)

// Type identifies the on-disk format mounted by a FileSystem.
type Type int

const (
	// TypeKernFS is the hierarchical inode-indexed filesystem described by spec.md.
	TypeKernFS Type = iota
)

// FileSystem is a reference to a mounted filesystem, addressed by path.
// Mknod, Link, Symlink, Chmod, Chown and Rename are named here to keep the
// same ambient shape every filesystem in this module family exposes, but
// this filesystem has no permissions, owners, symlinks or rename (spec.md §1
// Non-goals), so they always return ErrNotSupported.
type FileSystem interface {
	// Type returns the type of filesystem mounted.
	Type() Type
	// Create makes a new regular file of the given initial size.
	Create(pathname string, size int64) error
	// Mkdir makes a new, empty directory.
	Mkdir(pathname string) error
	// Open resolves pathname to a handle usable for both file and directory
	// operations (spec.md §4.C8 open).
	Open(pathname string) (File, error)
	// Remove deletes a file, or an empty, unused directory.
	Remove(pathname string) error
	// Chdir resolves pathname and installs it as the current working
	// directory for subsequent relative resolutions.
	Chdir(pathname string) error
	// Label returns the volume label, or "" if none.
	Label() string
	// SetLabel sets the volume label.
	SetLabel(label string) error

	Mknod(pathname string, mode uint32, dev int) error
	Link(oldpath, newpath string) error
	Symlink(oldpath, newpath string) error
	Chmod(name string, mode uint32) error
	Chown(name string, uid, gid int) error
	Rename(oldpath, newpath string) error
}

// File is a handle returned by FileSystem.Open. It is deliberately the same
// handle type whether the resolved path named a file or a directory — spec.md
// §4.C8's open() returns the resolved directory itself when asked to open a
// path whose final component is empty, and readdir/isdir/inumber are
// specified as handle-based queries rather than path-based ones.
//
// On a directory handle, ReadAt, WriteAt and Seek return
// kernerr.ErrIsADirectory, while DenyWrite and AllowWrite do nothing. On a
// file handle, Readdir returns ok == false.
type File interface {
	// Length returns the current logical size in bytes.
	Length() int64
	// ReadAt reads len(b) bytes starting at off, as io.ReaderAt.
	ReadAt(b []byte, off int64) (int, error)
	// WriteAt writes len(b) bytes starting at off, as io.WriterAt. Returns -1
	// if the implicit extend this write requires runs out of space.
	WriteAt(b []byte, off int64) (int, error)
	// Seek repositions the handle's cursor, as io.Seeker.
	Seek(offset int64, whence int) (int64, error)
	// Tell returns the handle's current cursor position.
	Tell() int64
	// Readdir returns the next directory entry name, or ok=false at the end
	// of the directory.
	Readdir() (name string, ok bool)
	// IsDir reports whether the handle refers to a directory.
	IsDir() bool
	// Inumber returns the sector number backing the handle's inode.
	Inumber() uint32
	// DenyWrite disables writes through any handle on the underlying inode
	// until a matching AllowWrite.
	DenyWrite()
	// AllowWrite reverses one prior DenyWrite.
	AllowWrite()
	// Close releases the handle's reference on the underlying inode.
	Close() error
}
