// Package kernerr collects the sentinel errors shared across the filesystem
// core. Callers should compare with errors.Is, since lower layers wrap these
// with additional context via fmt.Errorf("...: %w", ...).
package kernerr

import "errors"

var (
	// ErrNoSuchEntry is returned when a directory lookup does not find the requested name.
	ErrNoSuchEntry = errors.New("no such entry")
	// ErrAlreadyExists is returned when a directory add targets a name already in use.
	ErrAlreadyExists = errors.New("entry already exists")
	// ErrNotADirectory is returned when an intermediate path component is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrIsADirectory is returned when an operation that requires a file is given a directory.
	ErrIsADirectory = errors.New("is a directory")
	// ErrRemoved is returned when operating on an inode whose removed flag is set.
	ErrRemoved = errors.New("inode has been removed")
	// ErrNoSpace is returned when the free-map has no room, or a file would exceed the maximum size.
	ErrNoSpace = errors.New("no space left on device")
	// ErrInvalidName is returned for an empty name or one longer than the maximum component length.
	ErrInvalidName = errors.New("invalid file name")
	// ErrDirNotEmpty is returned when removing a directory that still has live entries.
	ErrDirNotEmpty = errors.New("directory not empty")
	// ErrInvalidPath is returned for an empty path.
	ErrInvalidPath = errors.New("invalid path")
	// ErrBusy is returned when removing a directory that is open elsewhere.
	ErrBusy = errors.New("resource busy")
	// ErrBadMagic is returned when a sector does not decode to a valid inode record.
	ErrBadMagic = errors.New("bad inode magic")
	// ErrNotPresent is returned by byte-to-sector translation when the
	// requested offset has no backing sector: either it lies outside the
	// file's current length, or it lies beyond the maximum representable
	// file size for the index tree.
	ErrNotPresent = errors.New("position has no backing sector")
)
