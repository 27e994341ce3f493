// Package testhelper stubs a backend.Storage so block-level tests don't
// need a real file on disk.
package testhelper

import (
	"io/fs"
	"os"

	"github.com/kernfs/kernfs/backend"
)

type reader func(b []byte, offset int64) (int, error)
type writer func(b []byte, offset int64) (int, error)

// FileImpl implements github.com/kernfs/kernfs/backend.Storage over
// in-memory Reader/Writer funcs, so tests can stub arbitrary short-read or
// failure behavior without touching the filesystem. Sys() always reports
// backend.ErrNotSuitable, since there is no real file descriptor behind it;
// tests exercising block.Device.Geometry/BackingTimes/magic tagging use a
// real temp file (via backend/file) instead.
type FileImpl struct {
	Reader reader
	Writer writer
	Size   int64
}

var _ backend.Storage = (*FileImpl)(nil)

func (f *FileImpl) Stat() (fs.FileInfo, error) {
	return nil, fs.ErrInvalid
}

func (f *FileImpl) Read(b []byte) (int, error) {
	return f.Reader(b, 0)
}

func (f *FileImpl) Close() error {
	return nil
}

// ReadAt reads at a particular offset.
func (f *FileImpl) ReadAt(b []byte, offset int64) (int, error) {
	return f.Reader(b, offset)
}

// WriteAt writes at a particular offset.
func (f *FileImpl) WriteAt(b []byte, offset int64) (int, error) {
	return f.Writer(b, offset)
}

// Seek does not actually work; FileImpl is only ever accessed via ReadAt/WriteAt.
func (f *FileImpl) Seek(offset int64, whence int) (int64, error) {
	return 0, fs.ErrInvalid
}

func (f *FileImpl) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

func (f *FileImpl) Writable() (backend.WritableFile, error) {
	return writableImpl{f}, nil
}

// writableImpl adapts FileImpl to backend.WritableFile, which additionally
// needs fs.File's Stat/Read/Close alongside WriteAt.
type writableImpl struct {
	*FileImpl
}
