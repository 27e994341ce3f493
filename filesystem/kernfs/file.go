package kernfs

import (
	"github.com/kernfs/kernfs/directory"
	"github.com/kernfs/kernfs/file"
	"github.com/kernfs/kernfs/filesystem"
	"github.com/kernfs/kernfs/kernerr"
)

// handle adapts either a file.Handle or a directory.Handle to the single
// filesystem.File interface, since spec.md §4.C8's open() returns the same
// handle shape regardless of whether the resolved path named a file or a
// directory.
type handle struct {
	fs  *FileSystem
	f   *file.Handle
	dir *directory.Handle
}

func newHandle(fs *FileSystem, h interface{}) *handle {
	switch v := h.(type) {
	case *file.Handle:
		return &handle{fs: fs, f: v}
	case *directory.Handle:
		return &handle{fs: fs, dir: v}
	default:
		panic("kernfs: newHandle given neither a file nor a directory handle")
	}
}

func (h *handle) IsDir() bool {
	return h.dir != nil
}

func (h *handle) Length() int64 {
	if h.dir != nil {
		return int64(h.dir.Inode().Disk.Length)
	}
	return h.f.Length()
}

func (h *handle) ReadAt(b []byte, off int64) (int, error) {
	if h.dir != nil {
		return 0, kernerr.ErrIsADirectory
	}
	return h.f.ReadAt(b, off)
}

func (h *handle) WriteAt(b []byte, off int64) (int, error) {
	if h.dir != nil {
		return 0, kernerr.ErrIsADirectory
	}
	return h.f.WriteAt(b, off)
}

func (h *handle) Seek(offset int64, whence int) (int64, error) {
	if h.dir != nil {
		return 0, kernerr.ErrIsADirectory
	}
	return h.f.Seek(offset, whence)
}

func (h *handle) Tell() int64 {
	if h.dir != nil {
		return 0
	}
	return h.f.Tell()
}

func (h *handle) Readdir() (string, bool) {
	if h.dir == nil {
		return "", false
	}
	name, ok, err := h.dir.Readdir()
	if err != nil {
		return "", false
	}
	return name, ok
}

func (h *handle) Inumber() uint32 {
	if h.dir != nil {
		return h.dir.Inumber()
	}
	return h.f.Inumber()
}

func (h *handle) DenyWrite() {
	if h.dir != nil {
		return
	}
	h.f.DenyWrite()
}

func (h *handle) AllowWrite() {
	if h.dir != nil {
		return
	}
	h.f.AllowWrite()
}

func (h *handle) Close() error {
	if h.dir != nil {
		return h.dir.Close()
	}
	return h.f.Close()
}

var _ filesystem.File = (*handle)(nil)
