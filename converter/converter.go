// Package converter adapts a github.com/kernfs/kernfs/filesystem.FileSystem
// to the standard library's io/fs.FS, so a mounted kernfs volume can be
// handed to anything that consumes fs.FS (archive/zip, http.FileServer, and
// so on).
package converter

import (
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/kernfs/kernfs/filesystem"
)

type fsCompatible struct {
	filesystem.FileSystem
}

// FS wraps f as a read-only io/fs.FS.
func FS(f filesystem.FileSystem) fs.FS {
	return &fsCompatible{f}
}

func (f *fsCompatible) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	h, err := f.FileSystem.Open(path.Clean("/" + name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &fileWrapper{name: path.Base(name), h: h}, nil
}

// ReadDir implements io/fs.ReadDirFS directly, rather than callers always
// falling back to fs.ReadDir's Open-then-ReadDirFile path.
func (f *fsCompatible) ReadDir(name string) ([]fs.DirEntry, error) {
	file, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	dir, ok := file.(fs.ReadDirFile)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return dir.ReadDir(-1)
}

var _ fs.ReadDirFS = (*fsCompatible)(nil)

// fileWrapper adapts a filesystem.File to fs.File (and fs.ReadDirFile for
// directories), keeping its own read cursor the way io/fs.File expects
// rather than relying on the handle's Seek, since Read must advance
// position implicitly on every call.
type fileWrapper struct {
	name string
	h    filesystem.File
	pos  int64
}

func (w *fileWrapper) Stat() (fs.FileInfo, error) {
	return fileInfo{name: w.name, size: w.h.Length(), isDir: w.h.IsDir()}, nil
}

func (w *fileWrapper) Read(b []byte) (int, error) {
	if w.h.IsDir() {
		return 0, &fs.PathError{Op: "read", Path: w.name, Err: fs.ErrInvalid}
	}
	n, err := w.h.ReadAt(b, w.pos)
	w.pos += int64(n)
	return n, err
}

func (w *fileWrapper) Close() error {
	return w.h.Close()
}

// ReadDir implements fs.ReadDirFile for directory handles.
func (w *fileWrapper) ReadDir(n int) ([]fs.DirEntry, error) {
	if !w.h.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: w.name, Err: fs.ErrInvalid}
	}
	var entries []fs.DirEntry
	for n <= 0 || len(entries) < n {
		name, ok := w.h.Readdir()
		if !ok {
			break
		}
		entries = append(entries, fs.FileInfoToDirEntry(fileInfo{name: name}))
	}
	if n > 0 && len(entries) == 0 {
		return nil, io.EOF
	}
	return entries, nil
}

// fileInfo is a minimal fs.FileInfo. Entries produced by ReadDir only carry
// a name: this filesystem has no permission bits, owners, or mod times to
// report (spec.md §1 Non-goals), so Mode/ModTime are zero values.
type fileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (fi fileInfo) Name() string { return fi.name }
func (fi fileInfo) Size() int64  { return fi.size }
func (fi fileInfo) Mode() fs.FileMode {
	if fi.isDir {
		return fs.ModeDir
	}
	return 0
}
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.isDir }
func (fi fileInfo) Sys() interface{}   { return nil }
