// Package resolver implements the path resolver (C7): it turns a textual
// path, absolute or cwd-relative, into an open directory handle plus the
// final path component, walking the directory tree iteratively so that a
// cyclic "." / ".." graph can never cause recursion.
package resolver

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/directory"
	"github.com/kernfs/kernfs/inode"
	"github.com/kernfs/kernfs/kernerr"
)

// Resolver holds the plumbing needed to open directory handles: the device,
// allocator and inode table shared by the whole filesystem, plus the root
// directory's sector.
type Resolver struct {
	dev        *block.Device
	alloc      inode.Allocator
	table      *inode.Table
	rootSector uint32
	log        *logrus.Entry
}

// New builds a Resolver over the given device/allocator/table, rooted at
// rootSector.
func New(dev *block.Device, alloc inode.Allocator, table *inode.Table, rootSector uint32, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{
		dev:        dev,
		alloc:      alloc,
		table:      table,
		rootSector: rootSector,
		log:        log.WithField("component", "resolver"),
	}
}

func (r *Resolver) openDir(sector uint32) (*directory.Handle, error) {
	ino, err := r.table.Open(sector)
	if err != nil {
		return nil, err
	}
	return directory.Open(r.dev, r.alloc, r.table, ino, nil), nil
}

// OpenRoot opens a fresh handle on the root directory.
func (r *Resolver) OpenRoot() (*directory.Handle, error) {
	return r.openDir(r.rootSector)
}

// Resolve walks path, returning an open handle on the directory it names.
// If includeLast is false (the default for create/open/remove/mkdir, which
// resolve the *parent*), the final token is left unconsumed by the walk and
// is returned separately by GetFilename. If includeLast is true (chdir), the
// final token is followed too and the returned handle is the directory the
// whole path names.
//
// cwd is the caller's current working directory's sector, or 0 to mean "no
// cwd yet — use root" for relative paths.
func (r *Resolver) Resolve(path string, includeLast bool, cwd uint32) (*directory.Handle, error) {
	if path == "" {
		return nil, kernerr.ErrInvalidPath
	}

	var cur *directory.Handle
	var err error
	if strings.HasPrefix(path, "/") {
		cur, err = r.OpenRoot()
		path = strings.TrimPrefix(path, "/")
	} else if cwd != 0 {
		cur, err = r.openDir(cwd)
	} else {
		cur, err = r.OpenRoot()
	}
	if err != nil {
		return nil, err
	}

	tokens := splitTokens(path)
	for i, token := range tokens {
		isLast := i == len(tokens)-1
		if isLast && !includeLast {
			break
		}
		next, err := r.step(cur, token)
		if err != nil {
			return nil, err
		}
		cur = next
	}

	if cur.Inode().Removed {
		cur.Close()
		return nil, kernerr.ErrRemoved
	}
	return cur, nil
}

// step consumes one path token against the currently open directory cur,
// closing cur and returning the next directory handle to hold, or an error
// with cur already closed.
func (r *Resolver) step(cur *directory.Handle, token string) (*directory.Handle, error) {
	switch token {
	case ".":
		return cur, nil
	case "..":
		parent, err := cur.GetParent()
		if err != nil {
			cur.Close()
			return nil, err
		}
		cur.Close()
		return r.openDir(parent)
	default:
		sector, err := cur.Lookup(token)
		if err != nil {
			cur.Close()
			return nil, err
		}
		ino, err := r.table.Open(sector)
		if err != nil {
			cur.Close()
			return nil, err
		}
		if !ino.Disk.IsDir {
			r.table.Close(ino)
			cur.Close()
			return nil, kernerr.ErrNotADirectory
		}
		cur.Close()
		return directory.Open(r.dev, r.alloc, r.table, ino, nil), nil
	}
}

func splitTokens(path string) []string {
	var out []string
	for _, tok := range strings.Split(path, "/") {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// GetFilename returns everything in path after the last "/" (or the whole
// path if there is none); empty if path ends with "/".
func GetFilename(path string) string {
	if path == "" {
		return ""
	}
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
