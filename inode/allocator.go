package inode

import "github.com/kernfs/kernfs/block"

// Allocator is the free-map's allocation contract, as consumed by Extend and
// Free. It is declared here rather than imported from the freemap package so
// that inode never depends on freemap — freemap depends on inode instead, to
// persist its own bitmap as an ordinary inode-backed file.
type Allocator interface {
	// Allocate reserves n contiguous, previously-free sectors and returns
	// the first. It returns kernerr.ErrNoSpace (wrapped or bare, checked
	// with errors.Is) when no such run exists.
	Allocate(n int) (block.Sector, error)
	// Release returns n sectors starting at start to the free pool.
	Release(start block.Sector, n int) error
}
