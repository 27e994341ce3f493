package directory

import (
	"fmt"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/inode"
)

// Create builds a new directory inode at sector, sized to hold entryCap
// entries, and stamps its initial "." (self) and ".." (parent) entries. The
// root directory is created with parent equal to sector itself.
func Create(dev *block.Device, alloc inode.Allocator, sector uint32, entryCap int, parent uint32) (*inode.Disk, error) {
	if entryCap < 2 {
		entryCap = 2
	}
	d, err := inode.Create(dev, alloc, sector, int64(entryCap)*entrySize, true)
	if err != nil {
		return nil, fmt.Errorf("directory: create backing inode: %w", err)
	}
	if err := writeAt(dev, d, 0*entrySize, encodeEntry(Entry{InUse: true, Sector: sector, Name: "."})); err != nil {
		return nil, fmt.Errorf("directory: write '.' entry: %w", err)
	}
	if err := writeAt(dev, d, 1*entrySize, encodeEntry(Entry{InUse: true, Sector: parent, Name: ".."})); err != nil {
		return nil, fmt.Errorf("directory: write '..' entry: %w", err)
	}
	return d, nil
}
