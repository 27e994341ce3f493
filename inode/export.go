package inode

import "github.com/kernfs/kernfs/block"

// WriteDisk persists d's record to its own sector. Exposed for callers
// (freemap.Format) that need to stamp additional fields (e.g. a volume
// identifier into Padding) onto a record Create already wrote once.
func WriteDisk(dev *block.Device, d *Disk) {
	writeDisk(dev, d)
}

// ReadDisk reads and decodes the inode_disk record at sector.
func ReadDisk(dev *block.Device, sector block.Sector) (*Disk, error) {
	return readDisk(dev, sector)
}
