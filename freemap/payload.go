package freemap

import (
	"fmt"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/inode"
)

// readPayload reads the free map's entire bitmap payload back from its
// backing inode's index tree, sector by sector.
func (fm *FreeMap) readPayload() ([]byte, error) {
	length := int64(fm.ino.Disk.Length)
	out := make([]byte, 0, length)
	buf := make([]byte, block.SectorSize)
	for off := int64(0); off < length; off += block.SectorSize {
		sec, err := inode.ByteToSector(fm.dev, &fm.ino.Disk, off)
		if err != nil {
			return nil, fmt.Errorf("freemap: map payload offset %d: %w", off, err)
		}
		if err := fm.dev.ReadSector(sec, buf); err != nil {
			return nil, fmt.Errorf("freemap: read payload sector %d: %w", sec, err)
		}
		n := block.SectorSize
		if remaining := length - off; remaining < int64(n) {
			n = int(remaining)
		}
		out = append(out, buf[:n]...)
	}
	return out, nil
}

// writePayload writes the free map's bitmap payload back through its
// backing inode's existing index tree. The tree itself is never resized
// here — Format sizes it once to fit the device's fixed sector count, and
// the bitmap's encoded length never changes afterward.
func (fm *FreeMap) writePayload(payload []byte) error {
	length := int64(fm.ino.Disk.Length)
	buf := make([]byte, block.SectorSize)
	for off := int64(0); off < length; off += block.SectorSize {
		sec, err := inode.ByteToSector(fm.dev, &fm.ino.Disk, off)
		if err != nil {
			return fmt.Errorf("freemap: map payload offset %d: %w", off, err)
		}
		for i := range buf {
			buf[i] = 0
		}
		end := off + block.SectorSize
		if end > int64(len(payload)) {
			end = int64(len(payload))
		}
		if end > off {
			copy(buf, payload[off:end])
		}
		if err := fm.dev.WriteSector(sec, buf); err != nil {
			return fmt.Errorf("freemap: write payload sector %d: %w", sec, err)
		}
	}
	return nil
}
