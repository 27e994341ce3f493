package inode

import (
	"encoding/binary"
	"fmt"

	"github.com/kernfs/kernfs/block"
)

// ptrBlock is the in-memory image of one indirect or level-2 block: a flat
// array of PointersPerBlock sector numbers, encoded little-endian.
type ptrBlock [PointersPerBlock]uint32

func decodePtrBlock(buf []byte) (ptrBlock, error) {
	if len(buf) != SectorSize {
		return ptrBlock{}, fmt.Errorf("inode: pointer block buffer must be %d bytes, got %d", SectorSize, len(buf))
	}
	var blk ptrBlock
	for i := range blk {
		blk[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	return blk, nil
}

func (p *ptrBlock) encode() []byte {
	buf := make([]byte, SectorSize)
	for i, v := range p {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], v)
	}
	return buf
}

// readPtrBlock reads sector as a pointer block. Device I/O failure is
// treated as an unrecoverable error in this design and panics, mirroring the
// IoError/ASSERT discipline of the system this package implements.
func readPtrBlock(dev *block.Device, sector block.Sector) ptrBlock {
	buf := make([]byte, SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		panic(fmt.Errorf("inode: read pointer block at sector %d: %w", sector, err))
	}
	blk, err := decodePtrBlock(buf)
	if err != nil {
		panic(err)
	}
	return blk
}

func writePtrBlock(dev *block.Device, sector block.Sector, blk ptrBlock) {
	if err := dev.WriteSector(sector, blk.encode()); err != nil {
		panic(fmt.Errorf("inode: write pointer block at sector %d: %w", sector, err))
	}
}

// zeroSector writes a sector's worth of zero bytes to sector, used when a
// fresh data or index sector is allocated.
func zeroSector(dev *block.Device, sector block.Sector) {
	buf := make([]byte, SectorSize)
	if err := dev.WriteSector(sector, buf); err != nil {
		panic(fmt.Errorf("inode: zero sector %d: %w", sector, err))
	}
}

// writeDisk marshals and writes d's record to its own sector.
func writeDisk(dev *block.Device, d *Disk) {
	if err := dev.WriteSector(block.Sector(d.SelfSector), d.Marshal()); err != nil {
		panic(fmt.Errorf("inode: write inode record at sector %d: %w", d.SelfSector, err))
	}
}

// DecodeError reports that the sector read from disk did not decode to a
// valid inode_disk record, carrying the raw bytes so a diagnostic tool like
// cmd/fsck can dump them for inspection rather than just printing the
// sentinel error text.
type DecodeError struct {
	Sector block.Sector
	Bytes  []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("inode: decode inode record at sector %d: %s", e.Sector, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// readDisk reads and decodes the inode_disk record at sector.
func readDisk(dev *block.Device, sector block.Sector) (*Disk, error) {
	buf := make([]byte, SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return nil, fmt.Errorf("inode: read inode record at sector %d: %w", sector, err)
	}
	d, err := Unmarshal(buf)
	if err != nil {
		return nil, &DecodeError{Sector: sector, Bytes: buf, Err: err}
	}
	return d, nil
}
