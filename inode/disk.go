package inode

import (
	"encoding/binary"
	"fmt"

	"github.com/kernfs/kernfs/kernerr"
)

// Disk is the in-memory image of one inode_disk record: exactly SectorSize
// bytes on disk, little-endian 32-bit fields throughout. The three
// *CurrUsage fields are a resume cursor for a partially completed Extend,
// and Free walks the same tree in reverse using them — they are never
// collapsed into a single derived value.
type Disk struct {
	Length             uint32
	SelfSector         uint32
	IsDir              bool
	DirCnt             uint32
	Direct             [DirectCount]uint32
	IndirCnt           uint32
	IndirCurrUsage     uint32
	Indirect           [1]uint32
	DindirCnt          uint32
	DindirCurrUsage    uint32
	DindirLv2CurrUsage uint32
	Dindirect          [1]uint32
	// Padding fills the record out to exactly SectorSize bytes. Ordinary
	// inodes leave it zero; the free-map inode stamps a volume identifier
	// into its first bytes (see freemap.Format).
	Padding [paddingBytes]byte
}

// New builds a fresh, empty (zero-length, zero-sector) inode_disk record for
// selfSector. Extend must be called to grow it to its initial length.
func New(selfSector uint32, isDir bool) *Disk {
	return &Disk{SelfSector: selfSector, IsDir: isDir}
}

// Marshal encodes d as exactly SectorSize bytes.
func (d *Disk) Marshal() []byte {
	buf := make([]byte, SectorSize)
	w := buf
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(w[:4], v)
		w = w[4:]
	}
	put(d.Length)
	put(Magic)
	put(d.SelfSector)
	put(boolToU32(d.IsDir))
	put(d.DirCnt)
	for _, s := range d.Direct {
		put(s)
	}
	put(d.IndirCnt)
	put(d.IndirCurrUsage)
	put(d.Indirect[0])
	put(d.DindirCnt)
	put(d.DindirCurrUsage)
	put(d.DindirLv2CurrUsage)
	put(d.Dindirect[0])
	copy(w, d.Padding[:])
	return buf
}

// Unmarshal decodes buf (must be exactly SectorSize bytes) into a fresh Disk.
// It returns kernerr.ErrBadMagic if the magic field doesn't match.
func Unmarshal(buf []byte) (*Disk, error) {
	if len(buf) != SectorSize {
		return nil, fmt.Errorf("inode: decode buffer must be exactly %d bytes, got %d", SectorSize, len(buf))
	}
	r := buf
	get := func() uint32 {
		v := binary.LittleEndian.Uint32(r[:4])
		r = r[4:]
		return v
	}
	d := &Disk{}
	d.Length = get()
	magic := get()
	if magic != Magic {
		return nil, kernerr.ErrBadMagic
	}
	d.SelfSector = get()
	d.IsDir = get() != 0
	d.DirCnt = get()
	for i := range d.Direct {
		d.Direct[i] = get()
	}
	d.IndirCnt = get()
	d.IndirCurrUsage = get()
	d.Indirect[0] = get()
	d.DindirCnt = get()
	d.DindirCurrUsage = get()
	d.DindirLv2CurrUsage = get()
	d.Dindirect[0] = get()
	copy(d.Padding[:], r)
	return d, nil
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
