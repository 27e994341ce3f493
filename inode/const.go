// Package inode implements the on-disk inode record (C3) and the in-memory
// open-inode table (C4): the multi-level indexed file described in
// SPEC_FULL.md — a fixed 512-byte on-disk record with direct, single-indirect
// and double-indirect block indexing, grown and shrunk by Extend and Free,
// and shared across callers through a refcounted Table.
package inode

import "github.com/kernfs/kernfs/block"

// SectorSize is the fixed size of every sector this package reads or writes,
// equal to block.SectorSize.
const SectorSize = block.SectorSize

// Magic identifies a sector as holding a valid inode_disk record.
const Magic = 0x494E4F44

// DirectCount is the number of direct block pointers held inline in the
// inode record.
const DirectCount = 12

// PointersPerBlock is the number of 32-bit sector pointers that fit in one
// indirect or level-2 block: SectorSize / 4.
const PointersPerBlock = SectorSize / 4

// MaxDataSectors is the largest number of data sectors an inode's index tree
// can address: direct + single-indirect + double-indirect capacity.
const MaxDataSectors = DirectCount + PointersPerBlock + PointersPerBlock*PointersPerBlock

// MaxFileSize is the largest logical length an inode can hold.
const MaxFileSize = int64(MaxDataSectors) * SectorSize

// fixedFieldCount is the number of uint32 fields in the on-disk record ahead
// of the padding: Length, Magic, SelfSector, IsDir, DirCnt, Direct[12],
// IndirCnt, IndirCurrUsage, Indirect[1], DindirCnt, DindirCurrUsage,
// DindirLv2CurrUsage, Dindirect[1].
const fixedFieldCount = 5 + DirectCount + 2 + 1 + 3 + 1

const paddingBytes = SectorSize - fixedFieldCount*4

func sectorsFor(length int64) int64 {
	if length <= 0 {
		return 0
	}
	return (length + SectorSize - 1) / SectorSize
}
