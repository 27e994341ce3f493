package freemap

import (
	"github.com/kernfs/kernfs/util/bitmap"
)

// bitmapView adapts util/bitmap.Bitmap (which has no notion of "how many
// bits actually matter") to the free map's fixed sector count, and adds the
// one query the allocator needs that the raw bitmap doesn't expose directly:
// the first run of n consecutive free bits.
type bitmapView struct {
	bm    *bitmap.Bitmap
	count uint32
}

func newBitmapView(count uint32) *bitmapView {
	return &bitmapView{bm: bitmap.NewBits(int(count)), count: count}
}

func bitmapViewFromBytes(count uint32, b []byte) *bitmapView {
	return &bitmapView{bm: bitmap.FromBytes(b), count: count}
}

func (v *bitmapView) bytes() []byte {
	return v.bm.ToBytes()
}

func (v *bitmapView) markUsed(sector uint32) {
	_ = v.bm.Set(int(sector))
}

func (v *bitmapView) markFree(sector uint32) {
	_ = v.bm.Clear(int(sector))
}

// freeCount sums every free run's length, clipped to the device's real
// sector count, for diagnostic reporting (see FreeMap.FreeSectors).
func (v *bitmapView) freeCount() uint32 {
	var total uint32
	for _, run := range v.bm.FreeList() {
		if run.Position >= int(v.count) {
			continue
		}
		count := run.Count
		if run.Position+count > int(v.count) {
			count = int(v.count) - run.Position
		}
		total += uint32(count)
	}
	return total
}

// firstFreeRun returns the position of the first run of n consecutive free
// sectors, scanning FreeList's contiguous runs in position order.
func (v *bitmapView) firstFreeRun(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	for _, run := range v.bm.FreeList() {
		if run.Position >= int(v.count) {
			// the bitmap is sized in whole bytes and may report a trailing
			// free run past the device's real sector count; those bits
			// don't correspond to any real sector.
			continue
		}
		if run.Position+run.Count > int(v.count) {
			run.Count = int(v.count) - run.Position
		}
		if run.Count >= n {
			return run.Position, true
		}
	}
	return 0, false
}
