package block

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"

	"github.com/kernfs/kernfs/backend"
	"github.com/kernfs/kernfs/backend/file"
)

func testBackingFile(t *testing.T, size int64) backend.Storage {
	t.Helper()
	dir := t.TempDir()
	outfile := filepath.Join(dir, "disk.img")
	f, err := os.Create(outfile)
	if err != nil {
		t.Fatalf("create backing file: %v", err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate backing file: %v", err)
	}
	return file.New(f, false)
}

func TestOpenRejectsNilOrEmpty(t *testing.T) {
	storage := testBackingFile(t, 10*SectorSize)
	if _, err := Open(nil, 10, nil); err == nil {
		t.Fatal("expected error for nil storage")
	}
	if _, err := Open(storage, 0, nil); err == nil {
		t.Fatal("expected error for zero sector count")
	}
}

func TestReadWriteSectorRoundTrip(t *testing.T) {
	storage := testBackingFile(t, 10*SectorSize)
	dev, err := Open(storage, 10, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	want := bytes.Repeat([]byte{0xAB}, SectorSize)
	if err := dev.WriteSector(3, want); err != nil {
		t.Fatalf("WriteSector: %v", err)
	}

	got := make([]byte, SectorSize)
	if err := dev.ReadSector(3, got); err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	if diff := deep.Equal(want, got); diff != nil {
		t.Errorf("round-trip mismatch: %v", diff)
	}
}

func TestReadSectorUnwrittenReadsZero(t *testing.T) {
	storage := testBackingFile(t, 4*SectorSize)
	dev, err := Open(storage, 4, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	got := make([]byte, SectorSize)
	for i := range got {
		got[i] = 0xFF
	}
	if err := dev.ReadSector(2, got); err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	want := make([]byte, SectorSize)
	if diff := deep.Equal(want, got); diff != nil {
		t.Errorf("unwritten sector should read as zero: %v", diff)
	}
}

func TestReadWriteSectorBadBufferSize(t *testing.T) {
	storage := testBackingFile(t, 4*SectorSize)
	dev, err := Open(storage, 4, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	if err := dev.ReadSector(0, make([]byte, SectorSize-1)); err == nil {
		t.Error("expected error reading with undersized buffer")
	}
	if err := dev.WriteSector(0, make([]byte, SectorSize+1)); err == nil {
		t.Error("expected error writing with oversized buffer")
	}
}

func TestReadWriteSectorOutOfRange(t *testing.T) {
	storage := testBackingFile(t, 4*SectorSize)
	dev, err := Open(storage, 4, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	buf := make([]byte, SectorSize)
	if err := dev.ReadSector(4, buf); err == nil {
		t.Error("expected out-of-range error reading sector 4 of a 4-sector device")
	}
	if err := dev.WriteSector(100, buf); err == nil {
		t.Error("expected out-of-range error writing sector 100 of a 4-sector device")
	}
}

func TestMagicTagAndCheck(t *testing.T) {
	storage := testBackingFile(t, 4*SectorSize)
	dev, err := Open(storage, 4, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	ok, err := dev.CheckMagic()
	if err != nil {
		t.Fatalf("CheckMagic before tag: %v", err)
	}
	if ok {
		t.Error("magic should not be present before TagMagic")
	}

	if err := dev.TagMagic(); err != nil {
		t.Fatalf("TagMagic: %v", err)
	}

	// CheckMagic degrades to (false, nil) on filesystems without xattr
	// support, so only an error fails here; the result itself is logged.
	ok, err = dev.CheckMagic()
	if err != nil {
		t.Fatalf("CheckMagic after tag: %v", err)
	}
	t.Logf("magic present after tag: %v", ok)
}

func TestLockUnlock(t *testing.T) {
	storage := testBackingFile(t, 4*SectorSize)
	dev, err := Open(storage, 4, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	if err := dev.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := dev.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestGeometryFailsOnRegularFile(t *testing.T) {
	storage := testBackingFile(t, 4*SectorSize)
	dev, err := Open(storage, 4, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	// A regular file has no kernel-reported sector geometry, only a real
	// block device does.
	if _, _, err := dev.Geometry(); err == nil {
		t.Error("expected Geometry to fail against a regular file backing store")
	}
}

func TestBackingTimes(t *testing.T) {
	storage := testBackingFile(t, 4*SectorSize)
	dev, err := Open(storage, 4, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	bt, err := dev.BackingTimes()
	if err != nil {
		t.Fatalf("BackingTimes: %v", err)
	}
	if bt.ModTime.IsZero() {
		t.Error("expected non-zero ModTime")
	}
}
