package disk

import (
	"path/filepath"
	"testing"

	"github.com/kernfs/kernfs/block"
)

func TestCreateFormatMount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.img")
	d, err := Create(path, 256*block.SectorSize)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if d.Type != DeviceTypeFile {
		t.Errorf("expected DeviceTypeFile for a regular file, got %v", d.Type)
	}
	if d.SectorCount() != 256 {
		t.Errorf("SectorCount() = %d, want 256", d.SectorCount())
	}

	fsys, err := d.Format(nil)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if err := fsys.Create("/a.txt", 0); err != nil {
		t.Fatalf("Create file on fresh volume: %v", err)
	}
	fsys.Close()
	d.Close()

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d2.Close()

	fsys2, err := d2.Mount(nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys2.Close()

	h, err := fsys2.Open("/a.txt")
	if err != nil {
		t.Fatalf("Open /a.txt after remount: %v", err)
	}
	h.Close()
}

func TestCreateRejectsZeroSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.img")
	if _, err := Create(path, 0); err == nil {
		t.Fatal("expected error creating a zero-size disk")
	}
}

func TestOpenMissingFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.img")
	if _, err := Open(path); err == nil {
		t.Fatal("expected error opening a nonexistent disk image")
	}
}

func TestBackingTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "times.img")
	d, err := Create(path, 64*block.SectorSize)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer d.Close()

	bt, err := d.BackingTimes()
	if err != nil {
		t.Fatalf("BackingTimes: %v", err)
	}
	if bt.ModTime.IsZero() {
		t.Error("expected non-zero ModTime")
	}
}
