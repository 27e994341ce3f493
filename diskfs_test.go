package diskfs

import (
	"path/filepath"
	"testing"
)

func TestCreateFormatWriteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.img")

	d, err := Create(path, 8*1024*1024)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fsys, err := d.Format(nil)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if err := fsys.Mkdir("/docs"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fsys.Create("/docs/readme", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	f, err := fsys.Open("/docs/readme")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := f.WriteAt([]byte("hello"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	f.Close()
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

	f2, err := fsys2.Open("/docs/readme")
	if err != nil {
		t.Fatalf("Open after reopen: %v", err)
	}
	defer f2.Close()
	got := make([]byte, 5)
	if _, err := f2.ReadAt(got, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("ReadAt = %q, want %q", got, "hello")
	}
}
