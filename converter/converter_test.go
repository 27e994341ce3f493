package converter

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/kernfs/kernfs/backend/file"
	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/filesystem/kernfs"
)

func testVolume(t *testing.T) *kernfs.FileSystem {
	t.Helper()
	dir := t.TempDir()
	outfile := filepath.Join(dir, "converter.img")
	f, err := os.Create(outfile)
	if err != nil {
		t.Fatalf("create backing file: %v", err)
	}
	if err := f.Truncate(256 * block.SectorSize); err != nil {
		t.Fatalf("truncate backing file: %v", err)
	}
	storage := file.New(f, false)
	fsys, err := kernfs.Format(storage, 256, nil)
	if err != nil {
		t.Fatalf("kernfs.Format: %v", err)
	}
	return fsys
}

func TestFSOpenAndRead(t *testing.T) {
	kfs := testVolume(t)
	defer kfs.Close()

	if err := kfs.Create("/hello.txt", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	h, err := kfs.Open("/hello.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := []byte("hello via io/fs")
	if _, err := h.WriteAt(want, 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	h.Close()

	fsys := FS(kfs)
	f, err := fsys.Open("hello.txt")
	if err != nil {
		t.Fatalf("fs.FS Open: %v", err)
	}
	defer f.Close()

	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("ReadAll = %q, want %q", got, want)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len(want)) {
		t.Errorf("Stat().Size() = %d, want %d", info.Size(), len(want))
	}
	if info.IsDir() {
		t.Error("expected IsDir() false for a regular file")
	}
}

func TestFSReadDir(t *testing.T) {
	kfs := testVolume(t)
	defer kfs.Close()

	if err := kfs.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := kfs.Create("/sub/a.txt", 0); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if err := kfs.Create("/sub/b.txt", 0); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	fsys := FS(kfs)
	entries, err := fs.ReadDir(fsys, "sub")
	if err != nil {
		t.Fatalf("fs.ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	if !names["a.txt"] || !names["b.txt"] {
		t.Errorf("unexpected entries: %v", names)
	}
}

func TestFSOpenMissingReturnsPathError(t *testing.T) {
	kfs := testVolume(t)
	defer kfs.Close()

	fsys := FS(kfs)
	_, err := fsys.Open("nope.txt")
	if err == nil {
		t.Fatal("expected error opening a missing path")
	}
	var pe *fs.PathError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *fs.PathError, got %T: %v", err, err)
	}
}
