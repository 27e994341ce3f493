package kernfs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"

	"github.com/kernfs/kernfs/backend"
	"github.com/kernfs/kernfs/backend/file"
	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/converter"
	"github.com/kernfs/kernfs/filesystem/internal/testutil"
	"github.com/kernfs/kernfs/kernerr"
)

func testStorage(t *testing.T, sectors uint32) backend.Storage {
	t.Helper()
	dir := t.TempDir()
	outfile := filepath.Join(dir, "kernfs.img")
	f, err := os.Create(outfile)
	if err != nil {
		t.Fatalf("create backing file: %v", err)
	}
	if err := f.Truncate(int64(sectors) * block.SectorSize); err != nil {
		t.Fatalf("truncate backing file: %v", err)
	}
	return file.New(f, false)
}

func TestFormatThenOpenMount(t *testing.T) {
	storage := testStorage(t, 256)
	fs, err := Format(storage, 256, nil)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	volID := fs.VolumeID()
	total := fs.TotalSectors()
	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fs2, err := Open(storage, 256, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs2.Close()

	if fs2.VolumeID() != volID {
		t.Errorf("VolumeID after reopen = %v, want %v", fs2.VolumeID(), volID)
	}
	if fs2.TotalSectors() != total {
		t.Errorf("TotalSectors after reopen = %d, want %d", fs2.TotalSectors(), total)
	}
}

func TestFormatIsIdempotentOnSectorLayout(t *testing.T) {
	// Formatting twice produces byte-identical sector 0 (free map) and
	// sector 1 (root directory) contents, since neither depends on prior
	// volume state — only the randomly generated volume ID differs.
	storage1 := testStorage(t, 64)
	fs1, err := Format(storage1, 64, nil)
	if err != nil {
		t.Fatalf("first Format: %v", err)
	}
	fs1.Close()

	sec0a := readRawSector(t, storage1, 0)
	sec1a := readRawSector(t, storage1, 1)

	storage2 := testStorage(t, 64)
	fs2, err := Format(storage2, 64, nil)
	if err != nil {
		t.Fatalf("second Format: %v", err)
	}
	fs2.Close()

	sec0b := readRawSector(t, storage2, 0)
	sec1b := readRawSector(t, storage2, 1)

	// mask out the 16-byte volume-id region stamped into sector 0's padding
	// before comparing, since that's allowed to differ between formats.
	maskVolumeID(sec0a)
	maskVolumeID(sec0b)

	if diff := deep.Equal(sec0a, sec0b); diff != nil {
		t.Errorf("sector 0 differs between two formats (ignoring volume id): %v", diff)
	}
	if diff := deep.Equal(sec1a, sec1b); diff != nil {
		t.Errorf("sector 1 differs between two formats: %v", diff)
	}
}

func readRawSector(t *testing.T, storage backend.Storage, sector uint32) []byte {
	t.Helper()
	buf := make([]byte, block.SectorSize)
	if _, err := storage.ReadAt(buf, int64(sector)*block.SectorSize); err != nil {
		t.Fatalf("ReadAt sector %d: %v", sector, err)
	}
	return buf
}

func maskVolumeID(buf []byte) {
	// the free-map inode record lays Length, Magic, SelfSector, IsDir,
	// DirCnt, Direct[12], IndirCnt, IndirCurrUsage, Indirect[1], DindirCnt,
	// DindirCurrUsage, DindirLv2CurrUsage, Dindirect[1] ahead of Padding —
	// 24 uint32 fields, 96 bytes in.
	const paddingOffset = 24 * 4
	for i := paddingOffset; i < paddingOffset+16 && i < len(buf); i++ {
		buf[i] = 0
	}
}

func mustFormat(t *testing.T, sectors uint32) *FileSystem {
	t.Helper()
	storage := testStorage(t, sectors)
	fs, err := Format(storage, sectors, nil)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	return fs
}

func TestCreateOpenWriteReadFile(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Create("/greeting.txt", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	h, err := fs.Open("/greeting.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	data := []byte("hello, kernfs")
	if n, err := h.WriteAt(data, 0); err != nil || n != len(data) {
		t.Fatalf("WriteAt: n=%d err=%v", n, err)
	}
	got := make([]byte, len(data))
	if _, err := h.ReadAt(got, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("ReadAt = %q, want %q", got, data)
	}
}

func TestMkdirChdirRelativeCreate(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Chdir("/sub"); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	if err := fs.Create("inside.txt", 0); err != nil {
		t.Fatalf("Create relative to cwd: %v", err)
	}

	h, err := fs.Open("/sub/inside.txt")
	if err != nil {
		t.Fatalf("Open by absolute path: %v", err)
	}
	h.Close()
}

func TestCreateDuplicateNameFails(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Create("/dup.txt", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Create("/dup.txt", 0); err != kernerr.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestOpenMissingFails(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if _, err := fs.Open("/missing.txt"); err != kernerr.ErrNoSuchEntry {
		t.Fatalf("expected ErrNoSuchEntry, got %v", err)
	}
}

func TestRemoveFile(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Create("/temp.txt", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Remove("/temp.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := fs.Open("/temp.txt"); err != kernerr.ErrNoSuchEntry {
		t.Fatalf("expected ErrNoSuchEntry after removal, got %v", err)
	}
}

func TestRemoveNonEmptyDirFails(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Create("/sub/f.txt", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fs.Remove("/sub"); err != kernerr.ErrDirNotEmpty {
		t.Fatalf("expected ErrDirNotEmpty, got %v", err)
	}
}

func TestRemoveDirWhileItIsCwdFails(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Chdir("/sub"); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	if err := fs.Remove("/sub"); err != kernerr.ErrBusy {
		t.Fatalf("expected ErrBusy removing a directory that is the current cwd, got %v", err)
	}
}

func TestOpenDirectoryAndReaddir(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Create("/sub/a.txt", 0); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if err := fs.Create("/sub/b.txt", 0); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	h, err := fs.Open("/sub/")
	if err != nil {
		t.Fatalf("Open directory: %v", err)
	}
	defer h.Close()
	if !h.IsDir() {
		t.Fatal("expected IsDir() true")
	}

	seen := map[string]bool{}
	for {
		name, ok := h.Readdir()
		if !ok {
			break
		}
		seen[name] = true
	}
	if !seen["a.txt"] || !seen["b.txt"] {
		t.Fatalf("Readdir missed entries, saw %v", seen)
	}
}

func TestDirectoryHandleRejectsFileOps(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	h, err := fs.Open("/")
	if err != nil {
		t.Fatalf("Open root: %v", err)
	}
	defer h.Close()

	if _, err := h.ReadAt(make([]byte, 1), 0); err != kernerr.ErrIsADirectory {
		t.Errorf("expected ErrIsADirectory from ReadAt on a directory handle, got %v", err)
	}
	if _, err := h.WriteAt([]byte("x"), 0); err != kernerr.ErrIsADirectory {
		t.Errorf("expected ErrIsADirectory from WriteAt on a directory handle, got %v", err)
	}
}

func TestFileHandleReaddirReturnsNothing(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Create("/plain.txt", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	h, err := fs.Open("/plain.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	if _, ok := h.Readdir(); ok {
		t.Error("expected Readdir on a file handle to report ok=false")
	}
}

func TestConverterFSTreeHasNoCyclesOrDotEntries(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Mkdir("/sub"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Mkdir("/sub/nested"); err != nil {
		t.Fatalf("Mkdir nested: %v", err)
	}
	if err := fs.Create("/sub/a.txt", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rdfs, ok := converter.FS(fs).(iofs.ReadDirFS)
	if !ok {
		t.Fatal("converter.FS does not implement io/fs.ReadDirFS")
	}
	testutil.TestFSTree(t, rdfs)
}

func TestUnsupportedOperationsReturnErrNotSupported(t *testing.T) {
	fs := mustFormat(t, 256)
	defer fs.Close()

	if err := fs.Mknod("/x", 0, 0); err == nil {
		t.Error("expected Mknod to be unsupported")
	}
	if err := fs.Rename("/a", "/b"); err == nil {
		t.Error("expected Rename to be unsupported")
	}
}
