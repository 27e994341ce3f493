package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kernfs/kernfs/backend/file"
	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/directory"
	"github.com/kernfs/kernfs/inode"
	"github.com/kernfs/kernfs/kernerr"
)

type bumpAllocator struct {
	next  uint32
	limit uint32
	free  []block.Sector
}

func newBumpAllocator(start, limit uint32) *bumpAllocator {
	return &bumpAllocator{next: start, limit: limit}
}

func (a *bumpAllocator) Allocate(n int) (block.Sector, error) {
	if n != 1 {
		panic("bumpAllocator only supports single-sector allocation")
	}
	if len(a.free) > 0 {
		s := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		return s, nil
	}
	if a.next >= a.limit {
		return 0, kernerr.ErrNoSpace
	}
	s := block.Sector(a.next)
	a.next++
	return s, nil
}

func (a *bumpAllocator) Release(start block.Sector, n int) error {
	if n != 1 {
		panic("bumpAllocator only supports single-sector release")
	}
	a.free = append(a.free, start)
	return nil
}

// testTree builds: root (1) -> "sub" dir (2) -> "leaf.txt" file (3)
//
//	root (1) -> "file.txt" file (4)
func testTree(t *testing.T) (*block.Device, *inode.Table, *Resolver) {
	t.Helper()
	dir := t.TempDir()
	outfile := filepath.Join(dir, "resolver.img")
	f, err := os.Create(outfile)
	if err != nil {
		t.Fatalf("create backing file: %v", err)
	}
	if err := f.Truncate(64 * block.SectorSize); err != nil {
		t.Fatalf("truncate backing file: %v", err)
	}
	storage := file.New(f, false)
	dev, err := block.Open(storage, 64, nil)
	if err != nil {
		t.Fatalf("block.Open: %v", err)
	}
	alloc := newBumpAllocator(10, 64)
	table := inode.NewTable(dev, alloc, nil)

	if _, err := directory.Create(dev, alloc, 1, directory.DefaultEntryCapacity, 1); err != nil {
		t.Fatalf("create root: %v", err)
	}
	if _, err := directory.Create(dev, alloc, 2, directory.DefaultEntryCapacity, 1); err != nil {
		t.Fatalf("create sub: %v", err)
	}
	if _, err := inode.Create(dev, alloc, 3, 0, false); err != nil {
		t.Fatalf("create leaf.txt: %v", err)
	}
	if _, err := inode.Create(dev, alloc, 4, 0, false); err != nil {
		t.Fatalf("create file.txt: %v", err)
	}

	rootIno, err := table.Open(1)
	if err != nil {
		t.Fatalf("open root: %v", err)
	}
	root := directory.Open(dev, alloc, table, rootIno, nil)
	if err := root.Add("sub", 2); err != nil {
		t.Fatalf("root.Add(sub): %v", err)
	}
	if err := root.Add("file.txt", 4); err != nil {
		t.Fatalf("root.Add(file.txt): %v", err)
	}
	root.Close()

	subIno, err := table.Open(2)
	if err != nil {
		t.Fatalf("open sub: %v", err)
	}
	sub := directory.Open(dev, alloc, table, subIno, nil)
	if err := sub.Add("leaf.txt", 3); err != nil {
		t.Fatalf("sub.Add(leaf.txt): %v", err)
	}
	sub.Close()

	res := New(dev, alloc, table, 1, nil)
	return dev, table, res
}

func TestResolveAbsoluteParentOnly(t *testing.T) {
	_, _, res := testTree(t)

	h, err := res.Resolve("/sub/leaf.txt", false, 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer h.Close()
	if h.Inumber() != 2 {
		t.Errorf("expected parent dir sector 2 (sub), got %d", h.Inumber())
	}
	if got := GetFilename("/sub/leaf.txt"); got != "leaf.txt" {
		t.Errorf("GetFilename = %q, want leaf.txt", got)
	}
}

func TestResolveAbsoluteIncludeLast(t *testing.T) {
	_, _, res := testTree(t)

	h, err := res.Resolve("/sub", true, 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer h.Close()
	if h.Inumber() != 2 {
		t.Errorf("expected sub dir sector 2, got %d", h.Inumber())
	}
}

func TestResolveRelativeToCwd(t *testing.T) {
	_, _, res := testTree(t)

	h, err := res.Resolve("leaf.txt", false, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer h.Close()
	if h.Inumber() != 2 {
		t.Errorf("expected cwd sector 2 as parent, got %d", h.Inumber())
	}
}

func TestResolveDotAndDotDot(t *testing.T) {
	_, _, res := testTree(t)

	h, err := res.Resolve("/sub/./../sub", true, 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer h.Close()
	if h.Inumber() != 2 {
		t.Errorf("expected to land back on sub (sector 2) via ./.., got %d", h.Inumber())
	}
}

func TestResolveThroughNonDirectoryFails(t *testing.T) {
	_, _, res := testTree(t)

	if _, err := res.Resolve("/file.txt/whatever", false, 0); err != kernerr.ErrNotADirectory {
		t.Fatalf("expected ErrNotADirectory, got %v", err)
	}
}

func TestResolveMissingComponentFails(t *testing.T) {
	_, _, res := testTree(t)

	if _, err := res.Resolve("/nope/whatever", false, 0); err != kernerr.ErrNoSuchEntry {
		t.Fatalf("expected ErrNoSuchEntry, got %v", err)
	}
}

func TestResolveEmptyPathFails(t *testing.T) {
	_, _, res := testTree(t)

	if _, err := res.Resolve("", false, 0); err != kernerr.ErrInvalidPath {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestResolveRootOnly(t *testing.T) {
	_, _, res := testTree(t)

	h, err := res.Resolve("/", true, 0)
	if err != nil {
		t.Fatalf("Resolve(/): %v", err)
	}
	defer h.Close()
	if h.Inumber() != 1 {
		t.Errorf("expected root sector 1, got %d", h.Inumber())
	}
}

func TestGetFilenameVariants(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"a":          "a",
		"/a":         "a",
		"/a/b":       "b",
		"a/b/c":      "c",
		"/a/b/":      "",
	}
	for in, want := range cases {
		if got := GetFilename(in); got != want {
			t.Errorf("GetFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
