// Command fsck walks a kernfs volume's directory tree and reports basic
// consistency information: total files/directories visited, free-map
// occupancy, and the backing image's filesystem timestamps.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/disk"
	"github.com/kernfs/kernfs/filesystem"
	"github.com/kernfs/kernfs/inode"
	"github.com/kernfs/kernfs/util"
)

type counters struct {
	dirs, files int
}

func walk(fsys filesystem.FileSystem, dirPath string, c *counters) error {
	h, err := fsys.Open(dirPath)
	if err != nil {
		return fmt.Errorf("open %q: %w", dirPath, err)
	}
	defer h.Close()

	if !h.IsDir() {
		c.files++
		return nil
	}
	c.dirs++

	for {
		name, ok := h.Readdir()
		if !ok {
			break
		}
		child := path.Join(dirPath, name)
		if err := walk(fsys, child, c); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	imagePath := flag.String("path", "", "path to the image file to check")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *imagePath == "" {
		log.Fatal("fsck: -path is required")
	}

	logger := logrus.StandardLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	d, err := disk.Open(*imagePath)
	if err != nil {
		log.Fatalf("fsck: open %q: %s", *imagePath, err)
	}
	defer d.Close()

	fsys, err := d.Mount(logger)
	if err != nil {
		log.Fatalf("fsck: mount %q: %s", *imagePath, err)
	}
	defer fsys.Close()

	var c counters
	if err := walk(fsys, "/", &c); err != nil {
		var decodeErr *inode.DecodeError
		if errors.As(err, &decodeErr) {
			fmt.Printf("sector %d failed to decode as an inode record:\n", decodeErr.Sector)
			fmt.Print(util.DumpByteSlice(decodeErr.Bytes, 16, true, true, false, nil))
		}
		log.Fatalf("fsck: %s", err)
	}

	fmt.Printf("volume:     %s\n", fsys.VolumeID())
	fmt.Printf("sectors:    %d total, %d free\n", fsys.TotalSectors(), fsys.FreeSectors())
	fmt.Printf("entries:    %d directories, %d files\n", c.dirs, c.files)

	times, err := d.BackingTimes()
	if err == nil {
		fmt.Printf("backing:    modified %s, accessed %s\n", times.ModTime, times.AccessTime)
	}
}
