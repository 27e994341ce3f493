// Command fsarchive produces (or restores) a high-ratio XZ archive of a
// kernfs device image, for long-term storage of submitted course images.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/ulikunitz/xz"
)

func main() {
	mode := flag.String("mode", "archive", "archive (compress) or restore (decompress)")
	src := flag.String("path", "", "source file")
	dst := flag.String("out", "", "destination file")
	flag.Parse()

	if *src == "" || *dst == "" {
		log.Fatal("fsarchive: -path and -out are required")
	}

	switch *mode {
	case "archive":
		archive(*src, *dst)
	case "restore":
		restore(*src, *dst)
	default:
		log.Fatalf("fsarchive: unknown -mode %q", *mode)
	}
}

func archive(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		log.Fatalf("fsarchive: open %q: %s", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		log.Fatalf("fsarchive: create %q: %s", dst, err)
	}
	defer out.Close()

	w, err := xz.NewWriter(out)
	if err != nil {
		log.Fatalf("fsarchive: new xz writer: %s", err)
	}

	n, err := io.Copy(w, in)
	if err != nil {
		log.Fatalf("fsarchive: compress %q: %s", src, err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("fsarchive: flush %q: %s", dst, err)
	}

	log.Printf("archived %d bytes of %q to %q", n, src, dst)
}

func restore(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		log.Fatalf("fsarchive: open %q: %s", src, err)
	}
	defer in.Close()

	r, err := xz.NewReader(in)
	if err != nil {
		log.Fatalf("fsarchive: new xz reader: %s", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		log.Fatalf("fsarchive: create %q: %s", dst, err)
	}
	defer out.Close()

	n, err := io.Copy(out, r)
	if err != nil {
		log.Fatalf("fsarchive: decompress %q: %s", src, err)
	}

	log.Printf("restored %d bytes from %q to %q", n, src, dst)
}
