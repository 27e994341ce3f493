// Command fsdump streams a fast block-level LZ4 snapshot of a kernfs device
// image, for quick local snapshots during courseware iteration.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/pierrec/lz4"
)

func main() {
	src := flag.String("path", "", "path to the source image")
	dst := flag.String("out", "", "path to write the LZ4 snapshot to")
	flag.Parse()

	if *src == "" || *dst == "" {
		log.Fatal("fsdump: -path and -out are required")
	}

	in, err := os.Open(*src)
	if err != nil {
		log.Fatalf("fsdump: open %q: %s", *src, err)
	}
	defer in.Close()

	out, err := os.Create(*dst)
	if err != nil {
		log.Fatalf("fsdump: create %q: %s", *dst, err)
	}
	defer out.Close()

	w := lz4.NewWriter(out)
	defer w.Close()

	n, err := io.Copy(w, in)
	if err != nil {
		log.Fatalf("fsdump: compress %q: %s", *src, err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("fsdump: flush %q: %s", *dst, err)
	}

	log.Printf("wrote %d bytes of %q compressed to %q", n, *src, *dst)
}
