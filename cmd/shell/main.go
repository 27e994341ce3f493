// Command shell is an interactive create/open/mkdir/cd/ls demo over a
// kernfs volume, for exercising the filesystem core by hand.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/disk"
	"github.com/kernfs/kernfs/filesystem"
)

func main() {
	path := flag.String("path", "", "path to an existing, formatted image")
	flag.Parse()

	if *path == "" {
		log.Fatal("shell: -path is required")
	}

	d, err := disk.Open(*path)
	if err != nil {
		log.Fatalf("shell: open %q: %s", *path, err)
	}
	defer d.Close()

	fsys, err := d.Mount(logrus.StandardLogger())
	if err != nil {
		log.Fatalf("shell: mount %q: %s", *path, err)
	}
	defer fsys.Close()

	fmt.Println("kernfs shell — commands: ls, cd, mkdir, create, cat, write, rm, quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("kernfs> ")
		if !scanner.Scan() {
			break
		}
		dispatch(fsys, strings.Fields(scanner.Text()))
	}
}

func dispatch(fsys filesystem.FileSystem, args []string) {
	if len(args) == 0 {
		return
	}
	var err error
	switch args[0] {
	case "quit", "exit":
		os.Exit(0)
	case "ls":
		err = cmdLs(fsys, arg(args, 1, "."))
	case "cd":
		err = fsys.Chdir(arg(args, 1, "/"))
	case "mkdir":
		err = cmdMkdir(fsys, args)
	case "create":
		err = cmdCreate(fsys, args)
	case "cat":
		err = cmdCat(fsys, args)
	case "write":
		err = cmdWrite(fsys, args)
	case "rm":
		err = cmdRm(fsys, args)
	default:
		fmt.Printf("unknown command %q\n", args[0])
		return
	}
	if err != nil {
		fmt.Println("error:", err)
	}
}

func arg(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

func cmdLs(fsys filesystem.FileSystem, target string) error {
	h, err := fsys.Open(target)
	if err != nil {
		return err
	}
	defer h.Close()
	if !h.IsDir() {
		fmt.Println(target)
		return nil
	}
	for {
		name, ok := h.Readdir()
		if !ok {
			break
		}
		fmt.Println(name)
	}
	return nil
}

func cmdMkdir(fsys filesystem.FileSystem, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: mkdir <path>")
	}
	return fsys.Mkdir(args[1])
}

func cmdCreate(fsys filesystem.FileSystem, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: create <path> [size]")
	}
	var size int64
	if len(args) > 2 {
		s, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return err
		}
		size = s
	}
	return fsys.Create(args[1], size)
}

func cmdCat(fsys filesystem.FileSystem, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: cat <path>")
	}
	h, err := fsys.Open(args[1])
	if err != nil {
		return err
	}
	defer h.Close()
	buf := make([]byte, h.Length())
	if _, err := h.ReadAt(buf, 0); err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func cmdWrite(fsys filesystem.FileSystem, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: write <path> <text>")
	}
	h, err := fsys.Open(args[1])
	if err != nil {
		return err
	}
	defer h.Close()
	text := strings.Join(args[2:], " ")
	_, err = h.WriteAt([]byte(text), 0)
	return err
}

func cmdRm(fsys filesystem.FileSystem, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: rm <path>")
	}
	return fsys.Remove(args[1])
}
