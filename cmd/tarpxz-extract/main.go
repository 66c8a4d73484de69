package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/tarpxz/tarpxz/src/tarpxz"
)

var (
	dictCap    int
	memberName string
	offset     int64
)

func init() {
	flag.IntVar(&dictCap, "d", 8<<20, "LZMA2 dictionary size in bytes, must match the value used to compress")
	flag.StringVar(&memberName, "m", "", "extract only this tar member instead of the whole archive")
	flag.Int64Var(&offset, "offset", -1, "extract starting at this uncompressed tar byte offset instead of the whole archive")
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 || (memberName != "" && offset >= 0) {
		_, _ = fmt.Fprintf(os.Stderr, "%s [-m <member> | -offset <n>] <input.tpxz>\n", path.Base(os.Args[0]))
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: Error opening input: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	if memberName == "" && offset < 0 {
		if err := tarpxz.Decompress(f, dictCap, os.Stdout); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	si, err := tarpxz.OpenStream(f, dictCap)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	ra := tarpxz.NewRandom(f, si)

	if memberName != "" {
		if err := ra.ExtractMember(memberName, os.Stdout); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if offset >= ra.TotalSize() {
		_, _ = fmt.Fprintf(os.Stderr, "%s: offset %d is past the end of the archive (%d bytes)\n", path.Base(os.Args[0]), offset, ra.TotalSize())
		os.Exit(1)
	}
	if _, err := io.Copy(os.Stdout, io.NewSectionReader(ra, offset, ra.TotalSize()-offset)); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	os.Exit(0)
}
