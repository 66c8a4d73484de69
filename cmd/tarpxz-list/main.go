package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/tarpxz/tarpxz/src/tarpxz"
)

var (
	dictCap    int
	blocksOnly bool
)

func init() {
	flag.IntVar(&dictCap, "d", 8<<20, "LZMA2 dictionary size in bytes, must match the value used to compress")
	flag.BoolVar(&blocksOnly, "t", false, "list block sizes only, without the file index")
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		_, _ = fmt.Fprintf(os.Stderr, "%s [-t] <input.tpxz>\n", path.Base(os.Args[0]))
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: Error opening input: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	if err := tarpxz.List(f, dictCap, os.Stdout, tarpxz.ListOptions{BlocksOnly: blocksOnly}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	os.Exit(0)
}
