package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/tarpxz/tarpxz/src/ioutilx"
	"github.com/tarpxz/tarpxz/src/tarpxz"
)

var (
	dictCap      int
	encoderCount int
	checkName    string
	debug        bool
)

func init() {
	flag.IntVar(&dictCap, "d", 8<<20, "LZMA2 dictionary size in bytes")
	flag.IntVar(&encoderCount, "j", 0, "number of parallel encoder goroutines (0 = number of CPUs)")
	flag.StringVar(&checkName, "check", "crc32", "integrity check: none, crc32, crc64, sha256")
	flag.BoolVar(&debug, "debug", false, "log a fingerprint line per encoded block")
}

func checkKindByName(name string) (tarpxz.CheckKind, error) {
	switch name {
	case "none":
		return tarpxz.CheckNone, nil
	case "crc32":
		return tarpxz.CheckCRC32, nil
	case "crc64":
		return tarpxz.CheckCRC64, nil
	case "sha256":
		return tarpxz.CheckSHA256, nil
	default:
		return 0, fmt.Errorf("unknown check kind %q", name)
	}
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) > 2 {
		_, _ = fmt.Fprintf(os.Stderr, "%s [flags] [<input.tar>] [<output.tpxz>]\n", path.Base(os.Args[0]))
		os.Exit(1)
	}

	check, err := checkKindByName(checkName)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	if debug {
		tarpxz.DebugLog = log.New(os.Stderr, "", log.LstdFlags)
	}

	in := os.Stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s: Error opening input: %s\n", path.Base(os.Args[0]), err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	out := os.Stdout
	if len(args) > 1 && args[1] != "-" {
		f, err := ioutilx.CreateFile(args[1])
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s: Error opening output: %s\n", path.Base(os.Args[0]), err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	opts := tarpxz.Options{DictCap: dictCap, EncoderCount: encoderCount, Check: check}
	if err := tarpxz.Compress(ctx, opts, in, out); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", path.Base(os.Args[0]), err)
		os.Exit(1)
	}
	os.Exit(0)
}
