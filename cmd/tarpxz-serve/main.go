package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tarpxz/tarpxz/src/serve"
)

var (
	archiveDir    string
	listenAddress string
	prefix        string
	dictCap       int
)

func init() {
	flag.StringVar(&archiveDir, "i", "/var/snapshots/", "Directory containing .tpxz archives.")
	flag.StringVar(&listenAddress, "l", "127.0.0.1:18124", "IP:Port to listen on.")
	flag.StringVar(&prefix, "p", "/", "Request path.")
	flag.IntVar(&dictCap, "d", 8<<20, "LZMA2 dictionary size in bytes, must match the value used to compress")
}

func main() {
	flag.Parse()
	h := &serve.TarHandler{
		ArchiveDirectory: archiveDir,
		DictCap:          dictCap,
	}
	mux := http.NewServeMux()
	mux.Handle(prefix, http.StripPrefix(prefix, h))
	log.Println("Starting...")
	go func() {
		if err := http.ListenAndServe(listenAddress, mux); err != nil {
			log.Fatalf("Failed to listen: %s", err)
		}
	}()
	log.Println("Running")
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-c
	log.Println("Stop")
}
