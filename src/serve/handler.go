// Package serve exposes compressed tar archives over HTTP with support for
// byte-range requests, adapted from this repository's tarindex-backed
// range handler to serve tarpxz archives instead.
package serve

// https://developer.mozilla.org/en-US/docs/Web/HTTP/Range_requests
// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Range

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/tarpxz/tarpxz/src/tarpxz"
)

const archiveExt = ".tpxz"

// TarHandler serves the tar content of a tarpxz archive named by the
// request path, honoring Range requests against the reconstructed
// (uncompressed) tar bytes.
type TarHandler struct {
	ArchiveDirectory string
	DictCap          int
}

func (h *TarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Handler(w, r)
}

func parseRange(r string) (start, end int64) {
	pos := strings.Index(r, "=")
	if pos < 0 {
		return 0, 0
	}
	r = r[pos+1:]
	pos = strings.Index(r, "-")
	if pos < 0 {
		return 0, 0
	}
	bs, es := r[:pos], r[pos+1:]
	start, _ = strconv.ParseInt(bs, 10, 64)
	end, _ = strconv.ParseInt(es, 10, 64)
	return start, end
}

func archiveName(requestPath string) string {
	base := path.Base(requestPath)
	return strings.TrimSuffix(base, archiveExt)
}

func (h *TarHandler) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Accept-Ranges", "bytes")
	member := r.URL.Query().Get("member")
	startRange, endRange := parseRange(r.Header.Get("Range"))

	name := archiveName(r.URL.Path)
	archivePath := path.Join(h.ArchiveDirectory, name+archiveExt)
	f, err := os.Open(archivePath)
	if err != nil {
		log.Printf("ERROR: archive %s: %s", name, err)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer func() { _ = f.Close() }()

	dictCap := h.DictCap
	si, err := tarpxz.OpenStream(f, dictCap)
	if err != nil {
		log.Printf("ERROR: open %s: %s", name, err)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	ra := tarpxz.NewRandom(f, si)

	w.Header().Add("Content-Type", "application/tar")
	w.Header().Add("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".tar"))

	if member != "" {
		if err := ra.ExtractMember(member, w); err != nil {
			log.Printf("ERROR: extract %s from %s: %s", member, name, err)
			w.WriteHeader(http.StatusNotFound)
		}
		return
	}

	total := ra.TotalSize()
	if startRange == 0 && endRange == 0 {
		w.Header().Add("Content-Length", strconv.FormatInt(total, 10))
		if _, err := copyRange(w, ra, 0, total); err != nil {
			log.Printf("ERROR: write %s: %s", name, err)
		}
		return
	}

	if startRange >= total {
		w.Header().Add("Content-Length", "0")
		w.Header().Add("Content-Range", fmt.Sprintf("bytes */%d", total))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	// The Range header's end is inclusive; from here on endRange is the
	// exclusive end of the served interval.
	if endRange == 0 || endRange >= total {
		endRange = total
	} else {
		endRange++
	}
	w.Header().Add("Content-Length", strconv.FormatInt(endRange-startRange, 10))
	w.Header().Add("Content-Range", fmt.Sprintf("bytes %d-%d/%d", startRange, endRange-1, total))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := copyRange(w, ra, startRange, endRange); err != nil {
		log.Printf("ERROR: write range %s (%d-%d): %s", name, startRange, endRange, err)
	}
}

// copyRange writes ra's uncompressed bytes in [start, end) to w in
// chunkSize-sized pieces, so a range request never requires materializing
// the whole reconstructed tar stream in memory.
func copyRange(w http.ResponseWriter, ra *tarpxz.Random, start, end int64) (int64, error) {
	const chunk = 64 << 10
	buf := make([]byte, chunk)
	var written int64
	for pos := start; pos < end; {
		n := int64(len(buf))
		if pos+n > end {
			n = end - pos
		}
		rn, err := ra.ReadAt(buf[:n], pos)
		if rn > 0 {
			wn, werr := w.Write(buf[:rn])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			pos += int64(rn)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return written, err
		}
	}
	return written, nil
}
