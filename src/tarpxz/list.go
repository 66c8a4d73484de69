package tarpxz

import (
	"fmt"
	"io"
)

// ListOptions controls List's output.
type ListOptions struct {
	// BlocksOnly suppresses the file index dump, printing only the block
	// sizes. This is the "-t" behavior of the original lister.
	BlocksOnly bool
}

// List prints one line per data block as "<unpadded_size> / <uncompressed_size>",
// in write order, followed by a blank line and the file index (offset and
// name of every tar member), unless opts.BlocksOnly is set. The file-index
// block itself is never listed as a data block.
func List(r io.ReadSeeker, dictCap int, w io.Writer, opts ListOptions) error {
	si, err := OpenStream(r, dictCap)
	if err != nil {
		return err
	}

	dataEntries := si.Index.entries[:len(si.Index.entries)-1]
	for _, e := range dataEntries {
		if _, err := fmt.Fprintf(w, "%9d / %9d\n", e.unpaddedSize, e.uncompressedSize); err != nil {
			return err
		}
	}

	if opts.BlocksOnly {
		return nil
	}
	if len(si.FileIndex) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return dumpFileIndex(w, si.FileIndex)
}

// dumpFileIndex prints one "<offset>\t<name>" line per entry, in on-disk
// order, and a final line for the terminating sentinel.
func dumpFileIndex(w io.Writer, entries []fileIndexEntry) error {
	for _, e := range entries {
		name := e.Name
		if e.isEnd {
			name = "(end)"
		}
		if _, err := fmt.Fprintf(w, "%9d\t%s\n", e.Offset, name); err != nil {
			return err
		}
	}
	return nil
}
