package tarpxz

import (
	"fmt"
	"io"
	"sort"
)

// Random provides random access to individual tar members of a stream
// opened with OpenStream, decoding only the block(s) that overlap the
// requested range instead of the whole stream.
type Random struct {
	r   io.ReadSeeker
	si  *StreamInfo
	off []int64 // dataBlockOffsets, one per data block (file-index block excluded)

	// cumulative[i] is the uncompressed byte offset the i-th data block
	// starts at within the reconstructed tar stream.
	cumulative []int64
}

// NewRandom builds a Random reader from a stream previously opened with
// OpenStream.
func NewRandom(r io.ReadSeeker, si *StreamInfo) *Random {
	off := si.dataBlockOffsets()
	dataEntries := si.Index.entries[:len(si.Index.entries)-1]
	off = off[:len(dataEntries)]

	cumulative := make([]int64, len(dataEntries)+1)
	for i, e := range dataEntries {
		cumulative[i+1] = cumulative[i] + e.uncompressedSize
	}

	return &Random{r: r, si: si, off: off, cumulative: cumulative}
}

// TotalSize returns the total number of uncompressed tar bytes reachable
// through ReadAt, i.e. the length of the reconstructed tar stream (the
// file-index block itself is not included).
func (ra *Random) TotalSize() int64 {
	return ra.cumulative[len(ra.cumulative)-1]
}

// blockFor returns the index of the data block containing uncompressed
// offset pos, or -1 if pos is past the end of the stream.
func (ra *Random) blockFor(pos int64) int {
	i := sort.Search(len(ra.cumulative)-1, func(i int) bool {
		return ra.cumulative[i+1] > pos
	})
	if i >= len(ra.cumulative)-1 {
		return -1
	}
	return i
}

// ReadAt decodes whichever block(s) overlap [off, off+len(p)) and copies
// the requested bytes into p, in the style of io.ReaderAt. It satisfies
// io.ReaderAt.
func (ra *Random) ReadAt(p []byte, off int64) (int, error) {
	total := ra.cumulative[len(ra.cumulative)-1]
	if off < 0 || off >= total {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		pos := off + int64(n)
		if pos >= total {
			return n, io.EOF
		}
		bi := ra.blockFor(pos)
		if bi < 0 {
			return n, io.EOF
		}
		block, err := ra.decodeDataBlock(bi)
		if err != nil {
			return n, err
		}
		blockStart := ra.cumulative[bi]
		within := int(pos - blockStart)
		copied := copy(p[n:], block[within:])
		n += copied
	}
	return n, nil
}

// decodeDataBlock reads and decodes data block i from disk.
func (ra *Random) decodeDataBlock(i int) ([]byte, error) {
	e := ra.si.Index.entries[i]
	if _, err := ra.r.Seek(ra.off[i], io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek block %d: %w", i, err)
	}
	raw := make([]byte, e.unpaddedSize)
	if _, err := io.ReadFull(ra.r, raw); err != nil {
		return nil, fmt.Errorf("read block %d: %w", i, err)
	}
	return decodeOneBlock(ra.si.DictCap, ra.si.Check, raw, e.uncompressedSize)
}

// Member locates name in the file index and returns the uncompressed byte
// range [start, end) of the tar member's own bytes (header plus content),
// per the offsets the file index records. It returns an error if name is
// not present.
func (ra *Random) Member(name string) (start, end int64, err error) {
	entries := ra.si.FileIndex
	for i, e := range entries {
		if e.isEnd || e.Name != name {
			continue
		}
		start = e.Offset
		end = ra.cumulative[len(ra.cumulative)-1]
		for _, next := range entries[i+1:] {
			end = next.Offset
			break
		}
		return start, end, nil
	}
	return 0, 0, fmt.Errorf("member %q not found in file index", name)
}

// ExtractMember writes the raw uncompressed bytes of the named tar member
// (its header plus its content, as archive/tar would emit it) to w.
func (ra *Random) ExtractMember(name string, w io.Writer) error {
	start, end, err := ra.Member(name)
	if err != nil {
		return err
	}
	buf := make([]byte, chunkSize)
	pos := start
	for pos < end {
		n := int64(len(buf))
		if pos+n > end {
			n = end - pos
		}
		rn, err := ra.ReadAt(buf[:n], pos)
		if rn > 0 {
			if _, werr := w.Write(buf[:rn]); werr != nil {
				return werr
			}
			pos += int64(rn)
		}
		if err != nil && err != io.EOF {
			return err
		}
		if rn == 0 && err == io.EOF {
			break
		}
	}
	return nil
}
