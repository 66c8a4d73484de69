package tarpxz

import (
	"bytes"
	"encoding/binary"
	"path"
	"strings"
)

// fileIndexEntry is one node of the singly-linked file index built by the
// reader as it walks tar members. An entry with isEnd set (and an empty
// Name) is the terminating sentinel, whose Offset equals the total number
// of uncompressed bytes read from the input.
type fileIndexEntry struct {
	Offset int64
	Name   string
	isEnd  bool
	next   *fileIndexEntry
}

// fileIndexBuilder accumulates fileIndexEntry nodes and applies the
// multi-header coalescing rule as entries are added. It is owned
// exclusively by the reader goroutine.
type fileIndexBuilder struct {
	head, tail *fileIndexEntry

	multiHeader      bool
	multiHeaderStart int64
}

// isMultiHeader reports whether name's basename begins with "._", the
// AppleDouble convention for a sidecar metadata entry.
func isMultiHeader(name string) bool {
	return strings.HasPrefix(path.Base(name), "._")
}

// add appends a real tar-member entry at offset, folding in any pending
// multi-header run so that the run's start offset (not the individual
// member's own header offset) is what gets recorded.
func (b *fileIndexBuilder) add(offset int64, name string) {
	if isMultiHeader(name) {
		if !b.multiHeader {
			b.multiHeaderStart = offset
		}
		b.multiHeader = true
		return
	}
	if b.multiHeader {
		offset = b.multiHeaderStart
		b.multiHeader = false
	}
	b.append(&fileIndexEntry{Offset: offset, Name: name})
}

// end appends the terminating sentinel. If a multi-header run was still
// open at end of archive, the run's start offset attaches to the sentinel,
// per the documented "trailing multi-header run" edge case.
func (b *fileIndexBuilder) end(totalRead int64) {
	offset := totalRead
	if b.multiHeader {
		offset = b.multiHeaderStart
		b.multiHeader = false
	}
	b.append(&fileIndexEntry{Offset: offset, isEnd: true})
}

func (b *fileIndexBuilder) append(e *fileIndexEntry) {
	if b.tail != nil {
		b.tail.next = e
	} else {
		b.head = e
	}
	b.tail = e
}

// writeFileIndexEntries serializes every entry in list order as
// name_bytes || 0x00 || little_endian_u64(offset), invoking write three
// times per record: once for the name, once for the NUL, and once for the
// offset.
func writeFileIndexEntries(head *fileIndexEntry, write func([]byte) error) error {
	var offbuf [8]byte
	for e := head; e != nil; e = e.next {
		name := e.Name
		if e.isEnd {
			name = ""
		}
		if err := write([]byte(name)); err != nil {
			return err
		}
		if err := write([]byte{0}); err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(offbuf[:], uint64(e.Offset))
		if err := write(offbuf[:]); err != nil {
			return err
		}
	}
	return nil
}

// parseFileIndexEntries decodes the byte layout produced by
// writeFileIndexEntries into a slice, in on-disk order.
func parseFileIndexEntries(data []byte) ([]fileIndexEntry, error) {
	var entries []fileIndexEntry
	for len(data) > 0 {
		nul := bytes.IndexByte(data, 0)
		if nul < 0 {
			nul = len(data)
		}
		name := string(data[:nul])
		data = data[nul:]
		if len(data) > 0 {
			data = data[1:] // skip the NUL
		}
		if len(data) < 8 {
			return entries, nil // truncated trailer, tolerate
		}
		offset := int64(binary.LittleEndian.Uint64(data[:8]))
		data = data[8:]
		entries = append(entries, fileIndexEntry{Offset: offset, Name: name, isEnd: name == ""})
	}
	return entries, nil
}
