package tarpxz

import (
	"fmt"
	"io"
)

// StreamInfo is the parsed header/footer/index of a tarpxz stream, enough
// to locate and decode any block without touching the data blocks that
// precede it.
type StreamInfo struct {
	Check      CheckKind
	DictCap    int
	Index      *blockIndex
	FileIndex  []fileIndexEntry // empty if the stream carries no file index
	dataOffset int64            // byte offset of the first data block
}

// OpenStream reads the header and footer of r (which must also implement
// io.Seeker) and decodes the block index, without decoding any data block.
// dictCap must match the value Compress was called with; this container
// does not currently record it on disk.
func OpenStream(r io.ReadSeeker, dictCap int) (*StreamInfo, error) {
	if dictCap <= 0 {
		dictCap = defaultDictCap
	}

	header := make([]byte, streamEdgeSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("stream header: %w", err)
	}
	check, err := decodeStreamHeader(header)
	if err != nil {
		return nil, err
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}
	footer := make([]byte, streamEdgeSize)
	if _, err := r.Seek(end-streamEdgeSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek footer: %w", err)
	}
	if _, err := io.ReadFull(r, footer); err != nil {
		return nil, fmt.Errorf("stream footer: %w", err)
	}
	footerCheck, backwardSize, err := decodeStreamFooter(footer)
	if err != nil {
		return nil, err
	}
	if footerCheck != check {
		return nil, fmt.Errorf("header/footer check kind mismatch")
	}

	indexStart := end - streamEdgeSize - int64(backwardSize)
	if indexStart < streamEdgeSize {
		return nil, fmt.Errorf("invalid backward_size %d", backwardSize)
	}
	if _, err := r.Seek(indexStart, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek block index: %w", err)
	}
	encoded := make([]byte, backwardSize)
	if _, err := io.ReadFull(r, encoded); err != nil {
		return nil, fmt.Errorf("read block index: %w", err)
	}
	index, err := decodeBlockIndex(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode block index: %w", err)
	}
	if len(index.entries) == 0 {
		return nil, fmt.Errorf("block index has no entries")
	}

	// The file-index block is always the last entry in the block index.
	fiEntry := index.entries[len(index.entries)-1]
	fiOffset := indexStart - fiEntry.unpaddedSize
	if _, err := r.Seek(fiOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek file index block: %w", err)
	}
	fiRaw := make([]byte, fiEntry.unpaddedSize)
	if _, err := io.ReadFull(r, fiRaw); err != nil {
		return nil, fmt.Errorf("read file index block: %w", err)
	}
	fiPayload, err := decodeOneBlock(dictCap, check, fiRaw, fiEntry.uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("decode file index block: %w", err)
	}
	fileIndex, err := parseFileIndexEntries(fiPayload)
	if err != nil {
		return nil, fmt.Errorf("parse file index: %w", err)
	}

	return &StreamInfo{
		Check:      check,
		DictCap:    dictCap,
		Index:      index,
		FileIndex:  fileIndex,
		dataOffset: streamEdgeSize,
	}, nil
}

// decodeOneBlock decodes the block header and payload held in raw, which
// must be exactly the block's on-disk bytes (its unpaddedSize).
func decodeOneBlock(dictCap int, check CheckKind, raw []byte, uncompressedSize int64) ([]byte, error) {
	desc, hn, err := decodeBlockHeader(raw)
	if err != nil {
		return nil, err
	}
	if desc.check != check {
		return nil, fmt.Errorf("block check kind %s does not match stream check kind %s", desc.check, check)
	}
	payload := raw[hn:]
	if int64(len(payload)) != desc.compressedSize {
		return nil, fmt.Errorf("block payload length %d does not match header %d", len(payload), desc.compressedSize)
	}
	return decodeBlock(dictCap, check, payload, uncompressedSize)
}

// dataBlockOffsets walks Index and returns, for each entry, the on-disk
// byte offset its block starts at (the header's first byte) relative to
// the start of the stream. The last entry (the file-index block) is
// included; callers that only want data blocks should stop one short.
func (si *StreamInfo) dataBlockOffsets() []int64 {
	offsets := make([]int64, len(si.Index.entries))
	pos := si.dataOffset
	for i, e := range si.Index.entries {
		offsets[i] = pos
		pos += e.unpaddedSize
	}
	return offsets
}

// Decompress writes the reconstructed tar stream to w by decoding every
// data block in order (all but the last block index entry, which is the
// file-index block). Unlike Compress, this runs single-threaded: block
// boundaries are already fixed on disk, so there is nothing left to
// reorder.
func Decompress(r io.ReadSeeker, dictCap int, w io.Writer) error {
	si, err := OpenStream(r, dictCap)
	if err != nil {
		return err
	}
	offsets := si.dataBlockOffsets()
	dataEntries := si.Index.entries[:len(si.Index.entries)-1]

	for i, e := range dataEntries {
		if _, err := r.Seek(offsets[i], io.SeekStart); err != nil {
			return fmt.Errorf("seek block %d: %w", i, err)
		}
		raw := make([]byte, e.unpaddedSize)
		if _, err := io.ReadFull(r, raw); err != nil {
			return fmt.Errorf("read block %d: %w", i, err)
		}
		payload, err := decodeOneBlock(si.DictCap, si.Check, raw, e.uncompressedSize)
		if err != nil {
			return fmt.Errorf("decode block %d: %w", i, err)
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write block %d: %w", i, err)
		}
	}
	return nil
}
