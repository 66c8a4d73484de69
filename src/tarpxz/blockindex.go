package tarpxz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// blockIndexEntry records one block's on-disk footprint and logical size.
type blockIndexEntry struct {
	unpaddedSize     int64
	uncompressedSize int64
}

// blockIndex is the append-only ledger the writer maintains: one entry per
// data block plus the file-index block, in the exact order they were
// written to disk. Encoders never touch it; only the writer appends.
type blockIndex struct {
	entries []blockIndexEntry
}

func (bi *blockIndex) append(unpaddedSize, uncompressedSize int64) {
	bi.entries = append(bi.entries, blockIndexEntry{unpaddedSize, uncompressedSize})
}

// totalUncompressed sums the uncompressed size of every entry, i.e. the
// number of bytes a decoder must produce to reproduce every block's
// content (including the file-index block itself).
func (bi *blockIndex) totalUncompressed() int64 {
	var n int64
	for _, e := range bi.entries {
		n += e.uncompressedSize
	}
	return n
}

// encode serializes the index as: uvarint count, then for each entry a
// uvarint unpadded_size and uvarint uncompressed_size, followed by a CRC32
// of everything preceding it.
func (bi *blockIndex) encode() []byte {
	var buf bytes.Buffer
	var scratch [binary.MaxVarintLen64]byte

	n := binary.PutUvarint(scratch[:], uint64(len(bi.entries)))
	buf.Write(scratch[:n])
	for _, e := range bi.entries {
		n = binary.PutUvarint(scratch[:], uint64(e.unpaddedSize))
		buf.Write(scratch[:n])
		n = binary.PutUvarint(scratch[:], uint64(e.uncompressedSize))
		buf.Write(scratch[:n])
	}

	crc := crc32.ChecksumIEEE(buf.Bytes())
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	buf.Write(crcBuf[:])
	return buf.Bytes()
}

// decodeBlockIndex parses the byte layout produced by encode.
func decodeBlockIndex(data []byte) (*blockIndex, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("truncated block index")
	}
	body, crcBytes := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(crcBytes) {
		return nil, fmt.Errorf("block index CRC mismatch")
	}

	r := bytes.NewReader(body)
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("block index count: %w", err)
	}
	bi := &blockIndex{entries: make([]blockIndexEntry, 0, count)}
	for i := uint64(0); i < count; i++ {
		unpadded, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("block index entry %d: %w", i, err)
		}
		uncompressed, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("block index entry %d: %w", i, err)
		}
		bi.append(int64(unpadded), int64(uncompressed))
	}
	return bi, nil
}
