package tarpxz

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// blockHeaderRawSize is the size, in bytes, of a block header before the
// 4-byte size padding: 1 (size unit) + 1 (check kind) + 8 (uncompressed
// size) + 8 (compressed size).
const blockHeaderRawSize = 1 + 1 + 8 + 8

// blockHeaderSize returns the total on-disk size of a block header,
// including the zero padding to a multiple of 4 and the trailing CRC32,
// mirroring lzma_block_header_size's contract in the original codec.
func blockHeaderSize() int {
	padded := blockHeaderRawSize
	if r := padded % 4; r != 0 {
		padded += 4 - r
	}
	return padded + 4 // + crc32
}

// encodeBlockHeader writes desc's header into buf, which must be at least
// blockHeaderSize() bytes, and fills in desc.headerSize.
func encodeBlockHeader(desc *blockDescriptor, buf []byte) (int, error) {
	size := blockHeaderSize()
	if len(buf) < size {
		return 0, fmt.Errorf("block header buffer too small: have %d need %d", len(buf), size)
	}
	desc.headerSize = size

	body := buf[:size-4]
	for i := range body {
		body[i] = 0
	}
	body[0] = byte(size / 4)
	body[1] = byte(desc.check)
	binary.LittleEndian.PutUint64(body[2:10], uint64(desc.uncompressedSize))
	binary.LittleEndian.PutUint64(body[10:18], uint64(desc.compressedSize))

	crc := crc32.ChecksumIEEE(body)
	binary.LittleEndian.PutUint32(buf[size-4:size], crc)
	return size, nil
}

// decodeBlockHeader parses a block header from the front of buf and returns
// the descriptor plus the number of header bytes consumed.
func decodeBlockHeader(buf []byte) (blockDescriptor, int, error) {
	if len(buf) < 4 {
		return blockDescriptor{}, 0, fmt.Errorf("truncated block header")
	}
	size := int(buf[0]) * 4
	if size < blockHeaderRawSize || len(buf) < size {
		return blockDescriptor{}, 0, fmt.Errorf("invalid block header size %d", size)
	}
	body := buf[:size-4]
	crc := binary.LittleEndian.Uint32(buf[size-4 : size])
	if crc32.ChecksumIEEE(body) != crc {
		return blockDescriptor{}, 0, fmt.Errorf("block header CRC mismatch")
	}
	desc := blockDescriptor{
		check:            CheckKind(body[1]),
		uncompressedSize: int64(binary.LittleEndian.Uint64(body[2:10])),
		compressedSize:   int64(binary.LittleEndian.Uint64(body[10:18])),
		headerSize:       size,
	}
	return desc, size, nil
}
