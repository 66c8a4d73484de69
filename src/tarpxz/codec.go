package tarpxz

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// encodeBlock is the codec's one-shot block encoder: it compresses
// all of input with LZMA2, appends the integrity check named by kind, and
// returns the number of bytes written into output. output must have
// capacity at least blockOutBound(len(input)).
//
// This is the "documented entry point" the compressor treats the codec as a
// black box through: everything above this function deals in whole blocks,
// never in LZMA2 chunk or match-finder internals.
func encodeBlock(dictCap int, kind CheckKind, input []byte, output []byte) (n int, err error) {
	buf := bytes.NewBuffer(output[:0])

	cfg := lzma.Writer2Config{DictCap: dictCap}
	w, err := cfg.NewWriter2(buf)
	if err != nil {
		return 0, fmt.Errorf("lzma2 writer: %w", err)
	}
	if _, err := w.Write(input); err != nil {
		return 0, fmt.Errorf("lzma2 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("lzma2 finish: %w", err)
	}

	if h := newHash(kind); h != nil {
		_, _ = h.Write(buf.Bytes())
		buf.Write(h.Sum(nil))
	}

	if buf.Len() > cap(output) {
		return 0, fmt.Errorf("compressed block of %d bytes exceeds bound %d", buf.Len(), cap(output))
	}
	return copy(output[:cap(output)], buf.Bytes()), nil
}

// decodeBlock is the codec's one-shot block decoder, the inverse of
// encodeBlock: it verifies the trailing integrity check (if any) and
// returns the decompressed bytes.
func decodeBlock(dictCap int, kind CheckKind, compressed []byte, uncompressedSize int64) ([]byte, error) {
	sum := checkSize(kind)
	if len(compressed) < sum {
		return nil, fmt.Errorf("block shorter than its %d-byte integrity check", sum)
	}
	payload := compressed[:len(compressed)-sum]
	trailer := compressed[len(compressed)-sum:]

	if h := newHash(kind); h != nil {
		_, _ = h.Write(payload)
		if !bytes.Equal(h.Sum(nil), trailer) {
			return nil, fmt.Errorf("integrity check (%s) mismatch", kind)
		}
	}

	cfg := lzma.Reader2Config{DictCap: dictCap}
	r, err := cfg.NewReader2(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("lzma2 reader: %w", err)
	}
	out := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("lzma2 decompress: %w", err)
	}
	return buf.Bytes(), nil
}
