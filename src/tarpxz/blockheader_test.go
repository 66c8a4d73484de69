package tarpxz

import "testing"

func TestBlockHeaderEncodeDecodeRoundTrip(t *testing.T) {
	desc := blockDescriptor{
		check:            CheckCRC64,
		uncompressedSize: 1 << 20,
		compressedSize:   1234,
	}
	buf := make([]byte, blockHeaderSize())
	n, err := encodeBlockHeader(&desc, buf)
	if err != nil {
		t.Fatalf("encodeBlockHeader: %s", err)
	}
	if n != blockHeaderSize() {
		t.Fatalf("encoded %d bytes, want %d", n, blockHeaderSize())
	}

	got, hn, err := decodeBlockHeader(buf)
	if err != nil {
		t.Fatalf("decodeBlockHeader: %s", err)
	}
	if hn != n {
		t.Errorf("decoded header size %d, want %d", hn, n)
	}
	if got.check != desc.check || got.uncompressedSize != desc.uncompressedSize || got.compressedSize != desc.compressedSize {
		t.Errorf("decoded %+v, want %+v", got, desc)
	}
}

func TestBlockHeaderDecodeRejectsCorruption(t *testing.T) {
	desc := blockDescriptor{check: CheckCRC32, uncompressedSize: 10, compressedSize: 5}
	buf := make([]byte, blockHeaderSize())
	if _, err := encodeBlockHeader(&desc, buf); err != nil {
		t.Fatalf("encodeBlockHeader: %s", err)
	}
	buf[5] ^= 0xff

	if _, _, err := decodeBlockHeader(buf); err == nil {
		t.Error("expected CRC mismatch error on corrupted block header")
	}
}

func TestBlockHeaderSizeIsFixed(t *testing.T) {
	small := blockDescriptor{check: CheckNone, uncompressedSize: 1, compressedSize: 1}
	large := blockDescriptor{check: CheckSHA256, uncompressedSize: 1 << 40, compressedSize: 1 << 40}

	bufSmall := make([]byte, blockHeaderSize())
	bufLarge := make([]byte, blockHeaderSize())
	nSmall, err := encodeBlockHeader(&small, bufSmall)
	if err != nil {
		t.Fatalf("encodeBlockHeader(small): %s", err)
	}
	nLarge, err := encodeBlockHeader(&large, bufLarge)
	if err != nil {
		t.Fatalf("encodeBlockHeader(large): %s", err)
	}
	if nSmall != nLarge {
		t.Errorf("header size depends on field values: %d vs %d", nSmall, nLarge)
	}
}
