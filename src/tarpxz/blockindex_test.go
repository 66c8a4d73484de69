package tarpxz

import "testing"

func TestBlockIndexEncodeDecodeRoundTrip(t *testing.T) {
	var bi blockIndex
	bi.append(120, 1000)
	bi.append(340, 2000)
	bi.append(64, 0)

	encoded := bi.encode()
	got, err := decodeBlockIndex(encoded)
	if err != nil {
		t.Fatalf("decodeBlockIndex: %s", err)
	}
	if len(got.entries) != len(bi.entries) {
		t.Fatalf("got %d entries, want %d", len(got.entries), len(bi.entries))
	}
	for i, e := range bi.entries {
		if got.entries[i] != e {
			t.Errorf("entry %d = %+v, want %+v", i, got.entries[i], e)
		}
	}
	if got.totalUncompressed() != 3000 {
		t.Errorf("totalUncompressed = %d, want 3000", got.totalUncompressed())
	}
}

func TestBlockIndexDecodeRejectsCorruption(t *testing.T) {
	var bi blockIndex
	bi.append(120, 1000)
	encoded := bi.encode()
	encoded[0] ^= 0xff

	if _, err := decodeBlockIndex(encoded); err == nil {
		t.Error("expected CRC mismatch error on corrupted block index")
	}
}

func TestBlockIndexEmpty(t *testing.T) {
	var bi blockIndex
	encoded := bi.encode()
	got, err := decodeBlockIndex(encoded)
	if err != nil {
		t.Fatalf("decodeBlockIndex: %s", err)
	}
	if len(got.entries) != 0 {
		t.Errorf("got %d entries, want 0", len(got.entries))
	}
}
