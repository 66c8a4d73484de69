package tarpxz

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	input := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 5000)
	output := make([]byte, blockOutBound(len(input)))

	n, err := encodeBlock(defaultDictCap, CheckCRC64, input, output)
	require.NoError(t, err)
	require.Less(t, n, len(input), "expected repetitive input to compress")

	got, err := decodeBlock(defaultDictCap, CheckCRC64, output[:n], int64(len(input)))
	require.NoError(t, err)
	require.Equal(t, input, got)
}

func TestDecodeBlockDetectsCorruption(t *testing.T) {
	input := bytes.Repeat([]byte("payload"), 1000)
	output := make([]byte, blockOutBound(len(input)))
	n, err := encodeBlock(defaultDictCap, CheckCRC32, input, output)
	require.NoError(t, err)

	corrupted := append([]byte(nil), output[:n]...)
	corrupted[0] ^= 0xff

	_, err = decodeBlock(defaultDictCap, CheckCRC32, corrupted, int64(len(input)))
	require.Error(t, err)
}

func TestEncodeDecodeBlockCheckNone(t *testing.T) {
	input := []byte("no integrity check requested")
	output := make([]byte, blockOutBound(len(input)))
	n, err := encodeBlock(defaultDictCap, CheckNone, input, output)
	require.NoError(t, err)

	got, err := decodeBlock(defaultDictCap, CheckNone, output[:n], int64(len(input)))
	require.NoError(t, err)
	require.Equal(t, input, got)
}
