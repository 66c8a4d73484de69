package tarpxz

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRandomExtractMember(t *testing.T) {
	original := buildTar(t)

	var compressed bytes.Buffer
	opts := Options{DictCap: 64 << 10, EncoderCount: 2, Check: CheckCRC32}
	require.NoError(t, Compress(context.Background(), opts, bytes.NewReader(original), &compressed))

	r := bytes.NewReader(compressed.Bytes())
	si, err := OpenStream(r, opts.DictCap)
	require.NoError(t, err)
	ra := NewRandom(r, si)

	var extracted bytes.Buffer
	require.NoError(t, ra.ExtractMember("dir/real.txt", &extracted))

	// dir/real.txt's file-index offset is that of its coalesced AppleDouble
	// sidecar, so the extracted range starts with the sidecar's header.
	tr := tar.NewReader(&extracted)
	hdr, err := tr.Next()
	require.NoError(t, err)
	require.Equal(t, "dir/._sidecar", hdr.Name)
	hdr, err = tr.Next()
	require.NoError(t, err)
	require.Equal(t, "dir/real.txt", hdr.Name)

	content, err := io.ReadAll(tr)
	require.NoError(t, err)
	require.Contains(t, string(content), "the actual file content")
}

func TestRandomExtractMissingMember(t *testing.T) {
	original := buildTar(t)
	var compressed bytes.Buffer
	opts := Options{DictCap: 64 << 10, EncoderCount: 1, Check: CheckNone}
	require.NoError(t, Compress(context.Background(), opts, bytes.NewReader(original), &compressed))

	r := bytes.NewReader(compressed.Bytes())
	si, err := OpenStream(r, opts.DictCap)
	require.NoError(t, err)
	ra := NewRandom(r, si)

	_, _, err = ra.Member("does/not/exist")
	require.Error(t, err)
}

func TestRandomReadAtMatchesFullDecompress(t *testing.T) {
	original := buildLargeTarForRandom(t)

	var compressed bytes.Buffer
	opts := Options{DictCap: 64 << 10, EncoderCount: 3, Check: CheckCRC64}
	require.NoError(t, Compress(context.Background(), opts, bytes.NewReader(original), &compressed))

	r := bytes.NewReader(compressed.Bytes())
	var full bytes.Buffer
	require.NoError(t, Decompress(bytes.NewReader(compressed.Bytes()), opts.DictCap, &full))

	si, err := OpenStream(r, opts.DictCap)
	require.NoError(t, err)
	ra := NewRandom(r, si)

	got := make([]byte, 500)
	n, err := ra.ReadAt(got, 1000)
	require.NoError(t, err)
	require.Equal(t, full.Bytes()[1000:1000+n], got[:n])
}

func buildLargeTarForRandom(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	body := bytes.Repeat([]byte("random access probe content "), 6000)
	for i := 0; i < 3; i++ {
		hdr := &tar.Header{
			Name:    "probe/" + string(rune('a'+i)),
			Mode:    0644,
			Size:    int64(len(body)),
			ModTime: time.Unix(0, 0),
		}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}
