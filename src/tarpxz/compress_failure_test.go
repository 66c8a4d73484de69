package tarpxz

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// failingWriter accepts up to limit bytes across all Write calls and then
// fails every call after, simulating a short/failed disk write partway
// through a multi-block stream.
type failingWriter struct {
	limit, written int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.written >= w.limit {
		return 0, errors.New("simulated disk failure")
	}
	room := w.limit - w.written
	if room > len(p) {
		room = len(p)
	}
	w.written += room
	if room < len(p) {
		return room, errors.New("simulated disk failure")
	}
	return room, nil
}

// TestCompressReturnsPromptlyOnWriterFailure exercises a writer failure
// partway through drainReady on a multi-block input: Compress must return
// the error instead of hanging with the reader permanently blocked on a
// starved buffer pool.
func TestCompressReturnsPromptlyOnWriterFailure(t *testing.T) {
	original := buildLargeTar(t)
	opts := Options{DictCap: 64 << 10, EncoderCount: 4, Check: CheckCRC32}

	// Room for the 12-byte stream header plus a few spare bytes, so the
	// failure lands on the first block write inside drainReady rather than
	// on the header itself — every block's header alone is 24 bytes, so
	// this always fails partway through that first ws.out.Write call.
	fw := &failingWriter{limit: 20}

	done := make(chan error, 1)
	go func() {
		done <- Compress(context.Background(), opts, bytes.NewReader(original), fw)
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Compress did not return after a writer failure")
	}
}

// TestEncoderFailurePropagatesAndUnblocksPeers exercises the same
// egCtx-cancellation mechanism Compress wires up, at the level of a single
// encoder pool: one encoder hits a fatal codec-layer error (an
// undersized output buffer, the same guard encoder.go:40 trips on real
// oversized blocks) and every sibling encoder blocked on encodeQ.pop must
// unblock instead of leaking.
func TestEncoderFailurePropagatesAndUnblocksPeers(t *testing.T) {
	encodeQ := newQueue(4)
	writeQ := newQueue(4)

	eg, egCtx := errgroup.WithContext(context.Background())

	bad := &ioBlock{seq: 0, insize: 1024, input: make([]byte, 1024), output: make([]byte, 4)}
	require.NoError(t, encodeQ.push(context.Background(), message{tag: msgBlock, block: bad}))

	eg.Go(func() error { return runEncoder(egCtx, defaultDictCap, CheckCRC32, encodeQ, writeQ) })
	// This sibling never receives a message of its own; before the
	// cancellation fix it would block on encodeQ.pop forever once the
	// other encoder above returns its error.
	eg.Go(func() error { return runEncoder(egCtx, defaultDictCap, CheckCRC32, encodeQ, writeQ) })

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("encoder pool did not unblock after one encoder's fatal error")
	}
}
