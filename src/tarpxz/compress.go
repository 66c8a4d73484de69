package tarpxz

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options configures a Compress call. The zero value selects the same
// defaults the CLI uses.
type Options struct {
	// DictCap is the LZMA2 dictionary size in bytes. Zero selects
	// defaultDictCap. BLOCK_IN, the uncompressed capacity of one block,
	// is always twice this value.
	DictCap int
	// EncoderCount is the number of parallel encoder goroutines. Zero
	// selects runtime.NumCPU().
	EncoderCount int
	// Check selects the integrity check appended to every block and
	// recorded in the stream header/footer. Zero is CheckCRC32, the
	// default the CLI uses; set it to CheckNone explicitly to disable
	// the check entirely.
	Check CheckKind
}

func (o Options) withDefaults() Options {
	if o.DictCap <= 0 {
		o.DictCap = defaultDictCap
	}
	if o.EncoderCount <= 0 {
		o.EncoderCount = runtime.NumCPU()
	}
	return o
}

// Compress reads a tar stream from in and writes the parallel, indexed
// LZMA2 container described by this package to out.
//
// The pipeline mirrors the three-stage design this format is built around:
// a single reader goroutine drives the tar parser and fills pool buffers,
// EncoderCount encoder goroutines compress buffers independently and out of
// order, and the writer — run on the calling goroutine — reassembles them
// back into sequence order as it writes.
func Compress(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	opts = opts.withDefaults()
	check := opts.Check

	readQ, encodeQ, writeQ := newPipelineQueues(poolSize(opts.EncoderCount), opts.EncoderCount)
	seedPool(readQ, opts.DictCap, opts.EncoderCount)

	// pipelineCtx is canceled by ctx or by an explicit cancel() when the
	// reader, the writer, or the encoder pool fails. egCtx, derived from it,
	// is additionally canceled by errgroup the instant any encoder returns
	// an error (and, as errgroup always does, once Wait returns). The reader
	// and encoders select on egCtx, the writer and the final STOP push on
	// pipelineCtx, so a failure anywhere unblocks every other stage, while a
	// successful Wait does not cancel the writer's side of the handshake.
	pipelineCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(pipelineCtx)

	rs := &readerState{
		ctx:          egCtx,
		readQ:        readQ,
		encodeQ:      encodeQ,
		dictCap:      opts.DictCap,
		encoderCount: opts.EncoderCount,
	}
	ws := &writerState{
		ctx:     pipelineCtx,
		readQ:   readQ,
		writeQ:  writeQ,
		dictCap: opts.DictCap,
		check:   check,
		out:     out,
	}

	for i := 0; i < opts.EncoderCount; i++ {
		eg.Go(func() error {
			return runEncoder(egCtx, opts.DictCap, check, encodeQ, writeQ)
		})
	}

	// The reader runs on its own goroutine but, like pixz's read thread,
	// is responsible for joining every encoder before signalling the
	// writer: only once every encoder has exited can no more blocks
	// possibly still be in flight toward writeQ.
	readerDone := make(chan error, 1)
	go func() {
		rerr := runReader(rs, in)
		if rerr != nil {
			cancel()
		}
		encErr := eg.Wait()
		if encErr != nil {
			cancel()
		}
		_ = writeQ.push(pipelineCtx, message{tag: msgStop})
		if rerr != nil {
			readerDone <- rerr
			return
		}
		readerDone <- encErr
	}()

	writeErr := runWriter(ws, rs)
	if writeErr != nil {
		cancel()
	}
	readErr := <-readerDone

	if writeErr != nil || readErr != nil {
		// Nobody is going to finish draining these queues through the
		// normal STOP handshake; free whatever is still sitting in them
		// rather than leaving buffers referenced by a queue nothing will
		// ever pop again.
		readQ.drain()
		encodeQ.drain()
		writeQ.drain()
	}

	if writeErr != nil {
		return fmt.Errorf("compress: %w", writeErr)
	}
	if readErr != nil {
		return fmt.Errorf("compress: %w", readErr)
	}
	return nil
}
