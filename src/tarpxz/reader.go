package tarpxz

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
)

// readerState bundles everything the reader goroutine owns: the queues it
// moves buffers through, the buffer currently being filled, the running
// byte count, the sequence counter, and the file index under construction.
// Nothing outside the reader goroutine touches this struct while it runs.
type readerState struct {
	ctx context.Context

	readQ, encodeQ *queue
	dictCap        int
	encoderCount   int

	current   *ioBlock
	totalRead int64
	nextSeq   uint64

	fileIndex fileIndexBuilder
}

// feedReader sits between the input file and archive/tar.Reader. Every byte
// the tar parser asks for is first mirrored into the reader's current pool
// buffer, exactly as pixz's tar_read callback mirrors bytes into its
// io_block_t before handing them to libarchive.
type feedReader struct {
	src io.Reader
	rs  *readerState
}

func (fr *feedReader) Read(p []byte) (int, error) {
	rs := fr.rs
	if rs.current == nil {
		msg, err := rs.readQ.pop(rs.ctx)
		if err != nil {
			return 0, err
		}
		rs.current = msg.block
		rs.current.reset()
		rs.current.seq = rs.nextSeq
		rs.nextSeq++
	}

	in := blockInSize(rs.dictCap)
	space := in - rs.current.insize
	if space > chunkSize {
		space = chunkSize
	}
	if space > len(p) {
		space = len(p)
	}

	dst := rs.current.input[rs.current.insize : rs.current.insize+space]
	n, err := fr.src.Read(dst)
	rs.current.insize += n
	rs.totalRead += int64(n)
	copy(p, dst[:n])

	if rs.current.insize == in {
		full := rs.current
		rs.current = nil
		if perr := rs.encodeQ.push(rs.ctx, message{tag: msgBlock, block: full}); perr != nil {
			return n, perr
		}
	}
	return n, err
}

// runReader drives the tar parser over src to completion, building the file
// index and feeding pool buffers to encodeQ. On return — success or
// failure — it has always flushed the tail buffer and pushed one STOP per
// encoder, so the encoder pool can always be joined afterward.
func runReader(rs *readerState, src io.Reader) error {
	fr := &feedReader{src: src, rs: rs}
	tr := tar.NewReader(fr)

	err := walkTarMembers(tr, fr, func(offset int64, name string, eof bool) error {
		if eof {
			rs.fileIndex.end(rs.totalRead)
			return nil
		}
		rs.fileIndex.add(offset, name)
		return nil
	})

	if rs.current != nil {
		tail := rs.current
		rs.current = nil
		var perr error
		if tail.insize > 0 {
			perr = rs.encodeQ.push(rs.ctx, message{tag: msgBlock, block: tail})
		} else {
			perr = rs.readQ.push(rs.ctx, message{tag: msgBlock, block: tail})
		}
		if perr != nil && err == nil {
			err = perr
		}
	}
	// Every encoder gets its own STOP so the pool can be joined regardless
	// of which one, if any, already exited on an error of its own; a push
	// here failing (the pipeline is already unwinding via rs.ctx) is not a
	// new failure worth reporting over whatever err already holds.
	for i := 0; i < rs.encoderCount; i++ {
		_ = rs.encodeQ.push(rs.ctx, message{tag: msgStop})
	}

	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return nil
}

// walkTarMembers calls entryFunc once per tar header, in archive order,
// with the uncompressed byte offset the header started at, and once more
// with eof=true after the last member. This is the synchronous-callback
// shape of this module's tar member iteration; it never runs concurrently
// with itself, so entryFunc needs no locking of its own.
//
// archive/tar.Reader has no public accessor for how many bytes it has
// consumed, so the offset is read directly off fr, the feedReader backing
// tr, which is the one thing in this package that does track it. Each
// member's content is read to its end before the next header, and headers
// start on 512-byte boundaries, so rounding the count up skips only the
// content's padding.
func walkTarMembers(tr *tar.Reader, fr *feedReader, entryFunc func(offset int64, name string, eof bool) error) error {
	const tarBlockSize = 512
	for {
		offset := (fr.rs.totalRead + tarBlockSize - 1) / tarBlockSize * tarBlockSize
		hdr, err := tr.Next()
		if err == io.EOF {
			return entryFunc(fr.rs.totalRead, "", true)
		}
		if err != nil {
			return fmt.Errorf("tar: %w", err)
		}
		if err := entryFunc(offset, hdr.Name, false); err != nil {
			return err
		}
		if _, err := io.Copy(io.Discard, tr); err != nil {
			return fmt.Errorf("tar: %w", err)
		}
	}
}
