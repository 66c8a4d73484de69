package tarpxz

import (
	"context"
	"fmt"
	"io"
)

// writerState bundles everything the writer owns: the output file, the
// block index it appends to as blocks land in order, and the reorder list
// of completed-but-not-yet-written buffers.
type writerState struct {
	ctx context.Context

	readQ, writeQ *queue
	dictCap       int
	check         CheckKind

	out io.Writer

	nextSeq uint64
	ibs     *ioBlock // head of the intrusive reorder list

	index blockIndex
}

// runWriter is the writer's main loop and epilogue, run on the calling
// goroutine (this package's equivalent of pixz's writer/main thread). It
// writes the stream header immediately, then drains writeQ until STOP,
// reassembling blocks into sequence order as they arrive, and finally
// appends the file-index block, the encoded block index, and the stream
// footer.
//
// rs is only read after STOP has been popped off writeQ: by that point the
// reader goroutine has already finished mutating rs.fileIndex and handed
// off through the writeQ channel send, which is what makes reading
// rs.fileIndex.head here safe without any lock of its own.
func runWriter(ws *writerState, rs *readerState) error {
	if _, err := ws.out.Write(encodeStreamHeader(ws.check)); err != nil {
		return fmt.Errorf("write: stream header: %w", err)
	}

	for {
		msg, err := ws.writeQ.pop(ws.ctx)
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}
		if msg.tag == msgStop {
			break
		}
		ib := msg.block
		ib.next = ws.ibs
		ws.ibs = ib
		if err := ws.drainReady(); err != nil {
			return err
		}
	}

	if ws.ibs != nil {
		return fmt.Errorf("write: epilogue reached with %d block(s) still unwritten", countBlocks(ws.ibs))
	}

	if err := ws.writeFileIndexBlock(rs.fileIndex.head); err != nil {
		return fmt.Errorf("write: file index: %w", err)
	}

	encoded := ws.index.encode()
	if _, err := ws.out.Write(encoded); err != nil {
		return fmt.Errorf("write: block index: %w", err)
	}

	if _, err := ws.out.Write(encodeStreamFooter(ws.check, uint32(len(encoded)))); err != nil {
		return fmt.Errorf("write: stream footer: %w", err)
	}
	return nil
}

// drainReady repeatedly scans the reorder list for the block whose
// sequence number is next, writes it out, appends it to the block index,
// and returns its buffer to readQ, restarting the scan each time a match
// is found. It stops when a full scan finds nothing. The list is bounded
// by the buffer pool size, so a linear scan is cheap.
func (ws *writerState) drainReady() error {
	for {
		var prev *ioBlock
		found := false
		for ib := ws.ibs; ib != nil; ib = ib.next {
			if ib.seq != ws.nextSeq {
				prev = ib
				continue
			}
			if _, err := ws.out.Write(ib.output[:ib.outsize]); err != nil {
				return fmt.Errorf("block data: %w", err)
			}
			ws.index.append(ib.desc.unpaddedSize, ib.desc.uncompressedSize)

			if prev != nil {
				prev.next = ib.next
			} else {
				ws.ibs = ib.next
			}
			if err := ws.readQ.push(ws.ctx, message{tag: msgBlock, block: ib}); err != nil {
				return err
			}

			ws.nextSeq++
			found = true
			break
		}
		if !found {
			return nil
		}
	}
}

func countBlocks(ib *ioBlock) int {
	n := 0
	for ; ib != nil; ib = ib.next {
		n++
	}
	return n
}

// writeFileIndexBlock builds a fresh block exactly like a data block,
// serializes every file-index entry into it, and appends the resulting
// block to the running block index. The whole serialized file index is
// collected in memory and compressed with a single encodeBlock call; it is
// not fed to the encoder in chunkSize slices.
func (ws *writerState) writeFileIndexBlock(head *fileIndexEntry) error {
	var payload []byte
	if err := writeFileIndexEntries(head, func(b []byte) error {
		payload = append(payload, b...)
		return nil
	}); err != nil {
		return err
	}

	desc := blockDescriptor{check: ws.check, uncompressedSize: int64(len(payload))}
	hn := blockHeaderSize()
	output := make([]byte, hn+blockOutBound(len(payload)))

	pn, err := encodeBlock(ws.dictCap, ws.check, payload, output[hn:])
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	desc.compressedSize = int64(pn)
	if _, err := encodeBlockHeader(&desc, output[:hn]); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	desc.unpaddedSize = int64(hn + pn)

	if _, err := ws.out.Write(output[:hn+pn]); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	ws.index.append(desc.unpaddedSize, desc.uncompressedSize)
	return nil
}
