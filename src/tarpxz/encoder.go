package tarpxz

import (
	"context"
	"fmt"
	"log"

	"github.com/cespare/xxhash/v2"
)

// DebugLog, if non-nil, receives one line per encoded block naming its
// sequence number and a fast content fingerprint. It is nil by default so
// that compressing does not pay for formatting on every block.
var DebugLog *log.Logger

// runEncoder is one of the N parallel encoder workers. It pops buffers off
// encodeQ until it sees a STOP, compressing each one in place and handing
// it to writeQ. Encoders never coordinate with each other and never touch
// the block index or the file index.
func runEncoder(ctx context.Context, dictCap int, check CheckKind, encodeQ, writeQ *queue) error {
	for {
		msg, err := encodeQ.pop(ctx)
		if err != nil {
			return err
		}
		if msg.tag == msgStop {
			return nil
		}
		ib := msg.block
		ib.desc.check = check
		ib.desc.uncompressedSize = int64(ib.insize)

		// Every field in this container's block header is fixed-width,
		// so unlike the real xz format its size never depends on the
		// values it holds: the header can be written once, after the
		// payload, instead of speculatively before it.
		hn := blockHeaderSize()
		payloadBound := blockOutBound(ib.insize)
		if hn+payloadBound > len(ib.output) {
			return fmt.Errorf("encode: block %d exceeds output capacity", ib.seq)
		}
		pn, err := encodeBlock(dictCap, check, ib.input[:ib.insize], ib.output[hn:hn+payloadBound])
		if err != nil {
			return fmt.Errorf("encode: block %d: %w", ib.seq, err)
		}
		ib.desc.compressedSize = int64(pn)

		if _, err := encodeBlockHeader(&ib.desc, ib.output[:hn]); err != nil {
			return fmt.Errorf("encode: block header: %w", err)
		}
		ib.outsize = hn + pn
		ib.desc.unpaddedSize = int64(hn + pn)

		logBlockFingerprint(ib.seq, ib.input[:ib.insize])

		if err := writeQ.push(ctx, message{tag: msgBlock, block: ib}); err != nil {
			return err
		}
	}
}

// logBlockFingerprint computes a fast, non-cryptographic content hash of a
// block's input purely for diagnostics: it never affects correctness and is
// not part of the on-disk format. xxhash is a natural fit here since it is
// the fingerprinting hash arloliu/mebo already leans on for its own block
// checksums.
func logBlockFingerprint(seq uint64, input []byte) {
	if DebugLog == nil {
		return
	}
	DebugLog.Printf("block %d: %d bytes, xxhash=%016x", seq, len(input), xxhash.Sum64(input))
}
