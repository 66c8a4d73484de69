// Package tarpxz builds and reads a parallel, seekably-indexed LZMA2 stream
// specialized for tar archives.
//
// A tar stream is split into fixed-size blocks that are compressed
// independently, in parallel, and written back out in their original order.
// A second, auxiliary block is appended after the data blocks recording the
// uncompressed byte offset of every tar member, so that a reader can jump
// straight to a member's bytes without decoding the blocks that precede it.
package tarpxz
