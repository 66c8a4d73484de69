package tarpxz

import (
	"hash"
	"hash/crc32"
	"hash/crc64"

	sha256 "github.com/minio/sha256-simd"
)

// newHash returns the hash.Hash implementing kind, or nil for CheckNone.
// crc32 and crc64 have no third-party replacement anywhere in the pack, so
// they stay on the standard library, but sha256-simd is a drop-in
// hash.Hash for CheckSHA256 that picks a SIMD or SHA extension
// implementation at runtime instead of crypto/sha256's portable one.
func newHash(kind CheckKind) hash.Hash {
	switch kind {
	case CheckCRC32:
		return crc32.NewIEEE()
	case CheckCRC64:
		return crc64.New(crc64.MakeTable(crc64.ECMA))
	case CheckSHA256:
		return sha256.New()
	default:
		return nil
	}
}

// checkSize returns the on-disk size in bytes of kind's integrity check.
func checkSize(kind CheckKind) int {
	switch kind {
	case CheckCRC32:
		return 4
	case CheckCRC64:
		return 8
	case CheckSHA256:
		return sha256.Size // sha256-simd re-exports crypto/sha256's constant
	default:
		return 0
	}
}
