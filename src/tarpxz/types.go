package tarpxz

// CheckKind identifies the integrity check appended to every block and
// recorded in the stream header and footer. The vocabulary matches the
// real xz format's check kinds even though the on-disk framing here is
// this package's own.
//
// CheckCRC32 is deliberately the zero value, not CheckNone: Options.Check
// is a plain CheckKind rather than a pointer, so the zero value doubles as
// "left unset" for a caller that never mentions Check at all. Putting
// CheckCRC32 there means an unset Options.Check quietly gets the sensible
// default, while a caller that explicitly writes Check: CheckNone still
// gets a distinct value and actually disables the check, instead of the
// two cases being indistinguishable.
type CheckKind byte

const (
	CheckCRC32 CheckKind = iota
	CheckNone
	CheckCRC64
	CheckSHA256
)

func (c CheckKind) String() string {
	switch c {
	case CheckNone:
		return "none"
	case CheckCRC32:
		return "crc32"
	case CheckCRC64:
		return "crc64"
	case CheckSHA256:
		return "sha256"
	default:
		return "unknown"
	}
}

// chunkSize caps how many input bytes feedReader reads per call and sizes
// ExtractMember's copy buffer. Blocks are compressed in one encodeBlock
// call each, and the file-index block and the block index are each written
// to disk in a single Write, not in chunkSize slices.
const chunkSize = 64 << 10

// defaultDictCap is the LZMA2 dictionary size used when Options.DictCap is
// left at zero, matching the "default preset" dictionary size of the real
// xz format (8 MiB).
const defaultDictCap = 8 << 20

// blockInSize returns BLOCK_IN, the uncompressed capacity of one buffer:
// twice the configured dictionary size.
func blockInSize(dictCap int) int {
	return dictCap * 2
}

// blockOutBound returns BLOCK_OUT, a safe upper bound on the compressed size
// of a block holding up to inSize bytes of input, mirroring liblzma's
// lzma_block_buffer_bound: incompressible input plus per-chunk LZMA2
// overhead plus the block header and integrity check.
func blockOutBound(inSize int) int {
	// LZMA2 falls back to uncompressed chunks capped at 2MiB each, each
	// carrying a few bytes of chunk-control overhead.
	const maxUncompressedChunk = 1 << 21
	chunks := inSize/maxUncompressedChunk + 1
	return inSize + chunks*32 + 4096
}

// msgTag distinguishes payload-bearing messages from the one-way shutdown
// signal on a queue.
type msgTag int

const (
	msgBlock msgTag = iota
	msgStop
)

// message is the tagged union carried by every queue.
type message struct {
	tag   msgTag
	block *ioBlock
}

// blockDescriptor holds the sizes and check kind of one encoded block. It is
// populated by the encoder and consumed by the writer.
type blockDescriptor struct {
	check            CheckKind
	uncompressedSize int64
	compressedSize   int64
	unpaddedSize     int64
	headerSize       int
}

// ioBlock is the unit of work moved between the reader, encoder, and writer
// stages. Exactly one goroutine owns an ioBlock at any instant; ownership
// transfers on every queue push/pop.
type ioBlock struct {
	seq  uint64
	next *ioBlock // intrusive reorder-list link, used only by the writer

	desc blockDescriptor

	input   []byte // capacity blockInSize(dictCap), valid prefix is input[:insize]
	output  []byte // capacity blockHeaderSize()+blockOutBound(cap(input)), valid prefix is output[:outsize]
	insize  int
	outsize int
}

func newIOBlock(dictCap int) *ioBlock {
	in := blockInSize(dictCap)
	return &ioBlock{
		input:  make([]byte, in),
		output: make([]byte, blockHeaderSize()+blockOutBound(in)),
	}
}

func (ib *ioBlock) reset() {
	ib.insize = 0
	ib.outsize = 0
	ib.next = nil
	ib.desc = blockDescriptor{}
}
