package tarpxz

import "context"

// poolSize returns the number of pre-allocated buffers for encoderCount
// encoders: two per encoder (one in flight, one queued) plus four for the
// reader, the writer, and reorder slack.
func poolSize(encoderCount int) int {
	return 2*encoderCount + 4
}

// seedPool allocates poolSize(encoderCount) buffers and pushes them all
// onto readQ, ready to be claimed by the reader. This runs before any
// pipeline goroutine exists, against a freshly created empty queue, so
// none of these pushes can ever actually wait; context.Background() is
// used rather than threading a cancellable one through pipeline setup.
func seedPool(readQ *queue, dictCap, encoderCount int) {
	n := poolSize(encoderCount)
	for i := 0; i < n; i++ {
		_ = readQ.push(context.Background(), message{tag: msgBlock, block: newIOBlock(dictCap)})
	}
}
