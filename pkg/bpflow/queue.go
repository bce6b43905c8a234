package bpflow

import "github.com/thnkslprpt/bplib/pkg/bpblock"

// AppendSubqBundle pushes b onto the tail of q. If q is already at its
// depth limit, b is dropped instead: q's drop counters are updated and the
// caller gets ok == false so it can release its own reference to b (spec
// §4.E "depth limit with drop + stats", exercised by the overflow scenario
// in spec §8).
//
// encodedSize is a caller-supplied estimate of b's encoded size, recorded
// in the queue's dropped-bytes counter when b is dropped; pass 0 if
// unknown.
func AppendSubqBundle(q *bpblock.SubQueue, b *bpblock.Block, encodedSize uint64) (ok bool) {
	if q.AtCapacity() {
		q.RecordDrop(encodedSize)
		return false
	}

	q.PushTail(b)
	return true
}

// ShiftSubqBundle removes and returns the block at the head of q, FIFO
// order, or (nil, false) if q is empty.
func ShiftSubqBundle(q *bpblock.SubQueue) (*bpblock.Block, bool) {
	return q.PopHead()
}
