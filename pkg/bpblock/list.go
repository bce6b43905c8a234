package bpblock

// SubQueue is a FIFO of blocks anchored by a TagHead sentinel, plus the
// depth accounting spec §4.E requires for flow input/output queues. It is a
// distinct (non-recursive) struct from Block: a Block embeds *SubQueue
// pointers for its flow variant, and a SubQueue embeds a Block head
// sentinel by value, so neither type contains itself.
type SubQueue struct {
	head Block

	depth    int
	depthMax int // 0 means unbounded

	pushCount    uint64
	pullCount    uint64
	dropCount    uint64
	droppedBytes uint64
}

// InitSubQueue prepares q as an empty queue bounded by depthMax (0 =
// unbounded), per spec §4.E.
func InitSubQueue(q *SubQueue, depthMax int) {
	q.head.tag = TagHead
	q.head.prev = &q.head
	q.head.next = &q.head
	q.depth = 0
	q.depthMax = depthMax
}

// Depth returns the number of blocks currently queued.
func (q *SubQueue) Depth() int { return q.depth }

// Stats returns the queue's lifetime push/pull/drop counters (spec §4.E
// "Stats").
func (q *SubQueue) Stats() (pushed, pulled, dropped uint64, droppedBytes uint64) {
	return q.pushCount, q.pullCount, q.dropCount, q.droppedBytes
}

// AtCapacity reports whether q is at its configured depth limit (always
// false for an unbounded queue, depthMax == 0).
func (q *SubQueue) AtCapacity() bool {
	return q.depthMax > 0 && q.depth >= q.depthMax
}

// RecordDrop updates q's drop counters for a bundle that was rejected
// because the queue was at capacity. It does not touch the queue's list.
func (q *SubQueue) RecordDrop(encodedSize uint64) {
	q.dropCount++
	q.droppedBytes += encodedSize
}

// PushTail links b onto the tail of q's list and updates q's depth and
// push counter. Callers should check [SubQueue.AtCapacity] first; PushTail
// itself does not enforce the limit so callers that need to bypass it
// (e.g. priority control traffic) may do so deliberately.
func (q *SubQueue) PushTail(b *Block) {
	listInsertBefore(&q.head, b)
	q.depth++
	q.pushCount++
}

// PopHead unlinks and returns the block at the head of q's list, FIFO
// order, updating q's depth and pull counter. Returns (nil, false) if q is
// empty.
func (q *SubQueue) PopHead() (*Block, bool) {
	if listEmpty(&q.head) {
		return nil, false
	}

	b := q.head.next
	listExtract(b)
	q.depth--
	q.pullCount++

	return b, true
}

// Head returns the head sentinel of q's list, for read-only iteration via
// listForEach-style walks from other packages that need to peek without
// popping (e.g. stats reporting or a store-backed spill path).
func (q *SubQueue) Head() *Block { return &q.head }

// listInit turns an arbitrary Block into a standalone list-of-one sentinel:
// used both for SubQueue-external head nodes (primary's canonical list,
// canonical's chunk list) and, via InitSubQueue, for SubQueue's own head.
func listInit(head *Block) {
	head.tag = TagHead
	head.prev = head
	head.next = head
}

// listEmpty reports whether head's list holds no payload blocks.
func listEmpty(head *Block) bool {
	return head.next == head
}

// listInsertAfter splices n in immediately after at (spec §4.A "insert after
// a given node"). n must not already be linked into a list.
func listInsertAfter(at, n *Block) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
}

// listInsertBefore splices n in immediately before at (spec §4.A "insert
// before a given node"), equivalently append-at-tail when at is a head
// sentinel.
func listInsertBefore(at, n *Block) {
	listInsertAfter(at.prev, n)
}

// listExtract removes n from whatever list it is linked into and leaves it
// pointing at itself (spec §4.A "extract": unlink without touching payload).
// Extracting an already-solitary node is a no-op.
func listExtract(n *Block) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = n
	n.next = n
}

// listMerge splices every node of src's list (excluding src's own sentinel)
// onto the tail of dst's list, then leaves src as an empty list (spec §4.A
// "merge two lists"). A no-op if src is already empty.
func listMerge(dst, src *Block) {
	if listEmpty(src) {
		return
	}

	first := src.next
	last := src.prev

	dst.prev.next = first
	first.prev = dst.prev

	last.next = dst
	dst.prev = last

	listInit(src)
}

// listForEach walks head's list front-to-back, calling fn on each payload
// block. If fn returns false the walk stops early. Per spec §4.A, fn may
// extract the current node (but not other nodes) before returning; the
// next pointer is captured before fn runs so extraction during iteration is
// safe.
func listForEach(head *Block, fn func(b *Block) bool) {
	n := head.next
	for n != head {
		next := n.next
		if !fn(n) {
			return
		}
		n = next
	}
}

// listCount returns the number of payload blocks in head's list.
func listCount(head *Block) int {
	n := 0
	listForEach(head, func(*Block) bool {
		n++
		return true
	})
	return n
}

// The exported wrappers below give other bplib packages (bpflow, bpstore
// and their tests) access to the same list primitive the pool uses
// internally, without exposing Block's private fields.

// InitList turns head into a standalone empty list sentinel.
func InitList(head *Block) { listInit(head) }

// ListEmpty reports whether head's list holds no payload blocks.
func ListEmpty(head *Block) bool { return listEmpty(head) }

// ListInsertAfter splices n in immediately after at.
func ListInsertAfter(at, n *Block) { listInsertAfter(at, n) }

// ListInsertBefore splices n in immediately before at.
func ListInsertBefore(at, n *Block) { listInsertBefore(at, n) }

// ListExtract unlinks n from whatever list it is in.
func ListExtract(n *Block) { listExtract(n) }

// ListMerge splices src's list onto the tail of dst's list, leaving src
// empty.
func ListMerge(dst, src *Block) { listMerge(dst, src) }

// ForEachBlock walks head's list front-to-back, as described on
// listForEach.
func ForEachBlock(head *Block, fn func(b *Block) bool) { listForEach(head, fn) }

// ListCount returns the number of payload blocks in head's list.
func ListCount(head *Block) int { return listCount(head) }
