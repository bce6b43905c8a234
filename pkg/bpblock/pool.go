package bpblock

// Pool is the fixed-size block arena (spec §4.B). It is created once over a
// record count decided at startup and never grows; callers size it via
// [bpconfig.PoolConfig.RecordCount].
//
// Pool is not safe for concurrent use; see the package doc comment.
type Pool struct {
	arena []Block

	free       Block // sentinel: blocks ready for immediate allocation
	recycled   Block // sentinel: released blocks awaiting maintain()
	activeFlow Block // sentinel: flows with pending work, see pkg/bpflow

	freeCount int
}

// NewPool carves recordCount fixed-size [Block] records out of a
// contiguous slice and threads them onto the free list. recordCount must be
// positive.
func NewPool(recordCount int) *Pool {
	if recordCount <= 0 {
		recordCount = 1
	}

	p := &Pool{arena: make([]Block, recordCount)}

	listInit(&p.free)
	listInit(&p.recycled)
	listInit(&p.activeFlow)

	for i := range p.arena {
		b := &p.arena[i]
		b.tag = TagFree
		listInsertBefore(&p.free, b)
	}
	p.freeCount = recordCount

	return p
}

// Capacity returns the total number of records the pool was created with.
func (p *Pool) Capacity() int { return len(p.arena) }

// FreeCount returns the number of records immediately available for
// allocation, not counting anything still sitting on the recycled list.
func (p *Pool) FreeCount() int { return p.freeCount }

// RecycledCount returns the number of released blocks awaiting [Pool.Maintain].
func (p *Pool) RecycledCount() int { return listCount(&p.recycled) }

// Maintain sweeps the recycled list back onto the free list, clearing each
// block's payload fields and resetting its tag (spec §4.B "maintain():
// reclamation sweep"). Allocation calls Maintain automatically once the
// free list is exhausted, but callers may also call it eagerly (e.g. at the
// top of a processing cycle) to keep allocation latency flat.
func (p *Pool) Maintain() {
	reclaimed := 0
	listForEach(&p.recycled, func(b *Block) bool {
		*b = Block{tag: TagFree, prev: b.prev, next: b.next}
		reclaimed++
		return true
	})

	listMerge(&p.free, &p.recycled)
	p.freeCount += reclaimed
}

// Alloc takes one record off the free list, tags it, and returns it zeroed
// of any previous payload. It returns [ErrOutOfMemory] if the free list is
// exhausted even after a [Pool.Maintain] sweep.
func (p *Pool) Alloc(tag Tag) (*Block, error) {
	if listEmpty(&p.free) {
		p.Maintain()
		if listEmpty(&p.free) {
			return nil, ErrOutOfMemory
		}
	}

	b := p.free.next
	listExtract(b)
	p.freeCount--

	*b = Block{tag: tag, prev: b, next: b}
	if tag.IsRefCounted() {
		b.refcount = 1
	}

	return b, nil
}

// Release queues b onto the recycled list for later reclamation by
// [Pool.Maintain] (spec §4.B "released blocks queue on a recycled list").
// The caller must have already unlinked b from any list it participated in
// and dropped its refcount to zero (see [Pool.DropRef]). b's tag is cleared
// to [TagFree] here; its payload fields are cleared by Maintain.
func (p *Pool) Release(b *Block) {
	listExtract(b)
	b.tag = TagFree
	listInsertBefore(&p.recycled, b)
}

// DropRef decrements b's refcount and releases it to the pool once the
// count reaches zero, returning true if the block was released (spec §4.D).
// It panics if b's tag is not refcounted or the count is already zero,
// since that indicates a double-release bug in the caller.
func (p *Pool) DropRef(b *Block) bool {
	if !b.tag.IsRefCounted() {
		panic("bpblock: DropRef on non-refcounted block")
	}
	if b.refcount <= 0 {
		panic("bpblock: DropRef on block with non-positive refcount")
	}

	b.refcount--
	if b.refcount == 0 {
		p.fireDiscard(b)
		p.Release(b)
		return true
	}

	return false
}

// fireDiscard runs a ref block's discard callback, if any, immediately
// before the block is recycled. The callback runs synchronously inside
// DropRef; it is not queued or deferred, so a DropRef made from within a
// ProcessAllFlows callback fires its discard callback during that sweep.
func (p *Pool) fireDiscard(b *Block) {
	if b.tag == TagRef && b.discardCB != nil {
		cb := b.discardCB
		target := b.refTarget
		arg := b.discardArg
		b.discardCB = nil
		cb(arg, target)
	}
}

// AddRef increments a refcounted block's count by one (light-reference
// duplication, spec §4.D).
func (p *Pool) AddRef(b *Block) {
	if !b.tag.IsRefCounted() {
		panic("bpblock: AddRef on non-refcounted block")
	}
	b.refcount++
}

// MarkFlowActive links a flow block onto the pool's active-flow list if it
// is not already linked there, so a later ProcessAllFlows sweep (pkg/bpflow)
// will visit it (spec §4.E).
func (p *Pool) MarkFlowActive(b *Block) {
	if b.tag != TagFlow {
		panic("bpblock: MarkFlowActive on non-flow block")
	}
	if b.prev != b || b.next != b {
		// already linked somewhere (the active list, since flow blocks
		// otherwise stay solitary) — nothing to do.
		return
	}
	listInsertBefore(&p.activeFlow, b)
}

// ActiveFlows returns the head sentinel of the pool's active-flow list, for
// iteration by pkg/bpflow's ProcessAllFlows. Extracting a node from this
// list during iteration (via listForEach's extract-before-return contract)
// is how a sweep clears the active mark before invoking the flow's
// processing callback.
func (p *Pool) ActiveFlows() *Block { return &p.activeFlow }

// GenericDataCapacity reports the maximum payload length, in bytes, a
// TagCBORData block can hold (spec §4.B get_generic_data_capacity).
func (p *Pool) GenericDataCapacity() int { return MaxEncodedChunkSize }
