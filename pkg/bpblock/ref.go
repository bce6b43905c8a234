package bpblock

// This file implements spec §4.D's two reference flavors:
//
//   - light reference: no separate allocation, just an incremented
//     refcount on the target block itself. Cheap, but every holder must
//     independently know the target's concrete tag.
//   - heavy reference ([Ref]): a small proxy block allocated from the pool
//     that points at the target and carries a discard callback, fired
//     exactly once when the last heavy reference goes away. Used when a
//     holder needs its own lifetime hook independent of the target's other
//     referents.

// DuplicateLightReference increments b's refcount and returns b unchanged.
// The caller now owns one more unit of b's lifetime and must eventually
// call [Pool.DropRef] (or [ReleaseLightReference]) on it.
func DuplicateLightReference(p *Pool, b *Block) *Block {
	p.AddRef(b)
	return b
}

// ReleaseLightReference drops one unit of b's lifetime, recycling it if
// that was the last one. Returns true if b was recycled.
func ReleaseLightReference(p *Pool, b *Block) bool {
	return p.DropRef(b)
}

// MakeBlockRef allocates a heavy reference proxy pointing at target,
// incrementing target's refcount so it cannot be recycled out from under
// the proxy. discard, if non-nil, runs exactly once — immediately before
// the proxy itself is recycled — with arg and target passed through (spec
// §4.D). The caller owns the returned *Ref and must eventually release it.
func MakeBlockRef(p *Pool, target *Block, discard DiscardFunc, arg any) (*Ref, error) {
	b, err := p.Alloc(TagRef)
	if err != nil {
		return nil, err
	}

	p.AddRef(target)
	b.refTarget = target
	b.discardCB = discard
	b.discardArg = arg

	return (*Ref)(b), nil
}

// DuplicateBlockReference increments a heavy reference proxy's own
// refcount and returns the same proxy, so two holders can share one
// discard callback invocation (the callback fires once, when the last
// holder releases the shared proxy).
func DuplicateBlockReference(p *Pool, r *Ref) *Ref {
	p.AddRef((*Block)(r))
	return r
}

// ReleaseBlockReference drops one unit of the proxy's own lifetime. Once
// the last holder releases it, the proxy's discard callback fires and the
// target's light reference (taken in MakeBlockRef) is dropped in turn.
// Returns true if the proxy was recycled by this call.
func ReleaseBlockReference(p *Pool, r *Ref) bool {
	b := (*Block)(r)
	target := b.refTarget

	recycled := p.DropRef(b)
	if recycled {
		p.DropRef(target)
	}

	return recycled
}

// Target returns the block a heavy reference points at.
func (r *Ref) Target() *Block { return r.refTarget }

// MakeServiceObject allocates a TagServiceObject block guarding payload
// with magic, so later callers can only retrieve it via the matching
// [CastServiceObject] call (spec §4.C).
func MakeServiceObject(p *Pool, magic uint32, payload any) (*ServiceObject, error) {
	b, err := p.Alloc(TagServiceObject)
	if err != nil {
		return nil, err
	}

	b.serviceMagic = magic
	b.servicePayload = payload

	return (*ServiceObject)(b), nil
}

// Payload returns the opaque value stored at allocation time.
func (s *ServiceObject) Payload() any { return s.servicePayload }

// MakeCBORData allocates a TagCBORData block and copies data into it. data
// must not exceed [MaxEncodedChunkSize] bytes; longer payloads must be
// chained across multiple blocks by the caller (spec §6).
func MakeCBORData(p *Pool, data []byte) (*CBORData, error) {
	if len(data) > MaxEncodedChunkSize {
		panic("bpblock: MakeCBORData payload exceeds MaxEncodedChunkSize")
	}

	b, err := p.Alloc(TagCBORData)
	if err != nil {
		return nil, err
	}

	n := copy(b.chunk[:], data)
	b.chunkLen = n

	return (*CBORData)(b), nil
}

// Bytes returns the chunk's payload.
func (c *CBORData) Bytes() []byte { return c.chunk[:c.chunkLen] }

// Len returns the chunk's payload length.
func (c *CBORData) Len() int { return c.chunkLen }
