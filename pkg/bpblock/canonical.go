package bpblock

// MakeCanonicalBlock allocates a canonical (extension/content) block with
// its own chunk list initialized to empty (spec §3 "Canonical"). It is not
// yet attached to any primary block; use [Primary.AppendCanonical].
func MakeCanonicalBlock(p *Pool) (*Canonical, error) {
	b, err := p.Alloc(TagCanonical)
	if err != nil {
		return nil, err
	}

	chunkHead, err := p.Alloc(TagHead)
	if err != nil {
		p.Release(b)
		return nil, err
	}
	listInit(chunkHead)

	b.canChunkList = chunkHead

	return (*Canonical)(b), nil
}

// ChunkList returns the head sentinel of c's encoded-chunk list.
func (c *Canonical) ChunkList() *Block { return c.canChunkList }

// Logical returns a pointer to c's logical field set for in-place editing.
func (c *Canonical) Logical() *CanonicalLogical { return &c.canLogical }

// BundleRef returns the parent primary block c is attached to, or nil if
// c has not yet been appended to one.
func (c *Canonical) BundleRef() *Block { return c.bundleRef }

// BlockEncodeSizeCache returns the cached encoded size of this canonical
// block, 0 if never computed.
func (c *Canonical) BlockEncodeSizeCache() uint64 { return c.canBlockEncodeSizeCache }

// SetBlockEncodeSizeCache stores this canonical block's encoded size.
func (c *Canonical) SetBlockEncodeSizeCache(n uint64) { c.canBlockEncodeSizeCache = n }

// ContentOffset and ContentLength report where, within the block's encoded
// chunk stream, the content field's bytes begin and how long they run —
// used by callers that need to patch or re-read content without
// re-encoding the whole block (spec §3 "content offset/length").
func (c *Canonical) ContentOffset() uint64 { return c.encodedContentOffset }
func (c *Canonical) ContentLength() uint64 { return c.encodedContentLength }

// SetContentSpan records the content field's offset and length within the
// block's encoded chunk stream.
func (c *Canonical) SetContentSpan(offset, length uint64) {
	c.encodedContentOffset = offset
	c.encodedContentLength = length
}
