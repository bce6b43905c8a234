package bpblock

// MakePrimaryBlock allocates a primary block with its canonical-block list
// and own chunk list initialized to empty (spec §3 "Primary").
func MakePrimaryBlock(p *Pool) (*Primary, error) {
	b, err := p.Alloc(TagPrimary)
	if err != nil {
		return nil, err
	}

	canonicalHead, err := p.Alloc(TagHead)
	if err != nil {
		p.Release(b)
		return nil, err
	}
	listInit(canonicalHead)

	chunkHead, err := p.Alloc(TagHead)
	if err != nil {
		p.Release(b)
		p.Release(canonicalHead)
		return nil, err
	}
	listInit(chunkHead)

	b.canonicalList = canonicalHead
	b.priChunkList = chunkHead

	return (*Primary)(b), nil
}

// CanonicalList returns the head sentinel of pr's canonical-block list, for
// use with listForEach-style iteration in pkg/bpflow and pkg/bpstore.
func (pr *Primary) CanonicalList() *Block { return pr.canonicalList }

// ChunkList returns the head sentinel of pr's own encoded-chunk list (the
// primary block's serialized bytes, possibly split across several
// [CBORData] blocks per spec §6).
func (pr *Primary) ChunkList() *Block { return pr.priChunkList }

// Logical returns a pointer to pr's logical field set for in-place editing.
func (pr *Primary) Logical() *PrimaryLogical { return &pr.priLogical }

// Delivery returns a pointer to pr's delivery metadata for in-place
// editing (spec §3 DeliveryData).
func (pr *Primary) Delivery() *DeliveryData { return &pr.delivery }

// BlockEncodeSizeCache returns the cached encoded size of the primary block
// itself (0 if never computed).
func (pr *Primary) BlockEncodeSizeCache() uint64 { return pr.blockEncodeSizeCache }

// SetBlockEncodeSizeCache stores the primary block's encoded size.
func (pr *Primary) SetBlockEncodeSizeCache(n uint64) { pr.blockEncodeSizeCache = n }

// BundleEncodeSizeCache returns the cached total encoded size of the whole
// bundle (primary plus every canonical block), 0 if never computed.
func (pr *Primary) BundleEncodeSizeCache() uint64 { return pr.bundleEncodeSizeCache }

// SetBundleEncodeSizeCache stores the bundle's total encoded size.
func (pr *Primary) SetBundleEncodeSizeCache(n uint64) { pr.bundleEncodeSizeCache = n }

// AppendCanonical links c onto the tail of pr's canonical-block list. c
// must be a solitary canonical block (not already linked elsewhere); its
// BundleRef is set to pr's underlying block.
func (pr *Primary) AppendCanonical(c *Canonical) {
	cb := (*Block)(c)
	cb.bundleRef = (*Block)(pr)
	listInsertBefore(pr.canonicalList, cb)
}

// CanonicalCount returns the number of canonical blocks currently attached
// to pr.
func (pr *Primary) CanonicalCount() int { return listCount(pr.canonicalList) }
