package bpblock

// BPHandle names an external interface (ingress, egress, or storage) a flow
// or primary block's delivery metadata refers to. It is deliberately opaque
// to this package, matching spec §3's bp_handle_t.
type BPHandle uint32

// InvalidHandle is the zero value of BPHandle, used where spec.md leaves a
// handle field unset.
const InvalidHandle BPHandle = 0

// DiscardFunc is invoked exactly once when a heavy reference (a [Ref] block)
// is recycled, per spec §4.D. arg is the value passed to MakeBlockRef; target
// is the block the ref pointed at (still valid at the moment of the call —
// its refcount has not yet been decremented).
type DiscardFunc func(arg any, target *Block)

// DeliveryData carries a primary block's delivery metadata (spec §3).
type DeliveryData struct {
	Policy              uint32
	IngressIntfID       BPHandle
	EgressIntfID        BPHandle
	StorageIntfID       BPHandle
	CommittedStorageID  uint64
	LocalRetxIntervalMS int64
	IngressTimeUnixMS   int64
	EgressTimeUnixMS    int64
}

// PrimaryLogical carries the BP primary block's logical fields. Full BP v7
// primary-block field semantics (CBOR encode/decode) live outside this
// package's scope (spec §1); this struct holds just enough for the mpool's
// own bookkeeping and tests to exercise the canonical/chunk list machinery.
type PrimaryLogical struct {
	Version       uint8
	ControlFlags  uint64
	DestEID       string
	SourceEID     string
	ReportToEID   string
	CreationTime  int64
	SequenceNum   uint64
	LifetimeMS    int64
	TotalADULen   uint64
	FragmentOffs  uint64
}

// CanonicalLogical carries a canonical (extension/content) block's logical
// fields.
type CanonicalLogical struct {
	BlockType   uint8
	BlockNum    uint64
	ControlFlags uint64
	CRCType     uint8
}

// Block is the universal record the pool allocates, exactly spec §3's
// "universal record. Every block begins with {type-tag, prev, next}."
//
// In the original C implementation, different block variants are distinct
// structs of different sizes carved from the same fixed-size arena record;
// here a single flat struct holds every variant's fields side by side and
// Tag says which ones are live, which is the Go-idiomatic "sum type" the
// design notes call for (see DESIGN.md) while still giving the arena a
// single, uniform record size to allocate.
//
// A Block must be obtained from a [Pool]; the zero value is not attached to
// any pool and must not be used.
type Block struct {
	tag  Tag
	prev *Block
	next *Block

	// refcount is valid whenever tag.IsRefCounted() (spec §3).
	refcount int32

	// ref (tag == TagRef)
	refTarget  *Block
	discardCB  DiscardFunc
	discardArg any

	// cbor_data (tag == TagCBORData)
	chunk    [MaxEncodedChunkSize]byte
	chunkLen int

	// service_object (tag == TagServiceObject)
	serviceMagic   uint32
	servicePayload any

	// primary (tag == TagPrimary)
	canonicalList         *Block // head sentinel of the canonical-block list
	priChunkList          *Block // head sentinel of the primary's own encoded chunks
	priLogical            PrimaryLogical
	blockEncodeSizeCache  uint64
	bundleEncodeSizeCache uint64
	delivery              DeliveryData

	// canonical (tag == TagCanonical)
	canChunkList            *Block // head sentinel of this canonical's encoded chunks
	bundleRef               *Block // parent primary block (tag == TagPrimary)
	canLogical              CanonicalLogical
	canBlockEncodeSizeCache uint64
	encodedContentOffset    uint64
	encodedContentLength    uint64

	// flow (tag == TagFlow)
	externalID BPHandle
	input      *SubQueue
	output     *SubQueue
	parent     *Block // light reference to a parent object, if any

	// secondary link support (spec §4.C / §9): a block allocated as a
	// participant in a second list (e.g. an external red-black index)
	// remembers the block it is attached to so ObtainBaseBlock can
	// recover it. See DESIGN.md for why this replaces byte-offset
	// arithmetic.
	secondaryParent *Block
}

// Tag returns the block's current type tag.
func (b *Block) Tag() Tag { return b.tag }

// Refcount returns the block's current reference count. Always 0 for
// non-refcounted tags (spec §3 invariant 4: refcount >= 0 always).
func (b *Block) Refcount() int32 { return b.refcount }
