package bpblock

// Primary is a type-safe view onto a [Block] tagged [TagPrimary]. It shares
// Block's underlying memory layout, so casting between the two is a plain
// pointer conversion rather than a copy (spec §4.C "safe downcast without
// copying").
type Primary Block

// Canonical is a type-safe view onto a [Block] tagged [TagCanonical].
type Canonical Block

// Flow is a type-safe view onto a [Block] tagged [TagFlow].
type Flow Block

// CBORData is a type-safe view onto a [Block] tagged [TagCBORData].
type CBORData Block

// ServiceObject is a type-safe view onto a [Block] tagged [TagServiceObject].
type ServiceObject Block

// Ref is a type-safe view onto a [Block] tagged [TagRef].
type Ref Block

// CastPrimary returns b reinterpreted as a *Primary, or [ErrWrongTag] if
// b.Tag() is not [TagPrimary]. This is the package's answer to spec §4.C's
// "safe downcast" requirement: Go forbids reinterpreting one named struct
// pointer as another unless the two share an identical underlying type,
// which Primary/Canonical/Flow/... do by construction (each is `type X
// Block`), so the cast below is a compile-time-checked, zero-copy pointer
// conversion guarded by a runtime tag check.
//
// b is first unwrapped via [ObtainBaseBlock], so a heavy [Ref] standing in
// for a primary block (spec §4.D: a bundle sitting on both an egress queue
// and a storage queue without copying its payload) casts through to the
// primary it targets instead of failing with [ErrWrongTag].
func CastPrimary(b *Block) (*Primary, error) {
	b = ObtainBaseBlock(b)
	if b.tag != TagPrimary {
		return nil, ErrWrongTag
	}
	return (*Primary)(b), nil
}

// CastCanonical returns b reinterpreted as a *Canonical, or [ErrWrongTag].
// b is first unwrapped via [ObtainBaseBlock]; see [CastPrimary].
func CastCanonical(b *Block) (*Canonical, error) {
	b = ObtainBaseBlock(b)
	if b.tag != TagCanonical {
		return nil, ErrWrongTag
	}
	return (*Canonical)(b), nil
}

// CastFlow returns b reinterpreted as a *Flow, or [ErrWrongTag]. b is first
// unwrapped via [ObtainBaseBlock]; see [CastPrimary].
func CastFlow(b *Block) (*Flow, error) {
	b = ObtainBaseBlock(b)
	if b.tag != TagFlow {
		return nil, ErrWrongTag
	}
	return (*Flow)(b), nil
}

// CastCBORData returns b reinterpreted as a *CBORData, or [ErrWrongTag].
func CastCBORData(b *Block) (*CBORData, error) {
	if b.tag != TagCBORData {
		return nil, ErrWrongTag
	}
	return (*CBORData)(b), nil
}

// CastServiceObject returns b reinterpreted as a *ServiceObject, along with
// a magic-number check: magic must match what MakeServiceObject recorded at
// allocation time, or [ErrWrongTag] is returned even if the tag matches
// (spec §4.C "service objects are additionally guarded by a magic number").
func CastServiceObject(b *Block, magic uint32) (*ServiceObject, error) {
	if b.tag != TagServiceObject || b.serviceMagic != magic {
		return nil, ErrWrongTag
	}
	return (*ServiceObject)(b), nil
}

// CastRef returns b reinterpreted as a *Ref, or [ErrWrongTag].
func CastRef(b *Block) (*Ref, error) {
	if b.tag != TagRef {
		return nil, ErrWrongTag
	}
	return (*Ref)(b), nil
}

// AsBlock recovers the underlying *Block from any typed view, the inverse
// of the Cast* functions.
func (p *Primary) AsBlock() *Block        { return (*Block)(p) }
func (c *Canonical) AsBlock() *Block      { return (*Block)(c) }
func (f *Flow) AsBlock() *Block           { return (*Block)(f) }
func (c *CBORData) AsBlock() *Block       { return (*Block)(c) }
func (s *ServiceObject) AsBlock() *Block  { return (*Block)(s) }
func (r *Ref) AsBlock() *Block            { return (*Block)(r) }

// ObtainBaseBlock walks through any ref indirection and secondary-link
// parent pointer to return the underlying payload-carrying block (spec
// §4.C "obtain base block": given any pointer a caller holds — a light
// reference, a heavy ref proxy, or a secondary-link participant — recover
// the block that actually owns the payload).
func ObtainBaseBlock(b *Block) *Block {
	for {
		switch {
		case b.tag == TagRef:
			b = b.refTarget
		case b.secondaryParent != nil:
			b = b.secondaryParent
		default:
			return b
		}
	}
}

// GetGenericBlockFromPointer recovers the owning *Block of a secondary-link
// participant, or returns ptr unchanged if it is not a secondary link (spec
// §4.C). Unlike [ObtainBaseBlock] it does not also chase ref indirection.
func GetGenericBlockFromPointer(ptr *Block) *Block {
	if ptr.secondaryParent != nil {
		return ptr.secondaryParent
	}
	return ptr
}
