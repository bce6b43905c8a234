package bpblock

import (
	"errors"
	"testing"
)

func Test_Pool_Alloc_Returns_ErrOutOfMemory_When_Exhausted(t *testing.T) {
	t.Parallel()

	p := NewPool(2)

	b1, err := p.Alloc(TagCBORData)
	if err != nil {
		t.Fatalf("Alloc #1: %v", err)
	}
	b2, err := p.Alloc(TagCBORData)
	if err != nil {
		t.Fatalf("Alloc #2: %v", err)
	}
	_ = b1
	_ = b2

	_, err = p.Alloc(TagCBORData)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Alloc #3: err=%v, want %v", err, ErrOutOfMemory)
	}
}

func Test_Pool_Maintain_Reclaims_Released_Blocks(t *testing.T) {
	t.Parallel()

	p := NewPool(1)

	b, err := p.Alloc(TagCBORData)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if p.FreeCount() != 0 {
		t.Fatalf("FreeCount after single Alloc: got %d, want 0", p.FreeCount())
	}

	p.Release(b)
	if p.RecycledCount() != 1 {
		t.Fatalf("RecycledCount after Release: got %d, want 1", p.RecycledCount())
	}

	// Alloc triggers Maintain automatically once the free list is empty.
	b2, err := p.Alloc(TagCBORData)
	if err != nil {
		t.Fatalf("Alloc after release: %v", err)
	}
	if b2.Tag() != TagCBORData {
		t.Fatalf("reclaimed block tag: got %v, want %v", b2.Tag(), TagCBORData)
	}
	if p.RecycledCount() != 0 {
		t.Fatalf("RecycledCount after reclaim: got %d, want 0", p.RecycledCount())
	}
}

func Test_Pool_Alloc_Zeroes_Previous_Payload(t *testing.T) {
	t.Parallel()

	p := NewPool(1)

	b, err := p.Alloc(TagCBORData)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	chunk, err := CastCBORData(b)
	if err != nil {
		t.Fatalf("CastCBORData: %v", err)
	}
	if chunk.Len() != 0 {
		t.Fatalf("Len() of fresh chunk: got %d, want 0", chunk.Len())
	}
	copy(b.chunk[:], "leftover data that must not resurface")
	b.chunkLen = 5

	p.Release(b)
	p.Maintain()

	b2, err := p.Alloc(TagPrimary)
	if err != nil {
		t.Fatalf("Alloc after reclaim: %v", err)
	}
	if b2.refTarget != nil {
		t.Fatalf("reclaimed block carries stale refTarget")
	}
	if b2.chunkLen != 0 {
		t.Fatalf("reclaimed block carries stale chunkLen: %d", b2.chunkLen)
	}
}

func Test_Pool_AddRef_And_DropRef_Release_At_Zero(t *testing.T) {
	t.Parallel()

	p := NewPool(1)

	b, err := p.Alloc(TagCBORData)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if b.Refcount() != 1 {
		t.Fatalf("fresh refcount: got %d, want 1", b.Refcount())
	}

	p.AddRef(b)
	if b.Refcount() != 2 {
		t.Fatalf("refcount after AddRef: got %d, want 2", b.Refcount())
	}

	if released := p.DropRef(b); released {
		t.Fatalf("DropRef at refcount 2 reported released")
	}
	if !p.DropRef(b) {
		t.Fatalf("DropRef at refcount 1 did not report released")
	}
	if p.RecycledCount() != 1 {
		t.Fatalf("RecycledCount after final DropRef: got %d, want 1", p.RecycledCount())
	}
}

func Test_Pool_DropRef_Panics_On_Double_Release(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	b, err := p.Alloc(TagCBORData)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	p.DropRef(b)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double DropRef")
		}
	}()
	p.DropRef(b)
}

func Test_Pool_MarkFlowActive_Is_Idempotent(t *testing.T) {
	t.Parallel()

	p := NewPool(4)
	flowBlock, err := p.Alloc(TagFlow)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	p.MarkFlowActive(flowBlock)
	p.MarkFlowActive(flowBlock)

	if got := ListCount(p.ActiveFlows()); got != 1 {
		t.Fatalf("active flow list count: got %d, want 1", got)
	}
}

func Test_Pool_Capacity_Reflects_NewPool_Size(t *testing.T) {
	t.Parallel()

	p := NewPool(16)
	if p.Capacity() != 16 {
		t.Fatalf("Capacity(): got %d, want 16", p.Capacity())
	}
	if p.FreeCount() != 16 {
		t.Fatalf("FreeCount(): got %d, want 16", p.FreeCount())
	}
}
