package bpflow

import (
	"testing"

	"github.com/thnkslprpt/bplib/pkg/bpblock"
)

func Test_AppendSubqBundle_Drops_When_At_Capacity(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(8)
	var q bpblock.SubQueue
	bpblock.InitSubQueue(&q, 2)

	b1, _ := p.Alloc(bpblock.TagCBORData)
	b2, _ := p.Alloc(bpblock.TagCBORData)
	b3, _ := p.Alloc(bpblock.TagCBORData)

	if ok := AppendSubqBundle(&q, b1, 10); !ok {
		t.Fatalf("append #1: want accepted")
	}
	if ok := AppendSubqBundle(&q, b2, 10); !ok {
		t.Fatalf("append #2: want accepted")
	}
	if ok := AppendSubqBundle(&q, b3, 20); ok {
		t.Fatalf("append #3 at capacity: want dropped")
	}

	if q.Depth() != 2 {
		t.Fatalf("Depth(): got %d, want 2", q.Depth())
	}

	_, pulled, dropped, droppedBytes := q.Stats()
	if dropped != 1 {
		t.Fatalf("dropped count: got %d, want 1", dropped)
	}
	if droppedBytes != 20 {
		t.Fatalf("dropped bytes: got %d, want 20", droppedBytes)
	}
	if pulled != 0 {
		t.Fatalf("pulled count: got %d, want 0", pulled)
	}
}

func Test_ShiftSubqBundle_Returns_FIFO_Order(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(8)
	var q bpblock.SubQueue
	bpblock.InitSubQueue(&q, 0)

	b1, _ := p.Alloc(bpblock.TagCBORData)
	b2, _ := p.Alloc(bpblock.TagCBORData)

	AppendSubqBundle(&q, b1, 0)
	AppendSubqBundle(&q, b2, 0)

	got1, ok := ShiftSubqBundle(&q)
	if !ok || got1 != b1 {
		t.Fatalf("first shift: got %p ok=%v, want %p ok=true", got1, ok, b1)
	}
	got2, ok := ShiftSubqBundle(&q)
	if !ok || got2 != b2 {
		t.Fatalf("second shift: got %p ok=%v, want %p ok=true", got2, ok, b2)
	}
	_, ok = ShiftSubqBundle(&q)
	if ok {
		t.Fatalf("shift on empty queue: want ok=false")
	}
}

func Test_Unbounded_Queue_Never_Drops(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(64)
	var q bpblock.SubQueue
	bpblock.InitSubQueue(&q, 0)

	for range 50 {
		b, err := p.Alloc(bpblock.TagCBORData)
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		if ok := AppendSubqBundle(&q, b, 0); !ok {
			t.Fatalf("append to unbounded queue: want accepted")
		}
	}

	if q.Depth() != 50 {
		t.Fatalf("Depth(): got %d, want 50", q.Depth())
	}
}
