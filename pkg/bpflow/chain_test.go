package bpflow

import (
	"testing"

	"github.com/thnkslprpt/bplib/pkg/bpblock"
)

func chunkListFromStrings(t *testing.T, p *bpblock.Pool, parts ...string) *bpblock.Block {
	t.Helper()

	var head bpblock.Block
	bpblock.InitList(&head)

	for _, part := range parts {
		c, err := bpblock.MakeCBORData(p, []byte(part))
		if err != nil {
			t.Fatalf("MakeCBORData(%q): %v", part, err)
		}
		bpblock.ListInsertBefore(&head, c.AsBlock())
	}

	return &head
}

func collectChunkBytes(t *testing.T, head *bpblock.Block) string {
	t.Helper()

	var out []byte
	bpblock.ForEachBlock(head, func(b *bpblock.Block) bool {
		c, err := bpblock.CastCBORData(b)
		if err != nil {
			t.Fatalf("CastCBORData: %v", err)
		}
		out = append(out, c.Bytes()...)
		return true
	})
	return string(out)
}

func Test_CopyBlockChain_Copies_Whole_Chain_With_No_Seek_Or_Limit(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(32)
	src := chunkListFromStrings(t, p, "hello, ", "world")

	var dst bpblock.Block
	bpblock.InitList(&dst)

	n, err := CopyBlockChain(p, &dst, src, 0, 0)
	if err != nil {
		t.Fatalf("CopyBlockChain: %v", err)
	}
	if n != len("hello, world") {
		t.Fatalf("copied bytes: got %d, want %d", n, len("hello, world"))
	}
	if got := collectChunkBytes(t, &dst); got != "hello, world" {
		t.Fatalf("dst contents: got %q, want %q", got, "hello, world")
	}
}

func Test_CopyBlockChain_Honors_Seek_Across_Chunk_Boundary(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(32)
	src := chunkListFromStrings(t, p, "0123", "4567", "89ab")

	var dst bpblock.Block
	bpblock.InitList(&dst)

	n, err := CopyBlockChain(p, &dst, src, 6, 0)
	if err != nil {
		t.Fatalf("CopyBlockChain: %v", err)
	}
	want := "6789ab"
	if n != len(want) {
		t.Fatalf("copied bytes: got %d, want %d", n, len(want))
	}
	if got := collectChunkBytes(t, &dst); got != want {
		t.Fatalf("dst contents: got %q, want %q", got, want)
	}
}

func Test_CopyBlockChain_Honors_MaxCount_Clamp(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(32)
	src := chunkListFromStrings(t, p, "abcdefghij")

	var dst bpblock.Block
	bpblock.InitList(&dst)

	n, err := CopyBlockChain(p, &dst, src, 2, 4)
	if err != nil {
		t.Fatalf("CopyBlockChain: %v", err)
	}
	want := "cdef"
	if n != len(want) {
		t.Fatalf("copied bytes: got %d, want %d", n, len(want))
	}
	if got := collectChunkBytes(t, &dst); got != want {
		t.Fatalf("dst contents: got %q, want %q", got, want)
	}
}

func Test_CopyBlockChain_Seek_Past_End_Copies_Nothing(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(32)
	src := chunkListFromStrings(t, p, "short")

	var dst bpblock.Block
	bpblock.InitList(&dst)

	n, err := CopyBlockChain(p, &dst, src, 100, 0)
	if err != nil {
		t.Fatalf("CopyBlockChain: %v", err)
	}
	if n != 0 {
		t.Fatalf("copied bytes past end: got %d, want 0", n)
	}
	if !bpblock.ListEmpty(&dst) {
		t.Fatalf("dst not empty after seek-past-end copy")
	}
}
