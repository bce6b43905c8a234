package bpwire

import (
	"bytes"
	"testing"

	"github.com/thnkslprpt/bplib/pkg/bpblock"
)

func Test_EncodeChunks_Then_DecodeChunks_Round_Trips(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(64)
	payload := bytes.Repeat([]byte("bp"), bpblock.MaxEncodedChunkSize)

	var head bpblock.Block
	bpblock.InitList(&head)

	n, err := EncodeChunks(p, &head, payload)
	if err != nil {
		t.Fatalf("EncodeChunks: %v", err)
	}
	if n < 2 {
		t.Fatalf("EncodeChunks chunk count: got %d, want >= 2 for a payload this size", n)
	}

	if got := TotalLength(&head); got != len(payload) {
		t.Fatalf("TotalLength: got %d, want %d", got, len(payload))
	}

	got, err := DecodeChunks(&head)
	if err != nil {
		t.Fatalf("DecodeChunks: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(payload))
	}
}

func Test_EncodeChunks_Empty_Data_Produces_No_Chunks(t *testing.T) {
	t.Parallel()

	p := bpblock.NewPool(4)
	var head bpblock.Block
	bpblock.InitList(&head)

	n, err := EncodeChunks(p, &head, nil)
	if err != nil {
		t.Fatalf("EncodeChunks: %v", err)
	}
	if n != 0 {
		t.Fatalf("chunk count for empty data: got %d, want 0", n)
	}
	if !bpblock.ListEmpty(&head) {
		t.Fatalf("list not empty after encoding empty data")
	}
}
