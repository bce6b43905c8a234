package bpwire

import "github.com/thnkslprpt/bplib/pkg/bpblock"

// EncodeChunks splits data into a chain of [bpblock.CBORData] blocks of at
// most [bpblock.MaxEncodedChunkSize] bytes each, linking them in order
// under dst (an already-initialized empty list head, e.g. a [bpblock.Primary]'s
// or [bpblock.Canonical]'s chunk list). Returns the number of chunks
// created.
func EncodeChunks(p *bpblock.Pool, dst *bpblock.Block, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	n := 0
	for len(data) > 0 {
		take := len(data)
		if take > bpblock.MaxEncodedChunkSize {
			take = bpblock.MaxEncodedChunkSize
		}

		c, err := bpblock.MakeCBORData(p, data[:take])
		if err != nil {
			return n, err
		}
		bpblock.ListInsertBefore(dst, c.AsBlock())

		data = data[take:]
		n++
	}

	return n, nil
}

// DecodeChunks concatenates every chunk under src's list, in list order,
// into a single byte slice.
func DecodeChunks(src *bpblock.Block) ([]byte, error) {
	var out []byte

	var castErr error
	bpblock.ForEachBlock(src, func(b *bpblock.Block) bool {
		c, err := bpblock.CastCBORData(b)
		if err != nil {
			castErr = err
			return false
		}
		out = append(out, c.Bytes()...)
		return true
	})

	return out, castErr
}

// TotalLength returns the sum of every chunk's length under src's list,
// without copying any bytes — useful for pre-sizing a retrieval buffer.
func TotalLength(src *bpblock.Block) int {
	total := 0
	bpblock.ForEachBlock(src, func(b *bpblock.Block) bool {
		if c, err := bpblock.CastCBORData(b); err == nil {
			total += c.Len()
		}
		return true
	})
	return total
}
