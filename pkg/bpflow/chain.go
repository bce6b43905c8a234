package bpflow

import "github.com/thnkslprpt/bplib/pkg/bpblock"

// CopyBlockChain walks src, a head sentinel of [bpblock.CBORData] chunks,
// skips the first seek bytes, and copies up to maxCount subsequent bytes
// into freshly allocated chunks linked under dst (which must already be an
// initialized empty list, e.g. via [bpblock.InitList]). maxCount <= 0 means
// unbounded: copy everything from seek to the end of src.
//
// It returns the number of bytes actually copied, which is less than
// maxCount if src ran out of data first.
//
// This is the primitive spec §4.E calls "copy_block_chain": used when a
// canonical block's content needs to be lifted out of its owning bundle's
// encoded chunk stream into a separate chunk list (e.g. for delivery to a
// local application, or storage retrieval).
func CopyBlockChain(p *bpblock.Pool, dst, src *bpblock.Block, seek int, maxCount int) (int, error) {
	remaining := maxCount
	unbounded := maxCount <= 0
	skipped := 0
	copied := 0

	var outErr error
	bpblock.ForEachBlock(src, func(b *bpblock.Block) bool {
		chunk, err := bpblock.CastCBORData(b)
		if err != nil {
			return true
		}

		data := chunk.Bytes()

		if skipped < seek {
			toSkip := seek - skipped
			if toSkip >= len(data) {
				skipped += len(data)
				return true
			}
			data = data[toSkip:]
			skipped = seek
		}

		for len(data) > 0 {
			if !unbounded && remaining <= 0 {
				return false
			}

			take := len(data)
			if !unbounded && take > remaining {
				take = remaining
			}
			if take > bpblock.MaxEncodedChunkSize {
				take = bpblock.MaxEncodedChunkSize
			}

			out, err := bpblock.MakeCBORData(p, data[:take])
			if err != nil {
				outErr = err
				return false
			}
			bpblock.ListInsertBefore(dst, (*bpblock.Block)(out))

			copied += take
			if !unbounded {
				remaining -= take
			}
			data = data[take:]
		}

		return true
	})

	return copied, outErr
}
