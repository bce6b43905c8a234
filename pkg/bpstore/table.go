package bpstore

import (
	"fmt"
	"io"

	"github.com/thnkslprpt/bplib/pkg/bpfs"
)

// relinquishTable tracks which slots of one bucket have been relinquished
// (spec §4.F): a flag per slot plus a running free count, persisted as a
// ".tbl" file when relinquishing moves on to another bucket, if any slot
// in this one was freed.
type relinquishTable struct {
	freed   [DataCountPerBucket]bool
	freeCnt int
}

const relinquishTableSize = DataCountPerBucket + 4 // bool array + int32 free count

func (t *relinquishTable) encode() []byte {
	buf := make([]byte, relinquishTableSize)
	for i, f := range t.freed {
		if f {
			buf[i] = 1
		}
	}
	putUint32(buf[DataCountPerBucket:], uint32(t.freeCnt))
	return buf
}

func decodeRelinquishTable(buf []byte) (relinquishTable, error) {
	var t relinquishTable
	if len(buf) != relinquishTableSize {
		return t, fmt.Errorf("%w: relinquish table size %d, want %d", ErrFailedStore, len(buf), relinquishTableSize)
	}
	for i := range t.freed {
		t.freed[i] = buf[i] != 0
	}
	t.freeCnt = int(getUint32(buf[DataCountPerBucket:]))
	return t, nil
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// writeRelinquishTableAtomic persists t to path via fs.WriteFile, which on
// [bpfs.Real] is an atomic rename (the store's use of
// github.com/natefinch/atomic) so a crash mid-write never leaves a
// half-written table behind (spec §4.F).
func writeRelinquishTableAtomic(fs bpfs.FS, path string, t relinquishTable) error {
	return fs.WriteFile(path, t.encode(), 0o644)
}

// readRelinquishTable loads a ".tbl" file's contents, or returns
// (relinquishTable{}, false, nil) if no such file exists yet.
func readRelinquishTable(fs bpfs.FS, path string) (relinquishTable, bool, error) {
	f, err := fs.Open(path)
	if err != nil {
		if isNotExist(err) {
			return relinquishTable{}, false, nil
		}
		return relinquishTable{}, false, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return relinquishTable{}, false, err
	}

	t, err := decodeRelinquishTable(buf)
	if err != nil {
		return relinquishTable{}, false, err
	}
	return t, true, nil
}
