package bpstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/thnkslprpt/bplib/pkg/bpfs"
)

func Test_RelinquishTable_Encode_Decode_Round_Trips(t *testing.T) {
	t.Parallel()

	var want relinquishTable
	want.freed[3] = true
	want.freed[200] = true
	want.freeCnt = 2

	got, err := decodeRelinquishTable(want.encode())
	require.NoError(t, err, "decodeRelinquishTable should accept a freshly encoded table")

	diff := cmp.Diff(want, got, cmp.AllowUnexported(relinquishTable{}))
	require.Empty(t, diff, "round trip should preserve freed slots and free count exactly")
}

func Test_RelinquishTable_Decode_Rejects_Wrong_Size(t *testing.T) {
	t.Parallel()

	_, err := decodeRelinquishTable([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrFailedStore, "a truncated buffer should be reported as a store failure")
}

func Test_RelinquishTable_Write_Read_Round_Trips_Through_Fake_FS(t *testing.T) {
	t.Parallel()

	fs := bpfs.NewFake()
	require.NoError(t, fs.MkdirAll("/store", 0o755))
	path := tblFilename("/store", 1, 0)

	var want relinquishTable
	want.freed[0] = true
	want.freeCnt = 1

	require.NoError(t, writeRelinquishTableAtomic(fs, path, want))

	got, found, err := readRelinquishTable(fs, path)
	require.NoError(t, err)
	require.True(t, found, "table written moments ago should be found")

	diff := cmp.Diff(want, got, cmp.AllowUnexported(relinquishTable{}), cmpopts.EquateEmpty())
	require.Empty(t, diff)
}

func Test_ReadRelinquishTable_Reports_Not_Found_Without_Error(t *testing.T) {
	t.Parallel()

	fs := bpfs.NewFake()
	require.NoError(t, fs.MkdirAll("/store", 0o755))

	_, found, err := readRelinquishTable(fs, tblFilename("/store", 1, 0))
	require.NoError(t, err)
	require.False(t, found, "a table that was never written should not be found")
}
