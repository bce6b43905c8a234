package bpstore

import (
	"encoding/binary"
	"fmt"
	"io"
)

// objectHeaderSize is the encoded size, in bytes, of an object_header
// record (spec §4.F object_header{handle, sid, size}): a 4-byte handle, an
// 8-byte SID, and a 4-byte payload size, all little-endian.
const objectHeaderSize = 4 + 8 + 4

// objectHeader is the fixed-size record prefix written ahead of every
// enqueued payload.
type objectHeader struct {
	Handle Handle
	SID    SID
	Size   uint32
}

func (h objectHeader) encode() [objectHeaderSize]byte {
	var buf [objectHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Handle))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(h.SID))
	binary.LittleEndian.PutUint32(buf[12:16], h.Size)
	return buf
}

func decodeObjectHeader(buf []byte) objectHeader {
	return objectHeader{
		Handle: Handle(binary.LittleEndian.Uint32(buf[0:4])),
		SID:    SID(binary.LittleEndian.Uint64(buf[4:12])),
		Size:   binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// Object is a payload retrieved from a store, tagged with the SID it was
// stored under.
type Object struct {
	Handle Handle
	SID    SID
	Data   []byte
}

// writeRecord appends one size-prefixed record to w: a 4-byte little-endian
// total length, the object_header, then data (spec §4.F's on-disk record
// layout). It returns the number of bytes written and any write error.
func writeRecord(w io.Writer, hdr objectHeader, data []byte) (int, error) {
	hdr.Size = uint32(len(data))
	total := uint32(objectHeaderSize + len(data))

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], total)

	n1, err := w.Write(lenBuf[:])
	if err != nil {
		return n1, err
	}

	headerBuf := hdr.encode()
	n2, err := w.Write(headerBuf[:])
	if err != nil {
		return n1 + n2, err
	}

	n3, err := w.Write(data)
	return n1 + n2 + n3, err
}

// skipRecord reads a record's length prefix and seeks past its body,
// without decoding the header — used to fast-forward through a bucket file
// to a known offset after a write/read error truncated the file mid-record
// (spec §4.F "replay on error").
func skipRecord(r io.ReadSeeker) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return err
	}
	size := binary.LittleEndian.Uint32(lenBuf[:])
	_, err := r.Seek(int64(size), io.SeekCurrent)
	return err
}

// readRecord reads one size-prefixed record from r and splits it into its
// header and payload.
func readRecord(r io.Reader) (objectHeader, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return objectHeader{}, nil, err
	}
	size := binary.LittleEndian.Uint32(lenBuf[:])
	if size < objectHeaderSize {
		return objectHeader{}, nil, fmt.Errorf("%w: record size %d smaller than header", ErrFailedStore, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return objectHeader{}, nil, err
	}

	hdr := decodeObjectHeader(body[:objectHeaderSize])
	return hdr, body[objectHeaderSize:], nil
}
