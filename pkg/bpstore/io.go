package bpstore

import (
	"fmt"
	"io"
	"os"

	"github.com/thnkslprpt/bplib/pkg/bpfs"
)

// Enqueue appends data to h's store and returns the [SID] it was stored
// under (spec §4.F bplib_store_file_enqueue). The underlying bucket file
// is flushed before Enqueue returns, so a successful return means the
// record has reached stable storage.
func (m *Manager) Enqueue(h Handle, data []byte) (SID, error) {
	s, err := m.lookup(h)
	if err != nil {
		return SIDVacant, err
	}

	s.lock.Acquire()
	defer s.lock.Release()

	did := uint32(s.writeID - 1)
	bid := bucketID(did)

	if s.writeFD == nil {
		f, err := openDatFile(s.fs, s.root, s.serviceID, bid, false)
		if err != nil {
			return SIDVacant, fmt.Errorf("%w: open bucket %d for write: %v", ErrFailedStore, bid, err)
		}
		s.writeFD = f

		if s.writeError {
			if err := replaySeek(s.writeFD, bucketOffset(did)); err != nil {
				return SIDVacant, err
			}
		}
	}

	hdr := objectHeader{Handle: h, SID: SID(s.writeID)}
	if _, err := writeRecord(s.writeFD, hdr, data); err != nil {
		s.writeError = true
		closeIfOpen(s.writeFD)
		s.writeFD = nil
		return SIDVacant, fmt.Errorf("%w: write record: %v", ErrFailedStore, err)
	}

	if err := s.writeFD.Sync(); err != nil {
		s.writeError = true
		closeIfOpen(s.writeFD)
		s.writeFD = nil
		return SIDVacant, fmt.Errorf("%w: flush record: %v", ErrFailedStore, err)
	}

	sid := SID(s.writeID)

	if s.writeID%DataCountPerBucket == 0 {
		closeIfOpen(s.writeFD)
		s.writeFD = nil
	}

	s.writeError = false
	s.writeID++
	s.dataCount++
	s.lock.Signal()

	return sid, nil
}

// Dequeue blocks until a record is available (or timeoutMS elapses) and
// returns the oldest not-yet-dequeued record in FIFO order, locking its
// data cache cell (spec §4.F bplib_store_file_dequeue). timeoutMS < 0
// blocks indefinitely; timeoutMS == 0 returns [ErrTimeout] immediately if
// nothing is ready.
func (m *Manager) Dequeue(h Handle, timeoutMS int64) (Object, error) {
	s, err := m.lookup(h)
	if err != nil {
		return Object{}, err
	}

	s.lock.Acquire()
	defer s.lock.Release()

	if s.readID == s.writeID {
		if !s.lock.WaitOn(timeoutMS) || s.readID == s.writeID {
			return Object{}, ErrTimeout
		}
	}

	did := uint32(s.readID - 1)
	bid := bucketID(did)

	replay := s.readError
	if s.readFD == nil {
		f, err := openDatFile(s.fs, s.root, s.serviceID, bid, true)
		if err != nil {
			return Object{}, fmt.Errorf("%w: open bucket %d for read: %v", ErrFailedStore, bid, err)
		}
		s.readFD = f
		// A fresh descriptor starts at slot 0; after a restart the read
		// cursor can sit partway into the bucket.
		replay = replay || bucketOffset(did) != 0
	}

	if replay {
		if err := replaySeek(s.readFD, bucketOffset(did)); err != nil {
			return Object{}, err
		}
	}

	hdr, data, err := readRecord(s.readFD)
	if err != nil {
		s.readError = true
		closeIfOpen(s.readFD)
		s.readFD = nil
		return Object{}, fmt.Errorf("%w: read record: %v", ErrFailedStore, err)
	}
	hdr.SID = SID(s.readID)

	if !s.cacheWaitUnlocked(did, timeoutMS) {
		return Object{}, ErrTimeout
	}
	s.cacheStore(did, data)

	if s.readID%DataCountPerBucket == 0 {
		closeIfOpen(s.readFD)
		s.readFD = nil
	}

	s.readError = false
	s.readID++

	return Object{Handle: h, SID: hdr.SID, Data: data}, nil
}

// Retrieve fetches the record identified by sid without removing it from
// the store, locking its data cache cell (spec §4.F
// bplib_store_file_retrieve). A cache hit for sid is returned directly.
func (m *Manager) Retrieve(h Handle, sid SID, timeoutMS int64) (Object, error) {
	s, err := m.lookup(h)
	if err != nil {
		return Object{}, err
	}

	s.lock.Acquire()
	defer s.lock.Release()

	did := dataID(sid)

	if cached, ok := s.cacheLookup(did); ok {
		return Object{Handle: h, SID: sid, Data: cached}, nil
	}

	bid := bucketID(did)
	prevDid := uint32(s.retrieveID - 1)
	prevBid := bucketID(prevDid)

	if s.retrieveFD != nil && bid != prevBid {
		closeIfOpen(s.retrieveFD)
		s.retrieveFD = nil
	}

	offsetDelta := int(bucketOffset(did))
	if s.retrieveFD == nil {
		f, err := openDatFile(s.fs, s.root, s.serviceID, bid, true)
		if err != nil {
			return Object{}, fmt.Errorf("%w: open bucket %d for retrieve: %v", ErrFailedStore, bid, err)
		}
		s.retrieveFD = f
	} else {
		// The cursor sits just past the record last retrieved (prevDid).
		offsetDelta = int(bucketOffset(did)) - int(bucketOffset(prevDid)) - 1
		if offsetDelta < 0 {
			if _, err := s.retrieveFD.Seek(0, io.SeekStart); err != nil {
				closeIfOpen(s.retrieveFD)
				s.retrieveFD = nil
				return Object{}, fmt.Errorf("%w: seek retrieve to start: %v", ErrFailedStore, err)
			}
			offsetDelta = int(bucketOffset(did))
		}
	}
	for i := 0; i < offsetDelta; i++ {
		if err := skipRecord(s.retrieveFD); err != nil {
			closeIfOpen(s.retrieveFD)
			s.retrieveFD = nil
			return Object{}, fmt.Errorf("%w: skip record on retrieve: %v", ErrFailedStore, err)
		}
	}

	hdr, data, err := readRecord(s.retrieveFD)
	if err != nil {
		closeIfOpen(s.retrieveFD)
		s.retrieveFD = nil
		return Object{}, fmt.Errorf("%w: read record on retrieve: %v", ErrFailedStore, err)
	}
	hdr.SID = sid
	s.retrieveID = uint64(sid)

	if !s.cacheWaitUnlocked(did, timeoutMS) {
		return Object{}, ErrTimeout
	}
	s.cacheStore(did, data)

	return Object{Handle: h, SID: sid, Data: data}, nil
}

// Release unlocks the data cache cell holding sid, making it available for
// eviction and waking any goroutine waiting on that cell (spec §4.F
// bplib_store_file_release). Returns [ErrInvalidResource] if sid is not
// currently the cell's occupant.
func (m *Manager) Release(h Handle, sid SID) error {
	s, err := m.lookup(h)
	if err != nil {
		return err
	}

	s.lock.Acquire()
	defer s.lock.Release()

	if !s.cacheRelease(dataID(sid)) {
		return fmt.Errorf("%w: sid %d", ErrInvalidResource, sid)
	}
	return nil
}

// Relinquish permanently frees sid's slot: it evicts any cached copy,
// marks the slot in the owning bucket's in-memory relinquish table, and
// deletes the bucket's ".dat"/".tbl" files once every slot in it has been
// freed (spec §4.F bplib_store_file_relinquish). A table is written to its
// ".tbl" file only when a later Relinquish moves on to a different bucket,
// and only if its bucket is not already fully freed. Relinquishing an
// already-freed sid is a no-op.
func (m *Manager) Relinquish(h Handle, sid SID) error {
	s, err := m.lookup(h)
	if err != nil {
		return err
	}

	s.lock.Acquire()
	defer s.lock.Release()

	did := dataID(sid)
	bid := bucketID(did)
	offset := bucketOffset(did)

	s.cacheEvict(did)

	prevDid := uint32(s.relinquishID - 1)
	prevBid := bucketID(prevDid)

	if bid != prevBid {
		s.relinquishID = uint64(sid)

		if s.relinquishTbl.freeCnt > 0 && s.relinquishTbl.freeCnt < DataCountPerBucket {
			if err := writeRelinquishTableAtomic(s.fs, tblFilename(s.root, s.serviceID, prevBid), s.relinquishTbl); err != nil {
				return fmt.Errorf("%w: persist relinquish table for bucket %d: %v", ErrFailedStore, prevBid, err)
			}
		}

		t, found, err := readRelinquishTable(s.fs, tblFilename(s.root, s.serviceID, bid))
		if err != nil {
			return fmt.Errorf("%w: read relinquish table for bucket %d: %v", ErrFailedStore, bid, err)
		}
		if found {
			s.relinquishTbl = t
		} else {
			s.relinquishTbl = relinquishTable{}
		}
	}

	if !s.relinquishTbl.freed[offset] {
		s.relinquishTbl.freed[offset] = true
		s.dataCount--
		s.relinquishTbl.freeCnt++

		if s.relinquishTbl.freeCnt == DataCountPerBucket {
			_ = s.fs.Remove(tblFilename(s.root, s.serviceID, bid))
			if err := s.fs.Remove(datFilename(s.root, s.serviceID, bid)); err != nil && !isNotExist(err) {
				return fmt.Errorf("%w: remove bucket %d data file: %v", ErrFailedStore, bid, err)
			}
		}
	}

	return nil
}

// GetCount returns the number of records currently held by h's store
// (enqueued minus relinquished; spec §4.F bplib_store_file_getcount).
func (m *Manager) GetCount(h Handle) (int, error) {
	s, err := m.lookup(h)
	if err != nil {
		return 0, err
	}

	s.lock.Acquire()
	defer s.lock.Release()

	return s.dataCount, nil
}

func openDatFile(fs bpfs.FS, root string, serviceID uint64, bid uint32, readOnly bool) (bpfs.File, error) {
	path := datFilename(root, serviceID, bid)
	if readOnly {
		return fs.Open(path)
	}
	return fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// replaySeek fast-forwards f from the start past offset whole records,
// the "replay on error" recovery spec §4.F requires after a prior
// write/read error left the cursor in an unknown state.
func replaySeek(f bpfs.File, offset uint8) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to start for replay: %v", ErrFailedStore, err)
	}
	for i := 0; i < int(offset); i++ {
		if err := skipRecord(f); err != nil {
			return fmt.Errorf("%w: skip record during replay: %v", ErrFailedStore, err)
		}
	}
	return nil
}
