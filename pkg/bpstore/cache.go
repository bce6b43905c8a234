package bpstore

// cacheEntry is one cell of a store's direct-mapped data cache (spec
// §4.G). A cell is "empty" when dataID == emptyCacheSlot.
type cacheEntry struct {
	data   []byte
	locked bool
	dataID uint32
}

const emptyCacheSlot = ^uint32(0)

func newDataCache(size int) []cacheEntry {
	c := make([]cacheEntry, size)
	for i := range c {
		c[i].dataID = emptyCacheSlot
	}
	return c
}

func (s *Store) cacheIndex(id uint32) int {
	return int(id) % len(s.cache)
}

// cacheWaitUnlocked blocks, releasing and reacquiring s.lock around the
// wait, until the cell id maps to is not locked or timeoutMS elapses.
// Retrieve reaches this only after a cache miss on id; Dequeue calls it
// without a lookup, so the occupant may be id itself. Waiting keys on the
// cell being locked, whichever dataID occupies it, so a concurrent holder
// of the slot is always waited on. Returns false on timeout. The caller
// must hold s.lock on entry and exit.
func (s *Store) cacheWaitUnlocked(id uint32, timeoutMS int64) bool {
	idx := s.cacheIndex(id)
	for s.cache[idx].locked {
		if !s.lock.WaitOn(timeoutMS) {
			return false
		}
	}
	return true
}

// cacheStore installs data into the cell for id, locked, evicting whatever
// was cached there before (spec §4.G "direct-mapped ... locked cells").
func (s *Store) cacheStore(id uint32, data []byte) {
	idx := s.cacheIndex(id)
	s.cache[idx] = cacheEntry{data: data, locked: true, dataID: id}
}

// cacheLookup returns the cached payload for id, if the cell currently
// holds it.
func (s *Store) cacheLookup(id uint32) ([]byte, bool) {
	idx := s.cacheIndex(id)
	if s.cache[idx].dataID == id && s.cache[idx].data != nil {
		return s.cache[idx].data, true
	}
	return nil, false
}

// cacheRelease unlocks the cell for id if it is currently locked and
// holding id, waking any waiter blocked in cacheWaitUnlocked. Returns false
// if id was not the cell's current occupant (spec §4.G release-of-invalid-
// resource case).
func (s *Store) cacheRelease(id uint32) bool {
	idx := s.cacheIndex(id)
	if s.cache[idx].dataID != id || s.cache[idx].data == nil {
		return false
	}
	s.cache[idx].locked = false
	s.lock.Signal()
	return true
}

// cacheEvict clears the cell for id if it currently holds it (used by
// Relinquish, spec §4.F).
func (s *Store) cacheEvict(id uint32) {
	idx := s.cacheIndex(id)
	if s.cache[idx].dataID == id {
		s.cache[idx] = cacheEntry{dataID: emptyCacheSlot}
	}
}
