package bpstore

import (
	"fmt"
	"sync"

	"github.com/thnkslprpt/bplib/internal/oslock"
	"github.com/thnkslprpt/bplib/pkg/bpfs"
)

// MaxStores bounds the number of stores a single [Manager] can hold open
// at once (spec §4.F, FILE_MAX_STORES).
const MaxStores = 60

// DefaultCacheSize is the data cache size applied when [Config.CacheSize]
// is left zero.
const DefaultCacheSize = 16384

// DefaultRootPath is the store root applied when [Config.RootPath] is left
// empty.
const DefaultRootPath = ".pfile"

// Config configures one store created via [Manager.Create].
type Config struct {
	// RootPath is the directory holding this store's bucket files. It is
	// created if it does not already exist.
	RootPath string
	// CacheSize is the number of cells in the store's direct-mapped data
	// cache.
	CacheSize int
}

func (c Config) withDefaults() Config {
	if c.RootPath == "" {
		c.RootPath = DefaultRootPath
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	return c
}

// Store is one bucketed append-only file store (spec §4.F/§4.G). Obtain
// one via [Manager.Create]; all exported methods are safe to call
// concurrently from multiple goroutines.
type Store struct {
	fs        bpfs.FS
	lock      *oslock.Lock
	serviceID uint64
	root      string

	writeFD     bpfs.File
	writeID     uint64
	writeError  bool

	readFD    bpfs.File
	readID    uint64
	readError bool

	retrieveFD bpfs.File
	retrieveID uint64

	relinquishFD bpfs.File
	relinquishID uint64
	relinquishTbl relinquishTable

	cache     []cacheEntry
	dataCount int
}

// Manager owns a bounded table of [Store] slots, mirroring the reference
// implementation's static file_stores[FILE_MAX_STORES] array (spec §4.F).
// Obtain one via [NewManager]; the zero value has no filesystem and is not
// usable.
type Manager struct {
	mu        sync.Mutex
	fs        bpfs.FS
	stores    [MaxStores]*Store
	nextSvcID uint64
}

// NewManager creates a Manager that persists stores through fs. Pass
// [bpfs.NewReal]() for real disk-backed stores, or a [bpfs.Fake] in tests.
func NewManager(fs bpfs.FS) *Manager {
	return &Manager{fs: fs}
}

// Create allocates a new store slot configured by cfg, creating its root
// directory if necessary, and returns the [Handle] to address it (spec
// §4.F bplib_store_file_create).
func (m *Manager) Create(cfg Config) (Handle, error) {
	cfg = cfg.withDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.stores {
		if m.stores[i] != nil {
			continue
		}

		if err := m.fs.MkdirAll(cfg.RootPath, 0o755); err != nil {
			return InvalidHandle, fmt.Errorf("%w: create root %q: %v", ErrFailedOS, cfg.RootPath, err)
		}

		s := &Store{
			fs:        m.fs,
			lock:      oslock.New(),
			serviceID: m.nextSvcID,
			root:      cfg.RootPath,
			writeID:   1,
			readID:    1,
			retrieveID: 1,
			relinquishID: 1,
			cache:     newDataCache(cfg.CacheSize),
		}
		m.nextSvcID++

		if err := recoverStore(s); err != nil {
			return InvalidHandle, err
		}

		m.stores[i] = s
		return Handle(i), nil
	}

	return InvalidHandle, ErrOutOfMemory
}

// Destroy closes a store's open file descriptors and frees its slot (spec
// §4.F bplib_store_file_destroy). The handle must not be used again.
func (m *Manager) Destroy(h Handle) error {
	s, err := m.lookup(h)
	if err != nil {
		return err
	}

	s.lock.Acquire()
	closeIfOpen(s.writeFD)
	closeIfOpen(s.readFD)
	closeIfOpen(s.retrieveFD)
	closeIfOpen(s.relinquishFD)
	s.lock.Release()
	s.lock.Destroy()

	m.mu.Lock()
	m.stores[h] = nil
	m.mu.Unlock()

	return nil
}

func (m *Manager) lookup(h Handle) (*Store, error) {
	if h < 0 || int(h) >= MaxStores {
		return nil, ErrInvalidHandle
	}

	m.mu.Lock()
	s := m.stores[h]
	m.mu.Unlock()

	if s == nil {
		return nil, ErrInvalidHandle
	}
	return s, nil
}

func closeIfOpen(f bpfs.File) {
	if f != nil {
		_ = f.Close()
	}
}

// recoverStore is a bplib-specific supplement to the reference store's
// create path (see DESIGN.md): scan the root directory for this service's
// ".dat"/".tbl" bucket files left over from a previous run so GetCount and
// the write/read/retrieve cursors are accurate immediately after a
// restart, instead of silently starting empty while old bucket files sit
// unread on disk. This depends on the caller recreating stores in the same
// order after a restart, so each gets the same deterministic service ID —
// the same assumption the reference store's own auto-incrementing
// service_id makes.
func recoverStore(s *Store) error {
	names, err := s.fs.ReadDir(s.root)
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return err
	}

	buckets := map[uint32]bool{}
	for _, name := range names {
		bid, ok := parseBucketFilename(s.serviceID, name)
		if ok {
			buckets[bid] = true
		}
	}
	if len(buckets) == 0 {
		return nil
	}

	maxBucket := uint32(0)
	for bid := range buckets {
		if bid > maxBucket {
			maxBucket = bid
		}
	}

	recordsInLastBucket, err := countRecords(s.fs, datFilename(s.root, s.serviceID, maxBucket))
	if err != nil {
		return err
	}

	for bid := range buckets {
		t, found, err := readRelinquishTable(s.fs, tblFilename(s.root, s.serviceID, bid))
		if err != nil {
			return err
		}
		freeCnt := 0
		if found {
			freeCnt = t.freeCnt
		}

		// Every bucket below the highest one was filled before the write
		// cursor moved on; the highest holds only the records counted above.
		written := DataCountPerBucket
		if bid == maxBucket {
			written = recordsInLastBucket
		}
		present := written - freeCnt
		if present < 0 {
			present = 0
		}
		s.dataCount += present
	}

	nextID := uint64(maxBucket)*DataCountPerBucket + uint64(recordsInLastBucket) + 1
	s.writeID = nextID
	s.readID = nextID
	s.retrieveID = nextID
	s.relinquishID = nextID

	return nil
}

// countRecords scans a bucket's ".dat" file front-to-back and returns how
// many whole records it holds, stopping at the first short/corrupt record
// (treated as the tail of an interrupted write, the same tolerance the
// write/read-error replay path already assumes elsewhere in this package).
func countRecords(fs bpfs.FS, path string) (int, error) {
	f, err := fs.Open(path)
	if err != nil {
		if isNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	count := 0
	for {
		if err := skipRecord(f); err != nil {
			break
		}
		count++
	}

	return count, nil
}

// parseBucketFilename extracts a bucket ID from a ".dat" or ".tbl" base
// name belonging to serviceID, e.g. "3_12.dat" -> (12, true) for service 3.
func parseBucketFilename(serviceID uint64, name string) (uint32, bool) {
	ext := ""
	switch {
	case len(name) > 4 && name[len(name)-4:] == ".dat":
		ext = ".dat"
	case len(name) > 4 && name[len(name)-4:] == ".tbl":
		ext = ".tbl"
	default:
		return 0, false
	}

	stem := name[:len(name)-len(ext)]

	var svc uint64
	var bid uint32
	n, err := fmt.Sscanf(stem, "%d_%d", &svc, &bid)
	if err != nil || n != 2 || svc != serviceID {
		return 0, false
	}

	return bid, true
}
