package bpfs

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Fake is an in-memory [FS] for tests. It has no fault injection — it exists
// so store tests can exercise bucket/relinquish-table logic without touching
// the real filesystem or leaking temp directories.
type Fake struct {
	mu    sync.Mutex
	files map[string]*fakeFileData
	dirs  map[string]bool
}

type fakeFileData struct {
	data []byte
}

// NewFake returns an empty in-memory filesystem rooted at "/".
func NewFake() *Fake {
	return &Fake{
		files: make(map[string]*fakeFileData),
		dirs:  map[string]bool{"/": true},
	}
}

func clean(path string) string {
	return filepath.Clean(path)
}

func (f *Fake) Open(path string) (File, error) {
	return f.OpenFile(path, os.O_RDONLY, 0)
}

func (f *Fake) OpenFile(path string, flag int, _ os.FileMode) (File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := clean(path)

	fd, ok := f.files[p]
	switch {
	case ok && flag&os.O_EXCL != 0 && flag&os.O_CREATE != 0:
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrExist}
	case !ok && flag&os.O_CREATE != 0:
		fd = &fakeFileData{}
		f.files[p] = fd
	case !ok:
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	if flag&os.O_TRUNC != 0 {
		fd.data = nil
	}

	pos := int64(0)
	if flag&os.O_APPEND != 0 {
		pos = int64(len(fd.data))
	}

	return &fakeFile{fs: f, path: p, fd: fd, pos: pos, appendMode: flag&os.O_APPEND != 0}, nil
}

func (f *Fake) MkdirAll(path string, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dirs[clean(path)] = true

	return nil
}

func (f *Fake) Stat(path string) (os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := clean(path)

	fd, ok := f.files[p]
	if !ok {
		return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
	}

	return fakeFileInfo{name: filepath.Base(p), size: int64(len(fd.data))}, nil
}

func (f *Fake) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := clean(path)

	if _, ok := f.files[p]; !ok {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
	}

	delete(f.files, p)

	return nil
}

func (f *Fake) WriteFile(path string, data []byte, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	f.files[clean(path)] = &fakeFileData{data: cp}

	return nil
}

func (f *Fake) ReadFile(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, ok := f.files[clean(path)]
	if !ok {
		return nil, &os.PathError{Op: "read", Path: path, Err: os.ErrNotExist}
	}

	out := make([]byte, len(fd.data))
	copy(out, fd.data)

	return out, nil
}

func (f *Fake) ReadDir(dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := clean(dir)
	if !f.dirs[d] {
		return nil, &os.PathError{Op: "readdir", Path: dir, Err: os.ErrNotExist}
	}

	var names []string
	for p := range f.files {
		if clean(filepath.Dir(p)) == d {
			names = append(names, filepath.Base(p))
		}
	}

	return names, nil
}

// fakeFile is a per-open-handle cursor onto a shared fakeFileData.
type fakeFile struct {
	mu         sync.Mutex
	fs         *Fake
	path       string
	fd         *fakeFileData
	pos        int64
	appendMode bool
	closed     bool
}

func (ff *fakeFile) Read(p []byte) (int, error) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	ff.fs.mu.Lock()
	defer ff.fs.mu.Unlock()

	if ff.pos >= int64(len(ff.fd.data)) {
		return 0, io.EOF
	}

	n := copy(p, ff.fd.data[ff.pos:])
	ff.pos += int64(n)

	return n, nil
}

func (ff *fakeFile) Write(p []byte) (int, error) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	ff.fs.mu.Lock()
	defer ff.fs.mu.Unlock()

	if ff.appendMode {
		ff.pos = int64(len(ff.fd.data))
	}

	end := ff.pos + int64(len(p))
	if end > int64(len(ff.fd.data)) {
		grown := make([]byte, end)
		copy(grown, ff.fd.data)
		ff.fd.data = grown
	}

	n := copy(ff.fd.data[ff.pos:end], p)
	ff.pos = end

	return n, nil
}

func (ff *fakeFile) Seek(offset int64, whence int) (int64, error) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	ff.fs.mu.Lock()
	size := int64(len(ff.fd.data))
	ff.fs.mu.Unlock()

	var newPos int64

	switch whence {
	case 0:
		newPos = offset
	case 1:
		newPos = ff.pos + offset
	case 2:
		newPos = size + offset
	}

	if newPos < 0 {
		return 0, &os.PathError{Op: "seek", Path: ff.path, Err: os.ErrInvalid}
	}

	ff.pos = newPos

	return newPos, nil
}

func (ff *fakeFile) Close() error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	ff.closed = true

	return nil
}

func (ff *fakeFile) Sync() error { return nil }

func (ff *fakeFile) Stat() (os.FileInfo, error) {
	ff.fs.mu.Lock()
	defer ff.fs.mu.Unlock()

	return fakeFileInfo{name: filepath.Base(ff.path), size: int64(len(ff.fd.data))}, nil
}

type fakeFileInfo struct {
	name string
	size int64
}

func (i fakeFileInfo) Name() string       { return i.name }
func (i fakeFileInfo) Size() int64        { return i.size }
func (i fakeFileInfo) Mode() os.FileMode  { return 0o644 }
func (i fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (i fakeFileInfo) IsDir() bool        { return false }
func (i fakeFileInfo) Sys() any           { return nil }

// Compile-time interface check.
var _ FS = (*Fake)(nil)
