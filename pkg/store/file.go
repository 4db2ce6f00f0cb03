package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Store = (*File)(nil)

// File is a JSON-file-backed Store. Writes go through a temp file and a
// rename, so a crash mid-save leaves the previous contents intact.
type File struct {
	mu      sync.Mutex
	path    string
	entries map[string][]byte
}

// NewFile opens (or creates) the store at path. A corrupt file is treated as
// empty: persistence loss falls back to defaults and must never prevent
// startup.
func NewFile(path string) (*File, error) {
	f := &File{
		path:    path,
		entries: make(map[string][]byte),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, pkgerrors.Wrapf(err, "failed to read store file %s", path)
	}

	if err := json.Unmarshal(b, &f.entries); err != nil {
		logrus.WithError(err).Warnf("store file %s is corrupt, starting empty", path)
		f.entries = make(map[string][]byte)
	}

	return f, nil
}

func (f *File) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *File) Put(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = value
	return f.flushLocked()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[key]; !ok {
		return nil
	}
	delete(f.entries, key)
	return f.flushLocked()
}

func (f *File) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create store directory for %s", f.path)
	}

	b, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal store")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return pkgerrors.Wrapf(err, "failed to replace %s", f.path)
	}

	return nil
}
