package shared

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

// KVStore is the durable map behind the blocklist and the daily quota.
// The file-backed implementation is the parity choice; anything that can
// load and persist a JSON document satisfies it.
type KVStore interface {
	Load(dest interface{}) error
	Save(src interface{}) error
}

// FileStore persists a single JSON document with single-writer discipline.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated document behind.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	return sonic.Unmarshal(data, dest)
}

func (s *FileStore) Save(src interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := sonic.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}
