package lock

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZebulonRouseFrantzich/pwin/internal/transaction"
)

// FileName is the lock file name inside the user's home directory.
const FileName = ".pwin.lock"

// ErrNotExist is returned by Storage.Load when nothing has been persisted yet.
var ErrNotExist = errors.New("lock file does not exist")

// Storage persists the encoded registry.
type Storage interface {
	// Load returns the persisted bytes, or ErrNotExist.
	Load() ([]byte, error)
	// Save replaces the persisted bytes. Implementations must not leave a
	// truncated file behind if the process dies mid-write.
	Save(data []byte) error
}

// FileStorage keeps the registry in a single file.
type FileStorage struct {
	Path string
}

// NewFileStorage returns storage for {home}/.pwin.lock.
func NewFileStorage(home string) *FileStorage {
	return &FileStorage{Path: filepath.Join(home, FileName)}
}

func (s *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return data, err
}

func (s *FileStorage) Save(data []byte) error {
	return transaction.WriteFileAtomic(s.Path, data, 0o644)
}

// MemoryStorage is an in-memory Storage for tests.
type MemoryStorage struct {
	mu     sync.Mutex
	data   []byte
	exists bool

	// LoadErr and SaveErr, when set, are returned instead of touching data.
	LoadErr error
	SaveErr error
	// Saves counts successful Save calls.
	Saves int
}

// NewMemoryStorage returns storage pre-populated with data.
// A nil data slice means nothing has been persisted.
func NewMemoryStorage(data []byte) *MemoryStorage {
	return &MemoryStorage{data: data, exists: data != nil}
}

func (m *MemoryStorage) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if !m.exists {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data = append([]byte(nil), data...)
	m.exists = true
	m.Saves++
	return nil
}

// Bytes returns a copy of the last saved data.
func (m *MemoryStorage) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
