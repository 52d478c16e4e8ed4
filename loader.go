package carteira

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore keeps one JSONL ledger file per investor in a directory.
//
// The ledger of investor "ana" is stored in "<dir>/ana.jsonl".
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on the
// first save.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

func (s *FileStore) path(investor string) string {
	return filepath.Join(s.dir, investor+".jsonl")
}

// Load reads the ledger of the investor. An investor without a file has an
// empty ledger.
func (s *FileStore) Load(ctx context.Context, investor string) (*Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath := s.path(investor)
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", fullPath, err)
	}
	defer f.Close()

	ledger, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", fullPath, err)
	}
	return ledger, nil
}

// Save writes the ledger of the investor. The file is replaced atomically.
func (s *FileStore) Save(ctx context.Context, investor string, ledger *Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath := s.path(investor)

	// Ensure the directory for the ledger file exists.
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("could not create directory for ledger %q: %w", filePath, err)
	}

	file, err := os.CreateTemp(filepath.Dir(filePath), "."+investor+"-*.jsonl")
	if err != nil {
		return fmt.Errorf("error opening ledger file %q for writing: %w", filePath, err)
	}
	defer os.Remove(file.Name())

	if err := EncodeLedger(file, ledger); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error writing ledger file %q: %w", filePath, err)
	}
	if err := os.Rename(file.Name(), filePath); err != nil {
		return fmt.Errorf("error replacing ledger file %q: %w", filePath, err)
	}
	return nil
}

// Investors lists the investors having a ledger file, sorted.
func (s *FileStore) Investors(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not list ledgers in %q: %w", s.dir, err)
	}
	var investors []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		investors = append(investors, strings.TrimSuffix(name, ".jsonl"))
	}
	sort.Strings(investors)
	return investors, nil
}

// MemoryStore keeps ledgers in memory. It is meant for tests and for a
// server without persistence.
type MemoryStore struct {
	mu      sync.Mutex
	ledgers map[string]*Ledger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[string]*Ledger)}
}

func (s *MemoryStore) Load(ctx context.Context, investor string) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.ledgers[investor]; ok {
		return l.Clone(), nil
	}
	return NewLedger(), nil
}

func (s *MemoryStore) Save(ctx context.Context, investor string, ledger *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[investor] = ledger.Clone()
	return nil
}

func (s *MemoryStore) Investors(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	investors := make([]string, 0, len(s.ledgers))
	for id := range s.ledgers {
		investors = append(investors, id)
	}
	sort.Strings(investors)
	return investors, nil
}

var _ Store = (*FileStore)(nil)
var _ Store = (*MemoryStore)(nil)
