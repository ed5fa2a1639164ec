package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Store supplies assignments to the grader.
type Store interface {
	Get(ctx context.Context, id string) (*Assignment, error)
	List(ctx context.Context) ([]*Assignment, error)
}

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*FileStore)(nil)
)

// index is the shared in-memory catalog behind both stores.
type index struct {
	mu   sync.RWMutex
	byID map[string]*Assignment
}

func (ix *index) get(ctx context.Context, id string) (*Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	a, ok := ix.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

func (ix *index) list(ctx context.Context) ([]*Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]*Assignment, 0, len(ix.byID))
	for _, a := range ix.byID {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *Assignment) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (ix *index) put(a *Assignment) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.byID == nil {
		ix.byID = make(map[string]*Assignment)
	}
	ix.byID[a.ID] = a
}

// MemStore keeps assignments in memory only.
type MemStore struct {
	ix index
}

func NewMemStore(as ...*Assignment) (*MemStore, error) {
	s := &MemStore{}
	for _, a := range as {
		if err := s.Put(context.Background(), a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (*Assignment, error) { return s.ix.get(ctx, id) }

func (s *MemStore) List(ctx context.Context) ([]*Assignment, error) { return s.ix.list(ctx) }

func (s *MemStore) Put(ctx context.Context, a *Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	s.ix.put(a)
	return nil
}

// FileStore loads one assignment per YAML file from Dir. A file without an
// id takes its base name as the id.
type FileStore struct {
	Dir string
	ix  index
}

func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &FileStore{Dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rereads every *.yaml and *.yml file in Dir, replacing the catalog.
func (s *FileStore) Reload() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return fmt.Errorf("assignment: read dir: %w", err)
	}

	byID := make(map[string]*Assignment)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		a, err := readAssignment(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			return err
		}
		if a.ID == "" {
			a.ID = strings.TrimSuffix(e.Name(), ext)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		if _, dup := byID[a.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q in %s", ErrInvalidAssignment, a.ID, e.Name())
		}
		byID[a.ID] = a
	}

	s.ix.mu.Lock()
	s.ix.byID = byID
	s.ix.mu.Unlock()

	slog.Debug("assignment: catalog loaded", "dir", s.Dir, "count", len(byID))
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Assignment, error) { return s.ix.get(ctx, id) }

func (s *FileStore) List(ctx context.Context) ([]*Assignment, error) { return s.ix.list(ctx) }

// Put validates a, stamps it and overwrites <Dir>/<id>.yaml.
func (s *FileStore) Put(ctx context.Context, a *Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.ID == "" || filepath.Base(a.ID) != a.ID || strings.HasPrefix(a.ID, ".") {
		return fmt.Errorf("%w: bad id %q", ErrInvalidAssignment, a.ID)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("assignment: marshal %s: %w", a.ID, err)
	}
	if err := os.WriteFile(s.path(a.ID), data, 0o644); err != nil {
		return err
	}

	s.ix.put(a)
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.Dir, id+".yaml")
}

func readAssignment(path string) (*Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a Assignment
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAssignment, filepath.Base(path), err)
	}
	return &a, nil
}
