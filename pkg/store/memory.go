package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/molecule"
)

type memRecord struct {
	indexBase int
	mol       *molecule.Molecule
	created   time.Time
}

// Memory is an in-process [Store]. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	molecules map[string]memRecord
	elements  *elements.Table
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{
		molecules: make(map[string]memRecord),
		elements:  elements.NewTable(),
	}
}

func (s *Memory) Save(ctx context.Context, name string, m *molecule.Molecule) error {
	if err := checkSave(name, m); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.molecules[name]; ok {
		return conflict(name)
	}
	c := m.Clone()
	c.Name = name
	s.molecules[name] = memRecord{indexBase: IndexBase, mol: c, created: time.Now().UTC()}
	return nil
}

func (s *Memory) Load(ctx context.Context, name string) (*molecule.Molecule, error) {
	s.mu.RLock()
	rec, ok := s.molecules[name]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(name)
	}
	return rebuild(name, rec.indexBase, rec.mol.Atoms, rec.mol.Bonds)
}

func (s *Memory) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.molecules))
	for name, rec := range s.molecules {
		out = append(out, Summary{
			Name:      name,
			Atoms:     rec.mol.AtomCount(),
			Bonds:     rec.mol.BondCount(),
			CreatedAt: rec.created,
		})
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Summary) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Memory) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.molecules[name]; !ok {
		return notFound(name)
	}
	delete(s.molecules, name)
	return nil
}

func (s *Memory) Elements(ctx context.Context) (*elements.Table, error) {
	return elements.NewTable(s.elements.All()...), nil
}

func (s *Memory) PutElement(ctx context.Context, e elements.Element) error {
	return s.elements.Put(e)
}

func (s *Memory) DeleteElement(ctx context.Context, code string) error {
	if !s.elements.Delete(code) {
		return errors.New(errors.ErrCodeNotFound, "element %q not found", code)
	}
	return nil
}

func (s *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
