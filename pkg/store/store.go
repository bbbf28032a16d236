// Package store persists molecules and the element display table.
//
// # Backends
//
//   - [Memory]: process-local maps, used by tests and as the default
//   - [Postgres]: relational schema via jackc/pgx
//   - [Mongo]: one document per molecule via the MongoDB driver
//
// Use [Open] to pick a backend from configuration.
//
// # Index Convention
//
// Bond endpoints are persisted as 0-based atom indices. Every record carries
// the convention it was written with (index_base, always 0 today) and a
// reader rejects any other value with INVALID_BOND_INDEX instead of trying
// to guess. Stored molecules are validated again on load.
//
// # Errors
//
// Missing molecules yield NOT_FOUND, duplicate names CONFLICT, and empty
// molecules EMPTY_MOLECULE. Backend failures are wrapped as INTERNAL_ERROR.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/molecule"
)

// IndexBase is the bond index convention written by this package.
const IndexBase = 0

// SchemaVersion is recorded by backends that keep a schema.
const SchemaVersion = 2

// Summary describes a stored molecule without its atoms.
type Summary struct {
	Name      string    `json:"name"`
	Atoms     int       `json:"atoms"`
	Bonds     int       `json:"bonds"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence interface used by the CLI and the HTTP server.
type Store interface {
	// Save stores m under name. The name must be unused.
	Save(ctx context.Context, name string, m *molecule.Molecule) error
	// Load returns a fresh copy of the named molecule.
	Load(ctx context.Context, name string) (*molecule.Molecule, error)
	// List returns every stored molecule ordered by name.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes the named molecule.
	Delete(ctx context.Context, name string) error

	// Elements returns the stored element table.
	Elements(ctx context.Context) (*elements.Table, error)
	// PutElement adds or replaces one element.
	PutElement(ctx context.Context, e elements.Element) error
	// DeleteElement removes one element.
	DeleteElement(ctx context.Context, code string) error

	Close() error
}

// Pinger is implemented by backends with a remote connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s when it is a [Pinger]; local backends are always healthy.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Backend names accepted by [Open].
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string // memory, postgres, mongo
	DSN      string
	Database string // mongo database name
}

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		return NewPostgres(ctx, cfg.DSN)
	case BackendMongo:
		return NewMongo(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
	}
}

// ElementRadii returns the code to radius map of the stored table.
func ElementRadii(ctx context.Context, s Store) (map[string]float64, error) {
	tbl, err := s.Elements(ctx)
	if err != nil {
		return nil, err
	}
	return tbl.Radii(), nil
}

// ElementColours returns the code to gradient map of the stored table.
func ElementColours(ctx context.Context, s Store) (map[string]elements.Gradient, error) {
	tbl, err := s.Elements(ctx)
	if err != nil {
		return nil, err
	}
	return tbl.Colours(), nil
}

// Seed stores every element of tbl that the store does not have yet.
// It returns the number of elements added.
func Seed(ctx context.Context, s Store, tbl *elements.Table) (int, error) {
	have, err := s.Elements(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, e := range tbl.All() {
		if _, ok := have.Get(e.Code); ok {
			continue
		}
		if err := s.PutElement(ctx, e); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// checkSave validates the arguments common to every Save implementation.
func checkSave(name string, m *molecule.Molecule) error {
	if err := errors.ValidateMoleculeName(name); err != nil {
		return err
	}
	if m == nil || m.IsEmpty() {
		return errors.New(errors.ErrCodeEmptyMolecule, "refusing to store %q without atoms", name)
	}
	return m.Validate()
}

// rebuild turns persisted rows into a validated molecule.
func rebuild(name string, indexBase int, atoms []molecule.Atom, bonds []molecule.Bond) (*molecule.Molecule, error) {
	if indexBase != IndexBase {
		return nil, errors.New(errors.ErrCodeInvalidBondIndex,
			"molecule %q stored with index base %d, want %d", name, indexBase, IndexBase)
	}
	if len(atoms) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyMolecule, "molecule %q has no stored atoms", name)
	}
	m := molecule.New(name)
	for _, a := range atoms {
		m.AppendAtom(a.Element, a.X, a.Y, a.Z)
	}
	for _, b := range bonds {
		if _, err := m.AppendBond(b.A1, b.A2, b.Epairs); err != nil {
			return nil, fmt.Errorf("load %q: %w", name, err)
		}
	}
	return m, nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "molecule %q not found", name)
}

func conflict(name string) error {
	return errors.New(errors.ErrCodeConflict, "molecule %q already exists", name)
}
