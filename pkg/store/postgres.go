package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/molview/pkg/cache"
	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/molecule"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint failure.
const pgUniqueViolation = "23505"

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS molview_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS elements (
		element_id   INTEGER NOT NULL,
		element_code VARCHAR(3) PRIMARY KEY,
		element_name TEXT NOT NULL,
		colour1      CHAR(6) NOT NULL,
		colour2      CHAR(6) NOT NULL,
		colour3      CHAR(6) NOT NULL,
		radius       DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS molecules (
		molecule_id BIGSERIAL PRIMARY KEY,
		name        TEXT UNIQUE NOT NULL,
		index_base  SMALLINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS atoms (
		molecule_id  BIGINT NOT NULL REFERENCES molecules(molecule_id) ON DELETE CASCADE,
		seq          INTEGER NOT NULL,
		element_code TEXT NOT NULL,
		x            DOUBLE PRECISION NOT NULL,
		y            DOUBLE PRECISION NOT NULL,
		z            DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (molecule_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS bonds (
		molecule_id BIGINT NOT NULL REFERENCES molecules(molecule_id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		a1          INTEGER NOT NULL,
		a2          INTEGER NOT NULL,
		epairs      INTEGER NOT NULL,
		PRIMARY KEY (molecule_id, seq)
	)`,
	// Version 1 limited atom codes to 3 and element names to 32 characters.
	`ALTER TABLE atoms ALTER COLUMN element_code TYPE TEXT`,
	`ALTER TABLE elements ALTER COLUMN element_name TYPE TEXT`,
}

// Postgres is a [Store] backed by a pgx connection pool.
type Postgres struct {
	pool      *pgxpool.Pool
	closeOnce sync.Once
}

// NewPostgres connects to dsn, retrying transient failures, and applies the
// schema.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse postgres dsn")
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create postgres pool")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := pool.Ping(ctx); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect postgres")
	}

	s := &Postgres{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables and records the schema version.
func (s *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range pgSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "apply schema")
		}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO molview_meta (key, value) VALUES ('schema_version', $1)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		fmt.Sprint(SchemaVersion))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "record schema version")
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) Save(ctx context.Context, name string, m *molecule.Molecule) error {
	if err := checkSave(name, m); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO molecules (name, index_base) VALUES ($1, $2) RETURNING molecule_id`,
		name, IndexBase).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return conflict(name)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert molecule %q", name)
	}

	atomRows := make([][]any, len(m.Atoms))
	for i, a := range m.Atoms {
		atomRows[i] = []any{id, i, a.Element, a.X, a.Y, a.Z}
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"atoms"},
		[]string{"molecule_id", "seq", "element_code", "x", "y", "z"},
		pgx.CopyFromRows(atomRows))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "copy atoms of %q", name)
	}

	bondRows := make([][]any, len(m.Bonds))
	for i, b := range m.Bonds {
		bondRows[i] = []any{id, i, b.A1, b.A2, b.Epairs}
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"bonds"},
		[]string{"molecule_id", "seq", "a1", "a2", "epairs"},
		pgx.CopyFromRows(bondRows))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "copy bonds of %q", name)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "commit molecule %q", name)
	}
	return nil
}

func (s *Postgres) Load(ctx context.Context, name string) (*molecule.Molecule, error) {
	var (
		id        int64
		indexBase int
	)
	err := s.pool.QueryRow(ctx,
		`SELECT molecule_id, index_base FROM molecules WHERE name = $1`, name).Scan(&id, &indexBase)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load molecule %q", name)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT element_code, x, y, z FROM atoms WHERE molecule_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query atoms of %q", name)
	}
	atoms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (molecule.Atom, error) {
		var a molecule.Atom
		err := row.Scan(&a.Element, &a.X, &a.Y, &a.Z)
		return a, err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan atoms of %q", name)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT a1, a2, epairs FROM bonds WHERE molecule_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query bonds of %q", name)
	}
	bonds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (molecule.Bond, error) {
		var b molecule.Bond
		err := row.Scan(&b.A1, &b.A2, &b.Epairs)
		return b, err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan bonds of %q", name)
	}

	return rebuild(name, indexBase, atoms, bonds)
}

func (s *Postgres) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.name,
		       (SELECT count(*) FROM atoms a WHERE a.molecule_id = m.molecule_id),
		       (SELECT count(*) FROM bonds b WHERE b.molecule_id = m.molecule_id),
		       m.created_at
		FROM molecules m
		ORDER BY m.name`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list molecules")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var sum Summary
		err := row.Scan(&sum.Name, &sum.Atoms, &sum.Bonds, &sum.CreatedAt)
		return sum, err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan molecule list")
	}
	return out, nil
}

func (s *Postgres) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM molecules WHERE name = $1`, name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete molecule %q", name)
	}
	if tag.RowsAffected() == 0 {
		return notFound(name)
	}
	return nil
}

func (s *Postgres) Elements(ctx context.Context) (*elements.Table, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT element_id, element_code, element_name, colour1, colour2, colour3, radius
		FROM elements ORDER BY element_id`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query elements")
	}
	elems, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (elements.Element, error) {
		var e elements.Element
		err := row.Scan(&e.Number, &e.Code, &e.Name, &e.Colours[0], &e.Colours[1], &e.Colours[2], &e.Radius)
		return e, err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan elements")
	}
	return elements.NewTable(elems...), nil
}

func (s *Postgres) PutElement(ctx context.Context, e elements.Element) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO elements (element_id, element_code, element_name, colour1, colour2, colour3, radius)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (element_code) DO UPDATE SET
			element_id = EXCLUDED.element_id,
			element_name = EXCLUDED.element_name,
			colour1 = EXCLUDED.colour1,
			colour2 = EXCLUDED.colour2,
			colour3 = EXCLUDED.colour3,
			radius = EXCLUDED.radius`,
		e.Number, e.Code, e.Name, e.Colours[0], e.Colours[1], e.Colours[2], e.Radius)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "put element %s", e.Code)
	}
	return nil
}

func (s *Postgres) DeleteElement(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM elements WHERE element_code = $1`, code)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete element %s", code)
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeNotFound, "element %q not found", code)
	}
	return nil
}

// Close releases the pool. It is safe to call more than once.
func (s *Postgres) Close() error {
	s.closeOnce.Do(s.pool.Close)
	return nil
}

var _ Store = (*Postgres)(nil)
