package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/molecule"
)

func ethanol() *molecule.Molecule {
	m := molecule.New("ethanol")
	m.AppendAtom("C", -0.75, 0, 0)
	m.AppendAtom("C", 0.75, 0, 0)
	m.AppendAtom("O", 1.2, 1.3, 0)
	m.AppendBond(0, 1, 1)
	m.AppendBond(1, 2, 1)
	return m
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	name := fmt.Sprintf("ethanol-%d", time.Now().UnixNano())

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, name, ethanol()))

		m, err := s.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, m.Name)
		require.Equal(t, 3, m.AtomCount())
		require.Equal(t, 2, m.BondCount())
		assert.Equal(t, "O", m.Atoms[2].Element)
		assert.InDelta(t, 1.3, m.Atoms[2].Y, 1e-9)
		assert.Equal(t, 1, m.Bonds[1].A1)
		assert.Equal(t, 2, m.Bonds[1].A2)
		assert.InDelta(t, 0.75, m.Bonds[0].X2, 1e-9, "bond fields recomputed on load")
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := s.Save(ctx, name, ethanol())
		assert.True(t, errors.Is(err, errors.ErrCodeConflict), "got %v", err)
	})

	t.Run("empty molecule rejected", func(t *testing.T) {
		err := s.Save(ctx, name+"-empty", molecule.New("empty"))
		assert.True(t, errors.Is(err, errors.ErrCodeEmptyMolecule), "got %v", err)
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		err := s.Save(ctx, "../etc", ethanol())
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidName), "got %v", err)
	})

	t.Run("any element token", func(t *testing.T) {
		m := molecule.New("odd")
		m.AppendAtom("Xxxx", 0, 0, 0)
		m.AppendAtom("Unobtainium", 1, 0, 0)
		_, err := m.AppendBond(0, 1, 1)
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, name+"-odd", m))

		got, err := s.Load(ctx, name+"-odd")
		require.NoError(t, err)
		assert.Equal(t, "Xxxx", got.Atoms[0].Element)
		assert.Equal(t, "Unobtainium", got.Atoms[1].Element)
		require.NoError(t, s.Delete(ctx, name+"-odd"))
	})

	t.Run("list", func(t *testing.T) {
		list, err := s.List(ctx)
		require.NoError(t, err)
		var found *Summary
		for i := range list {
			if list[i].Name == name {
				found = &list[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, 3, found.Atoms)
		assert.Equal(t, 2, found.Bonds)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Load(ctx, "never-stored")
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
	})

	t.Run("elements", func(t *testing.T) {
		n, err := Seed(ctx, s, elements.Default())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)

		radii, err := ElementRadii(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, 40.0, radii["C"])

		colours, err := ElementColours(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, "grad-O", colours["O"].ID)

		na := elements.Element{Number: 11, Code: "Na", Name: "Sodium", Colours: [3]string{"AB5CF2", "7A2FC0", "3D1760"}, Radius: 60}
		require.NoError(t, s.PutElement(ctx, na))
		tbl, err := s.Elements(ctx)
		require.NoError(t, err)
		got, ok := tbl.Get("Na")
		require.True(t, ok)
		assert.Equal(t, na, got)

		require.NoError(t, s.DeleteElement(ctx, "Na"))

		long := elements.Element{Number: 120, Code: "Ubn", Name: "Unbinilium, predicted alkaline earth metal", Colours: [3]string{"AAAAAA", "888888", "444444"}, Radius: 70}
		require.NoError(t, s.PutElement(ctx, long))
		require.NoError(t, s.DeleteElement(ctx, "Ubn"))
		err = s.DeleteElement(ctx, "Na")
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, name))
		_, err := s.Load(ctx, name)
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
		assert.True(t, errors.Is(s.Delete(ctx, name), errors.ErrCodeNotFound))
	})
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	require.NoError(t, Ping(context.Background(), s))
	testStore(t, s)
}

func TestMemoryLoadIsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Save(ctx, "e", ethanol()))

	m, err := s.Load(ctx, "e")
	require.NoError(t, err)
	m.Atoms[0].X = 100

	again, err := s.Load(ctx, "e")
	require.NoError(t, err)
	assert.InDelta(t, -0.75, again.Atoms[0].X, 1e-9)
}

func TestRebuild(t *testing.T) {
	atoms := []molecule.Atom{{Element: "C"}, {Element: "O", X: 1}}

	_, err := rebuild("x", 1, atoms, []molecule.Bond{{A1: 1, A2: 2}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidBondIndex), "legacy 1-based record: %v", err)

	_, err = rebuild("x", IndexBase, atoms, []molecule.Bond{{A1: 0, A2: 2}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidBondIndex), "out of range: %v", err)

	_, err = rebuild("x", IndexBase, nil, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyMolecule), "no atoms: %v", err)

	m, err := rebuild("x", IndexBase, atoms, []molecule.Bond{{A1: 0, A2: 1, Epairs: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Bonds[0].Epairs)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(ctx, Config{Backend: "sqlite"})
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported), "got %v", err)
}

func TestPingLocalBackend(t *testing.T) {
	assert.NoError(t, Ping(context.Background(), NewMemory()))
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("MOLVIEW_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MOLVIEW_TEST_POSTGRES_DSN not set")
	}
	s, err := NewPostgres(context.Background(), dsn)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, Ping(context.Background(), s))
	testStore(t, s)
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("MOLVIEW_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MOLVIEW_TEST_MONGO_URI not set")
	}
	s, err := NewMongo(context.Background(), uri, "molview_test")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, Ping(context.Background(), s))
	testStore(t, s)
}
