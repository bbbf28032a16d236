package molecule

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/geometry"
)

// Atom is a single atom with an element code and 3-D coordinates.
// Its identity is its index in [Molecule.Atoms].
type Atom struct {
	Element string  `json:"element"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// Pos returns the atom position as a vector.
func (a Atom) Pos() r3.Vec { return r3.Vec{X: a.X, Y: a.Y, Z: a.Z} }

// Bond connects two atoms by 0-based index.
//
// Epairs records the bond order (1, 2, 3). It is metadata only and never
// changes how a bond is drawn.
type Bond struct {
	A1     int `json:"a1"`
	A2     int `json:"a2"`
	Epairs int `json:"epairs"`

	// Derived from the endpoint atoms by [Molecule.UpdateBonds], in model
	// units after dropping Z. The renderer maps them onto the canvas.
	X1  float64 `json:"-"` // model X of A1
	Y1  float64 `json:"-"` // model Y of A1
	X2  float64 `json:"-"` // model X of A2
	Y2  float64 `json:"-"` // model Y of A2
	Z   float64 `json:"-"` // mean depth of the endpoints
	Len float64 `json:"-"` // length in the X/Y plane, model units
	DX  float64 `json:"-"` // unit direction from A1 to A2, X component
	DY  float64 `json:"-"` // unit direction from A1 to A2, Y component
}

// Perpendicular returns the unit normal of the bond axis in the X/Y plane.
func (b Bond) Perpendicular() (float64, float64) {
	return geometry.Perpendicular(b.DX, b.DY)
}

// Molecule is an ordered atom and bond store.
//
// The zero value is an empty, usable molecule.
type Molecule struct {
	Name  string `json:"name"`
	Atoms []Atom `json:"atoms"`
	Bonds []Bond `json:"bonds"`
}

// New returns an empty molecule with the given name.
func New(name string) *Molecule {
	return &Molecule{Name: name}
}

// AtomCount returns the number of atoms.
func (m *Molecule) AtomCount() int { return len(m.Atoms) }

// BondCount returns the number of bonds.
func (m *Molecule) BondCount() int { return len(m.Bonds) }

// IsEmpty reports whether the molecule has no atoms.
func (m *Molecule) IsEmpty() bool { return len(m.Atoms) == 0 }

// AppendAtom adds an atom and returns its index.
func (m *Molecule) AppendAtom(element string, x, y, z float64) int {
	m.Atoms = append(m.Atoms, Atom{Element: element, X: x, Y: y, Z: z})
	return len(m.Atoms) - 1
}

// AppendBond adds a bond between two existing atoms (0-based) and returns
// its index. The bond's derived fields are computed immediately.
//
// Returns an INVALID_BOND_INDEX error when an endpoint is out of range or
// both endpoints are the same atom.
func (m *Molecule) AppendBond(a1, a2, epairs int) (int, error) {
	b := Bond{A1: a1, A2: a2, Epairs: epairs}
	if err := m.checkBond(len(m.Bonds), b); err != nil {
		return -1, err
	}
	m.refresh(&b)
	m.Bonds = append(m.Bonds, b)
	return len(m.Bonds) - 1, nil
}

// Validate checks that every bond references two distinct, existing atoms.
// Call it after restoring a molecule from storage.
func (m *Molecule) Validate() error {
	for i, b := range m.Bonds {
		if err := m.checkBond(i, b); err != nil {
			return err
		}
	}
	return nil
}

func (m *Molecule) checkBond(i int, b Bond) error {
	n := len(m.Atoms)
	if b.A1 < 0 || b.A1 >= n || b.A2 < 0 || b.A2 >= n {
		return errors.New(errors.ErrCodeInvalidBondIndex,
			"bond %d: atom index (%d, %d) out of range [0, %d)", i, b.A1, b.A2, n)
	}
	if b.A1 == b.A2 {
		return errors.New(errors.ErrCodeInvalidBondIndex,
			"bond %d: atom %d bonded to itself", i, b.A1)
	}
	return nil
}

// UpdateBonds recomputes every bond's derived fields from the current atom
// positions.
func (m *Molecule) UpdateBonds() error {
	if err := m.Validate(); err != nil {
		return err
	}
	for i := range m.Bonds {
		m.refresh(&m.Bonds[i])
	}
	return nil
}

func (m *Molecule) refresh(b *Bond) {
	p, q := m.Atoms[b.A1], m.Atoms[b.A2]
	b.X1, b.Y1 = p.X, p.Y
	b.X2, b.Y2 = q.X, q.Y
	b.Z = (p.Z + q.Z) / 2
	b.DX, b.DY, b.Len = geometry.Segment(b.X1, b.Y1, b.X2, b.Y2)
}

// Centroid returns the mean atom position.
// The second result is false for an empty molecule.
func (m *Molecule) Centroid() (r3.Vec, bool) {
	return geometry.Centroid(m.positions())
}

// Rotate rotates all atoms in place about the centroid by e (degrees) and
// refreshes the bond fields. Repeated calls accumulate.
func (m *Molecule) Rotate(e geometry.Euler) error {
	pts := m.positions()
	geometry.Rotate(pts, e)
	for i, p := range pts {
		m.Atoms[i].X, m.Atoms[i].Y, m.Atoms[i].Z = p.X, p.Y, p.Z
	}
	return m.UpdateBonds()
}

func (m *Molecule) positions() []r3.Vec {
	pts := make([]r3.Vec, len(m.Atoms))
	for i, a := range m.Atoms {
		pts[i] = a.Pos()
	}
	return pts
}

// Clone returns a deep copy.
func (m *Molecule) Clone() *Molecule {
	c := &Molecule{Name: m.Name}
	if m.Atoms != nil {
		c.Atoms = append([]Atom(nil), m.Atoms...)
	}
	if m.Bonds != nil {
		c.Bonds = append([]Bond(nil), m.Bonds...)
	}
	return c
}
