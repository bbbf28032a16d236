package render

import (
	"cmp"
	"slices"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/geometry"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/projection"
)

// Bond drawing defaults.
const (
	DefaultBondColour = "green"
	DefaultHalfWidth  = 10.0
)

// Context carries everything a render needs besides the molecule itself.
type Context struct {
	Fit        projection.Fit
	Elements   *elements.Table
	BondColour string
	HalfWidth  float64
}

// NewContext returns a context autofitted to m's current coordinates.
// A nil table renders every atom with radius 0.
func NewContext(m *molecule.Molecule, tbl *elements.Table) Context {
	if tbl == nil {
		tbl = elements.NewTable()
	}
	return Context{
		Fit:        projection.Autofit(m, tbl.Radii()),
		Elements:   tbl,
		BondColour: DefaultBondColour,
		HalfWidth:  DefaultHalfWidth,
	}
}

// Kind distinguishes atom and bond primitives.
type Kind int

const (
	KindAtom Kind = iota
	KindBond
)

func (k Kind) String() string {
	if k == KindBond {
		return "bond"
	}
	return "atom"
}

// Circle is the primitive drawn for an atom.
type Circle struct {
	CX       float64 `json:"cx"`
	CY       float64 `json:"cy"`
	R        float64 `json:"r"`
	Element  string  `json:"element"`
	Gradient string  `json:"gradient,omitempty"` // empty for unknown elements
}

// Polygon is the primitive drawn for a bond.
type Polygon struct {
	Points [4]geometry.Point `json:"points"`
	A1     int               `json:"a1"`
	A2     int               `json:"a2"`
	Epairs int               `json:"epairs"`
}

// Primitive is one drawable entity. Exactly one of Circle and Polygon is set.
type Primitive struct {
	Kind    Kind     `json:"kind"`
	Index   int      `json:"index"` // source atom or bond index
	Z       float64  `json:"z"`
	Circle  *Circle  `json:"circle,omitempty"`
	Polygon *Polygon `json:"polygon,omitempty"`
}

// Scene is a depth-sorted list of primitives ready for output.
type Scene struct {
	Width      float64             `json:"width"`
	Height     float64             `json:"height"`
	Fit        projection.Fit      `json:"fit"`
	BondColour string              `json:"bond_colour"`
	Gradients  []elements.Gradient `json:"-"`
	Primitives []Primitive         `json:"primitives"`
}

// Counts returns the number of atom and bond primitives.
func (s Scene) Counts() (atoms, bonds int) {
	for _, p := range s.Primitives {
		if p.Kind == KindAtom {
			atoms++
		} else {
			bonds++
		}
	}
	return atoms, bonds
}

// Compose projects m with ctx and returns its depth-sorted scene.
// Bond fields are refreshed from the atoms first. It fails only when a bond
// references a missing atom.
func Compose(m *molecule.Molecule, ctx Context) (Scene, error) {
	if err := m.UpdateBonds(); err != nil {
		return Scene{}, err
	}
	tbl := ctx.Elements
	if tbl == nil {
		tbl = elements.NewTable()
	}

	prims := make([]Primitive, 0, m.AtomCount()+m.BondCount())
	for i, a := range m.Atoms {
		c := ctx.Fit.Point(a.X, a.Y)
		prims = append(prims, Primitive{
			Kind:  KindAtom,
			Index: i,
			Z:     a.Z,
			Circle: &Circle{
				CX:       c.X,
				CY:       c.Y,
				R:        tbl.Radius(a.Element),
				Element:  a.Element,
				Gradient: tbl.GradientID(a.Element),
			},
		})
	}
	for i, b := range m.Bonds {
		p1 := ctx.Fit.Point(b.X1, b.Y1)
		p2 := ctx.Fit.Point(b.X2, b.Y2)
		dx, dy, _ := geometry.Segment(p1.X, p1.Y, p2.X, p2.Y)
		prims = append(prims, Primitive{
			Kind:  KindBond,
			Index: i,
			Z:     b.Z,
			Polygon: &Polygon{
				Points: geometry.Quad(p1.X, p1.Y, p2.X, p2.Y, dx, dy, ctx.HalfWidth),
				A1:     b.A1,
				A2:     b.A2,
				Epairs: b.Epairs,
			},
		})
	}

	slices.SortStableFunc(prims, func(a, b Primitive) int {
		return cmp.Compare(a.Z, b.Z)
	})

	colour := ctx.BondColour
	if colour == "" {
		colour = DefaultBondColour
	}
	return Scene{
		Width:      projection.CanvasSize,
		Height:     projection.CanvasSize,
		Fit:        ctx.Fit,
		BondColour: colour,
		Gradients:  tbl.Gradients(),
		Primitives: prims,
	}, nil
}
