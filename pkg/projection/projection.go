// Package projection maps molecule coordinates onto the fixed 1000×1000
// canvas. The projection is orthographic: X and Y are scaled and shifted,
// Z is kept only for depth ordering.
//
// [Autofit] chooses one uniform scale and an offset so that every atom,
// grown by the largest radius present, fits inside a 900 unit box and the
// bounding box center lands on the canvas center (500, 500).
package projection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/geometry"
	"github.com/matzehuels/molview/pkg/molecule"
)

// Canvas and fitting constants, in canvas units.
const (
	CanvasSize   = 1000.0
	Center       = CanvasSize / 2
	Usable       = 900.0
	MinScale     = 20.0
	MaxScale     = 180.0
	DefaultScale = 100.0
	Epsilon      = 1e-6
)

// Fit is a uniform scale plus offset from model space to canvas space.
type Fit struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Default is the fit used for an empty molecule.
var Default = Fit{Scale: DefaultScale, OffsetX: Center, OffsetY: Center}

// Point maps a model X/Y pair to canvas coordinates.
func (f Fit) Point(x, y float64) geometry.Point {
	return geometry.Point{X: x*f.Scale + f.OffsetX, Y: y*f.Scale + f.OffsetY}
}

// Bounds is the X/Y extent of a set of atoms.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// CenterX returns the horizontal midpoint.
func (b Bounds) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }

// CenterY returns the vertical midpoint.
func (b Bounds) CenterY() float64 { return (b.MinY + b.MaxY) / 2 }

// Extent returns the bounding box of m's atoms.
// The second result is false for an empty molecule.
func Extent(m *molecule.Molecule) (Bounds, bool) {
	if m.IsEmpty() {
		return Bounds{}, false
	}
	xs := make([]float64, len(m.Atoms))
	ys := make([]float64, len(m.Atoms))
	for i, a := range m.Atoms {
		xs[i], ys[i] = a.X, a.Y
	}
	return Bounds{
		MinX: floats.Min(xs), MaxX: floats.Max(xs),
		MinY: floats.Min(ys), MaxY: floats.Max(ys),
	}, true
}

// MaxRadius returns the largest radius among the elements present in m.
// Elements missing from radii count as 0.
func MaxRadius(m *molecule.Molecule, radii map[string]float64) float64 {
	var r float64
	for _, a := range m.Atoms {
		r = math.Max(r, radii[a.Element])
	}
	return r
}

// Autofit computes the fit for m's current coordinates. An empty molecule
// gets [Default].
func Autofit(m *molecule.Molecule, radii map[string]float64) Fit {
	b, ok := Extent(m)
	if !ok {
		return Default
	}

	spanX := math.Max(b.MaxX-b.MinX, Epsilon)
	spanY := math.Max(b.MaxY-b.MinY, Epsilon)
	usable := Usable - 2*MaxRadius(m, radii)

	scale := math.Min(usable/spanX, usable/spanY)
	scale = math.Max(MinScale, math.Min(MaxScale, scale))

	return Fit{
		Scale:   scale,
		OffsetX: Center - b.CenterX()*scale,
		OffsetY: Center - b.CenterY()*scale,
	}
}

// Require returns an EMPTY_MOLECULE error when m has no atoms.
func Require(m *molecule.Molecule) error {
	if m == nil || m.IsEmpty() {
		name := ""
		if m != nil {
			name = m.Name
		}
		return errors.New(errors.ErrCodeEmptyMolecule, "molecule %q has no atoms", name)
	}
	return nil
}
