package pipeline

import (
	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/render"
)

// Transform rotates a copy of m about its centroid and fits the result onto
// the canvas. m itself is left untouched.
func Transform(m *molecule.Molecule, tbl *elements.Table, opts Options) (*molecule.Molecule, render.Context, error) {
	work := m.Clone()
	if err := work.Rotate(opts.Rotation); err != nil {
		return nil, render.Context{}, err
	}
	rc := render.NewContext(work, tbl)
	if opts.BondColour != "" {
		rc.BondColour = opts.BondColour
	}
	return work, rc, nil
}
