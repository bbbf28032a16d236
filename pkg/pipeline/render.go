package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/render"
	"github.com/matzehuels/molview/pkg/render/nodelink"
)

// SceneDocument is the JSON output format.
type SceneDocument struct {
	Name      string       `json:"name"`
	Formula   string       `json:"formula"`
	Atoms     int          `json:"atoms"`
	Bonds     int          `json:"bonds"`
	Fragments int          `json:"fragments"`
	Scene     render.Scene `json:"scene"`
}

// Render generates output artifacts in the requested formats.
// m must be the molecule scene was composed from.
func Render(ctx context.Context, m *molecule.Molecule, tbl *elements.Table, scene render.Scene, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgOnce := func() []byte {
		if svg == nil {
			svg = render.RenderSVG(scene, buildSVGOptions(opts)...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgOnce()
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgOnce(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgOnce())
		case FormatJSON:
			data, err = json.MarshalIndent(SceneDocument{
				Name:      m.Name,
				Formula:   m.Formula(),
				Atoms:     m.AtomCount(),
				Bonds:     m.BondCount(),
				Fragments: len(m.Fragments()),
				Scene:     scene,
			}, "", "  ")
		case FormatDOT:
			data = []byte(nodelink.ToDOT(m, tbl, nodelink.Options{Indices: opts.Indices}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []render.SVGOption {
	var svgOpts []render.SVGOption
	if opts.BondColour != "" {
		svgOpts = append(svgOpts, render.WithBondColour(opts.BondColour))
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, render.WithBackground(opts.Background))
	}
	if opts.NoGradients {
		svgOpts = append(svgOpts, render.WithoutGradients())
	}
	if opts.NoMetadata {
		svgOpts = append(svgOpts, render.WithoutMetadata())
	}
	return svgOpts
}
