// Package pipeline provides the core rendering pipeline for molview.
//
// This package implements the complete parse → transform → render pipeline
// used by the CLI and the HTTP server. By centralizing this logic, both entry
// points cache, log and report metrics the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a structure file into a [molecule.Molecule]
//  2. Transform: Rotate about the centroid and autofit onto the canvas
//  3. Render: Compose the depth-sorted scene and write each output format
//
// Parsed molecules and rendered artifacts are cached by content hash, so
// re-rendering the same file at the same rotation is a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, elements.Default(), logger)
//	result, err := runner.Execute(ctx, src, "water", pipeline.Options{
//	    Rotation: geometry.Euler{Y: 30},
//	    Formats:  []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Molecules that are already in memory (for example loaded from a store)
// skip the parse stage:
//
//	result, err := runner.RenderMolecule(ctx, m, opts)
package pipeline

import (
	"math"
	"slices"
	"time"

	"github.com/matzehuels/molview/pkg/cache"
	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/geometry"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/render"
)

// DefaultPNGScale is the rsvg-convert zoom used for PNG output.
const DefaultPNGScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Transform options
	Rotation geometry.Euler `json:"rotation"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	BondColour  string   `json:"bond_colour,omitempty"`
	NoGradients bool     `json:"no_gradients,omitempty"`
	NoMetadata  bool     `json:"no_metadata,omitempty"`
	Background  string   `json:"background,omitempty"`
	Scale       float64  `json:"scale,omitempty"` // PNG zoom
	Indices     bool     `json:"indices,omitempty"`

	// Refresh bypasses cache lookups; results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Molecule is the rotated molecule that was drawn.
	Molecule *molecule.Molecule

	// SourceHash is the content hash of the input.
	SourceHash string

	// Scene is the composed, depth-sorted scene.
	Scene render.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	AtomCount     int
	BondCount     int
	Scale         float64
	ParseTime     time.Duration
	TransformTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether the molecule came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	for _, a := range []float64{o.Rotation.X, o.Rotation.Y, o.Rotation.Z} {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "rotation angle must be finite, got %v", a)
		}
	}
	if o.Scale < 0 || math.IsNaN(o.Scale) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.BondColour == "" {
		o.BondColour = render.DefaultBondColour
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// SceneKeyOpts returns cache key options for the composed scene.
func (o *Options) SceneKeyOpts(elementsHash string) cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		Rotation:     [3]float64{o.Rotation.X, o.Rotation.Y, o.Rotation.Z},
		ElementsHash: elementsHash,
		BondColour:   o.BondColour,
	}
}

// ArtifactKeyOpts returns cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		NoGradients: o.NoGradients,
		Background:  o.Background,
	}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatDOT:
		k.Indices = o.Indices
	case FormatSVG, FormatPDF:
		k.NoMetadata = o.NoMetadata
	}
	return k
}
