package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/molview/pkg/geometry"
	"github.com/matzehuels/molview/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string  // output file path (or base path for multiple outputs)
	name        string  // molecule name; default is the file name
	formats     string  // comma-separated output formats
	rx, ry, rz  float64 // rotation in degrees
	bondColour  string
	background  string
	noGradients bool
	noMetadata  bool
	scale       float64 // PNG zoom
	indices     bool    // atom indices in DOT labels
	noCache     bool
	refresh     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a structure file to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a structure file.

The molecule is rotated about its centroid (X, then Y, then Z), scaled to fit
a 1000x1000 canvas and drawn back to front. Use "-" to read from stdin.`,
		Example: `  molview render caffeine.sdf
  molview render caffeine.sdf --ry 45 -f svg,png -o out/caffeine
  cat water.sdf | molview render - -o water.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.name, "name", "", "molecule name (default: file name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	addRotationFlags(cmd, &opts.rx, &opts.ry, &opts.rz)
	cmd.Flags().StringVar(&opts.bondColour, "bond-colour", "", "bond fill colour (default from config)")
	cmd.Flags().StringVar(&opts.background, "background", "", "background colour (default: transparent)")
	cmd.Flags().BoolVar(&opts.noGradients, "no-gradients", false, "fill atoms with flat colours")
	cmd.Flags().BoolVar(&opts.noMetadata, "no-metadata", false, "omit id, class and data-* attributes")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultPNGScale, "PNG zoom factor")
	cmd.Flags().BoolVar(&opts.indices, "indices", false, "label atoms with their index (dot)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func addRotationFlags(cmd *cobra.Command, rx, ry, rz *float64) {
	cmd.Flags().Float64Var(rx, "rx", 0, "rotation about the X axis in degrees")
	cmd.Flags().Float64Var(ry, "ry", 0, "rotation about the Y axis in degrees")
	cmd.Flags().Float64Var(rz, "rz", 0, "rotation about the Z axis in degrees")
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Rotation:    geometry.Euler{X: opts.rx, Y: opts.ry, Z: opts.rz},
		Formats:     parseFormats(opts.formats),
		BondColour:  firstNonEmpty(opts.bondColour, cfg.Render.BondColour),
		Background:  firstNonEmpty(opts.background, cfg.Render.Background),
		NoGradients: opts.noGradients || cfg.Render.NoGradients,
		NoMetadata:  opts.noMetadata,
		Scale:       opts.scale,
		Indices:     opts.indices,
		Refresh:     opts.refresh,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.output == "-" && len(popts.Formats) > 1 {
		return fmt.Errorf("stdout output supports a single format, got %d", len(popts.Formats))
	}

	src, err := readInput(input)
	if err != nil {
		return err
	}
	name := firstNonEmpty(opts.name, nameFromPath(input))

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Raster and PDF conversion can take a moment on large molecules.
	var spin *Spinner
	if popts.HasFormat(pipeline.FormatPNG) || popts.HasFormat(pipeline.FormatPDF) {
		spin = newSpinnerWithContext(ctx, "Rendering "+firstNonEmpty(name, "molecule")+"...")
		spin.Start()
	}

	prog := newProgress(logger)
	res, err := runner.Execute(ctx, src, name, popts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Rendered " + res.Molecule.Name)

	if opts.output == "-" {
		_, err := os.Stdout.Write(res.Artifacts[popts.Formats[0]])
		return err
	}

	paths := outputPaths(opts.output, input, name, popts.Formats)
	for _, format := range popts.Formats {
		if err := writeOutput(paths[format], res.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", StyleHighlight.Render(res.Molecule.Name))
	printStats(res.Stats.AtomCount, res.Stats.BondCount, res.CacheInfo.RenderHit)
	for _, format := range popts.Formats {
		printFile(paths[format])
	}
	return nil
}

// outputPaths maps each format to its output file.
// A single format writes to output as given; several formats share the base
// path of output (or of the input file) with per-format extensions.
func outputPaths(output, input, name string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input, name)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input, name string) string {
	if output == "" {
		if input == "-" {
			return firstNonEmpty(name, appName)
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
