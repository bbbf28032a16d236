package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Indices appends the 0-based atom index to every label.
	Indices bool
}

// ToDOT converts m's bond graph to Graphviz DOT. A nil table draws every
// atom white.
func ToDOT(m *molecule.Molecule, tbl *elements.Table, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %q {\n", m.Name)
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=14, width=0.4, fixedsize=true];\n")
	buf.WriteString("\n")

	for i, a := range m.Atoms {
		label := labelEscaper.Replace(a.Element)
		if opts.Indices {
			label += `\n` + strconv.Itoa(i)
		}
		fill := "#FFFFFF"
		if tbl != nil {
			if e, ok := tbl.Get(a.Element); ok {
				fill = "#" + e.Colours[1]
			}
		}
		fmt.Fprintf(&buf, "  a%d [label=\"%s\", fillcolor=%q];\n", i, label, fill)
	}

	buf.WriteString("\n")
	for _, b := range m.Bonds {
		if b.Epairs > 1 {
			fmt.Fprintf(&buf, "  a%d -- a%d [label=\"%d\", penwidth=%d];\n", b.A1, b.A2, b.Epairs, b.Epairs)
			continue
		}
		fmt.Fprintf(&buf, "  a%d -- a%d;\n", b.A1, b.A2)
	}

	buf.WriteString("}\n")
	return buf.String()
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with a plain
// viewBox so the diagram scales like the 3-D render.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
