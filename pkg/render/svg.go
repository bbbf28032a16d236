package render

import (
	"bytes"
	"fmt"
	"html"
)

// SVGOption customizes [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	bondColour string
	background string
	gradients  bool
	metadata   bool
}

// WithBondColour overrides the scene's bond fill.
func WithBondColour(c string) SVGOption { return func(r *svgRenderer) { r.bondColour = c } }

// WithBackground paints a full-canvas rectangle behind the molecule.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithoutGradients drops the gradient defs and fills atoms with their
// middle stop colour instead.
func WithoutGradients() SVGOption { return func(r *svgRenderer) { r.gradients = false } }

// WithoutMetadata drops the id, class and data-* attributes.
func WithoutMetadata() SVGOption { return func(r *svgRenderer) { r.metadata = false } }

// RenderSVG writes s as a complete SVG document.
func RenderSVG(s Scene, opts ...SVGOption) []byte {
	r := svgRenderer{bondColour: s.BondColour, gradients: true, metadata: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.bondColour == "" {
		r.bondColour = DefaultBondColour
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg version="1.1" width="%.0f" height="%.0f" xmlns="http://www.w3.org/2000/svg">`+"\n",
		s.Width, s.Height)

	if r.gradients {
		renderDefs(&buf, s)
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	solid := solidFills(s)
	for _, p := range s.Primitives {
		switch p.Kind {
		case KindAtom:
			r.renderCircle(&buf, p, solid)
		case KindBond:
			r.renderPolygon(&buf, p)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, s Scene) {
	if len(s.Gradients) == 0 {
		return
	}
	buf.WriteString("<defs>\n")
	for _, g := range s.Gradients {
		fmt.Fprintf(buf, `  <radialGradient id="%s" cx="-50%%" cy="-50%%" r="220%%" fx="20%%" fy="20%%">`+"\n",
			html.EscapeString(g.ID))
		for i, stop := range g.Stops {
			fmt.Fprintf(buf, `    <stop offset="%d%%" stop-color="#%s"/>`+"\n", i*50, html.EscapeString(stop))
		}
		buf.WriteString("  </radialGradient>\n")
	}
	buf.WriteString("</defs>\n")
}

// solidFills maps gradient ids to their middle stop for WithoutGradients.
func solidFills(s Scene) map[string]string {
	m := make(map[string]string, len(s.Gradients))
	for _, g := range s.Gradients {
		m[g.ID] = "#" + g.Stops[1]
	}
	return m
}

func (r *svgRenderer) renderCircle(buf *bytes.Buffer, p Primitive, solid map[string]string) {
	c := p.Circle
	fill := "none"
	if c.Gradient != "" {
		if r.gradients {
			fill = "url(#" + c.Gradient + ")"
		} else if f, ok := solid[c.Gradient]; ok {
			fill = f
		}
	}
	fmt.Fprintf(buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"`, c.CX, c.CY, c.R, html.EscapeString(fill))
	if r.metadata {
		fmt.Fprintf(buf, ` id="atom-%d" class="atom" data-index="%d" data-element="%s" data-radius="%.2f" data-gradient="%s"`,
			p.Index, p.Index, html.EscapeString(c.Element), c.R, html.EscapeString(c.Gradient))
	}
	buf.WriteString("/>\n")
}

func (r *svgRenderer) renderPolygon(buf *bytes.Buffer, p Primitive) {
	q := p.Polygon
	fmt.Fprintf(buf, `  <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s"`,
		q.Points[0].X, q.Points[0].Y, q.Points[1].X, q.Points[1].Y,
		q.Points[2].X, q.Points[2].Y, q.Points[3].X, q.Points[3].Y,
		html.EscapeString(r.bondColour))
	if r.metadata {
		fmt.Fprintf(buf, ` id="bond-%d" class="bond" data-index="%d" data-a1="%d" data-a2="%d" data-epairs="%d"`,
			p.Index, p.Index, q.A1, q.A2, q.Epairs)
	}
	buf.WriteString("/>\n")
}
