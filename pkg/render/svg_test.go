package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/molecule"
)

func renderString(t *testing.T, m *molecule.Molecule, opts ...SVGOption) string {
	t.Helper()
	s, err := Compose(m, NewContext(m, elements.Default()))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return string(RenderSVG(s, opts...))
}

func TestRenderSVGDocument(t *testing.T) {
	out := renderString(t, carbonMonoxide())

	if !strings.HasPrefix(out, `<svg version="1.1" width="1000" height="1000" xmlns="http://www.w3.org/2000/svg">`) {
		t.Errorf("missing header, got %q", out[:min(len(out), 120)])
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("missing footer")
	}

	for _, want := range []string{
		`<radialGradient id="grad-C" cx="-50%" cy="-50%" r="220%" fx="20%" fy="20%">`,
		`<stop offset="0%" stop-color="#808080"/>`,
		`<stop offset="100%" stop-color="#050505"/>`,
		`fill="url(#grad-C)"`,
		`data-element="O"`,
		`data-radius="40.00"`,
		`data-a1="0" data-a2="1" data-epairs="1"`,
		`fill="green"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("circles = %d, want 2", n)
	}
	if n := strings.Count(out, "<polygon"); n != 1 {
		t.Errorf("polygons = %d, want 1", n)
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	out := renderString(t, molecule.New("empty"))
	if strings.Contains(out, "<circle") || strings.Contains(out, "<polygon") {
		t.Error("empty molecule rendered primitives")
	}
	if !strings.Contains(out, "<defs>") {
		t.Error("empty molecule should still embed gradients")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	m := carbonMonoxide()

	out := renderString(t, m, WithBondColour("#333"), WithBackground("white"), WithoutGradients(), WithoutMetadata())
	if strings.Contains(out, "<radialGradient") {
		t.Error("WithoutGradients still wrote defs")
	}
	if !strings.Contains(out, `fill="#404040"`) {
		t.Error("WithoutGradients should fill carbon with its middle stop")
	}
	if !strings.Contains(out, `fill="#333"`) {
		t.Error("WithBondColour ignored")
	}
	if !strings.Contains(out, `<rect width="100%" height="100%" fill="white"/>`) {
		t.Error("WithBackground ignored")
	}
	if strings.Contains(out, "data-index") {
		t.Error("WithoutMetadata still wrote data attributes")
	}
}

func TestRenderSVGEscapesElement(t *testing.T) {
	m := molecule.New("x")
	m.AppendAtom(`"><script>`, 0, 0, 0)
	out := renderString(t, m)
	if strings.Contains(out, "<script>") {
		t.Error("element code not escaped")
	}
	if !strings.Contains(out, `fill="none"`) {
		t.Error("unknown element should be unfilled")
	}
}

func TestRenderSVGStableAcrossRuns(t *testing.T) {
	a := renderString(t, carbonMonoxide())
	b := renderString(t, carbonMonoxide())
	if a != b {
		t.Error("RenderSVG output differs between identical renders")
	}
}

func TestRenderSVGGradientPerElement(t *testing.T) {
	tbl := elements.Default()
	for _, e := range []elements.Element{
		{Number: 1, Code: "D", Name: "Hydrogen", Colours: [3]string{"FFFFFF", "AAAAFF", "000050"}, Radius: 25},
		{Number: 200, Code: "Xq", Name: "Heavy Thing", Colours: [3]string{"FF00FF", "800080", "200020"}, Radius: 30},
	} {
		if err := tbl.Put(e); err != nil {
			t.Fatalf("Put(%s): %v", e.Code, err)
		}
	}

	m := molecule.New("mixed")
	m.AppendAtom("H", 0, 0, 0)
	m.AppendAtom("D", 1, 0, 0)
	m.AppendAtom("Xq", 2, 0, 0)
	s, err := Compose(m, NewContext(m, tbl))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	out := string(RenderSVG(s))

	for _, code := range []string{"H", "D", "Xq"} {
		id := "grad-" + code
		if n := strings.Count(out, `<radialGradient id="`+id+`"`); n != 1 {
			t.Errorf("gradient %s defined %d times, want 1", id, n)
		}
		if !strings.Contains(out, `data-element="`+code+`"`) || !strings.Contains(out, `fill="url(#`+id+`)"`) {
			t.Errorf("atom %s does not reference %s", code, id)
		}
	}
	if strings.Contains(out, `id="Hydrogen"`) || strings.Contains(out, "Heavy Thing") {
		t.Error("gradient ids should not come from element names")
	}
}
