package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/geometry"
	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/render"
)

func newTestViewModel(t *testing.T) ViewModel {
	t.Helper()
	m, err := pipeline.Parse([]byte(water), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts := pipeline.Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("options: %v", err)
	}
	return NewViewModel(m, elements.Default(), opts, filepath.Join(t.TempDir(), "water.svg"))
}

func press(m ViewModel, keys ...string) ViewModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ViewModel)
	}
	return m
}

func TestViewModelRotation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want geometry.Euler
	}{
		{"right turns about y", []string{"right"}, geometry.Euler{Y: 15}},
		{"left wraps", []string{"left"}, geometry.Euler{Y: 345}},
		{"down turns about x", []string{"down", "down"}, geometry.Euler{X: 30}},
		{"brackets turn about z", []string{"]", "]", "["}, geometry.Euler{Z: 15}},
		{"reset", []string{"right", "up", "]", "r"}, geometry.Euler{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(newTestViewModel(t), tt.keys...).Rotation
			if got != tt.want {
				t.Errorf("rotation = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewModelLeavesMoleculeUntouched(t *testing.T) {
	m := newTestViewModel(t)
	before := m.Molecule.Atoms[1]
	m = press(m, "right", "down")
	_ = m.View()
	if m.Molecule.Atoms[1] != before {
		t.Errorf("atom moved from %+v to %+v", before, m.Molecule.Atoms[1])
	}
}

func TestViewModelSave(t *testing.T) {
	m := press(newTestViewModel(t), "right", "s")
	if m.Err != nil {
		t.Fatalf("save: %v", m.Err)
	}
	if m.Saved != m.Path {
		t.Errorf("Saved = %q, want %q", m.Saved, m.Path)
	}
	data, err := os.ReadFile(m.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `id="grad-O"`) {
		t.Error("saved svg should define the Oxygen gradient")
	}
}

func TestViewModelQuit(t *testing.T) {
	_, cmd := newTestViewModel(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewModelWindowSize(t *testing.T) {
	next, _ := newTestViewModel(t).Update(tea.WindowSizeMsg{Width: 10, Height: 5})
	m := next.(ViewModel)
	if m.Cols != minGridCols || m.Rows != minGridRows {
		t.Errorf("grid = %dx%d, want minimum %dx%d", m.Cols, m.Rows, minGridCols, minGridRows)
	}
}

func TestRasterize(t *testing.T) {
	scene := render.Scene{
		Width:  1000,
		Height: 1000,
		Primitives: []render.Primitive{
			{Kind: render.KindAtom, Index: 0, Circle: &render.Circle{CX: 100, CY: 500, Element: "C"}},
			{Kind: render.KindAtom, Index: 1, Circle: &render.Circle{CX: 900, CY: 500, Element: "O"}},
			{Kind: render.KindBond, Index: 0, Polygon: &render.Polygon{A1: 0, A2: 1}},
		},
	}
	grid := rasterize(scene, 10, 10)
	row := string(grid[5])
	if row != " C-------O" {
		t.Errorf("row = %q", row)
	}
}

func TestRasterizeClipsOffCanvas(t *testing.T) {
	scene := render.Scene{
		Width:  1000,
		Height: 1000,
		Primitives: []render.Primitive{
			{Kind: render.KindAtom, Index: 0, Circle: &render.Circle{CX: -40, CY: 500, Element: "N"}},
			{Kind: render.KindAtom, Index: 1, Circle: &render.Circle{CX: 500, CY: -40, Element: "S"}},
		},
	}
	grid := rasterize(scene, 10, 10)
	for r, row := range grid {
		if strings.TrimSpace(string(row)) != "" {
			t.Errorf("row %d = %q, want blank for off-canvas atoms", r, string(row))
		}
	}
}

func TestBondRune(t *testing.T) {
	tests := []struct {
		dc, dr int
		want   rune
	}{
		{5, 0, '-'},
		{0, 4, '|'},
		{3, 3, '\\'},
		{3, -3, '/'},
		{-3, -3, '\\'},
		{10, 1, '-'},
	}
	for _, tt := range tests {
		if got := bondRune(tt.dc, tt.dr); got != tt.want {
			t.Errorf("bondRune(%d, %d) = %q, want %q", tt.dc, tt.dr, got, tt.want)
		}
	}
}

func TestWrapDegrees(t *testing.T) {
	for in, want := range map[float64]float64{0: 0, 360: 0, -15: 345, 375: 15} {
		if got := wrapDegrees(in); got != want {
			t.Errorf("wrapDegrees(%v) = %v, want %v", in, got, want)
		}
	}
}
