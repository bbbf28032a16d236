package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/geometry"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/projection"
	"github.com/matzehuels/molview/pkg/render"
)

const (
	rotationStep = 15.0
	minGridCols  = 20
	minGridRows  = 10
)

var (
	viewFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)
	viewAtomStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewBondStyle = lipgloss.NewStyle().Foreground(colorGreen)
	viewHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		stored bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "view [file|name]",
		Short: "Rotate a molecule interactively in the terminal",
		Long: `View opens a terminal preview of a molecule.

Arrow keys rotate about the X and Y axes, [ and ] about Z. Press r to reset,
s to save the current orientation as SVG and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadViewMolecule(cmd, args[0], stored)
			if err != nil {
				return err
			}
			if err := projection.Require(m); err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			tbl, err := loadElements(cfg)
			if err != nil {
				return err
			}
			opts := pipeline.Options{BondColour: cfg.Render.BondColour, Background: cfg.Render.Background, NoGradients: cfg.Render.NoGradients}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			model := NewViewModel(m, tbl, opts, firstNonEmpty(output, m.Name+".svg"))
			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("view: %w", err)
			}
			if vm, ok := final.(ViewModel); ok && vm.Saved != "" {
				printSuccess("Saved")
				printFile(vm.Saved)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stored, "stored", false, "treat the argument as a stored molecule name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "path used when saving (default: <name>.svg)")
	return cmd
}

func (c *CLI) loadViewMolecule(cmd *cobra.Command, arg string, stored bool) (*molecule.Molecule, error) {
	if !stored {
		src, err := readInput(arg)
		if err != nil {
			return nil, err
		}
		return pipeline.Parse(src, nameFromPath(arg))
	}
	st, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Load(cmd.Context(), arg)
}

// ViewModel is the bubbletea model of the interactive viewer.
// The molecule is never mutated; each frame renders a rotated copy.
type ViewModel struct {
	Molecule *molecule.Molecule
	Elements *elements.Table
	Options  pipeline.Options
	Rotation geometry.Euler
	Path     string
	Saved    string
	Err      error
	Cols     int
	Rows     int
}

// NewViewModel returns a viewer for m that saves to path.
func NewViewModel(m *molecule.Molecule, tbl *elements.Table, opts pipeline.Options, path string) ViewModel {
	return ViewModel{
		Molecule: m,
		Elements: tbl,
		Options:  opts,
		Path:     path,
		Cols:     60,
		Rows:     24,
	}
}

func (m ViewModel) Init() tea.Cmd {
	return nil
}

func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.Rotation.Y = wrapDegrees(m.Rotation.Y - rotationStep)
		case "right", "l":
			m.Rotation.Y = wrapDegrees(m.Rotation.Y + rotationStep)
		case "up", "k":
			m.Rotation.X = wrapDegrees(m.Rotation.X - rotationStep)
		case "down", "j":
			m.Rotation.X = wrapDegrees(m.Rotation.X + rotationStep)
		case "[":
			m.Rotation.Z = wrapDegrees(m.Rotation.Z - rotationStep)
		case "]":
			m.Rotation.Z = wrapDegrees(m.Rotation.Z + rotationStep)
		case "r":
			m.Rotation = geometry.Euler{}
		case "s":
			m.Err = m.save()
			if m.Err == nil {
				m.Saved = m.Path
			}
		}
	case tea.WindowSizeMsg:
		m.Cols = max(msg.Width-4, minGridCols)
		m.Rows = max(msg.Height-8, minGridRows)
	}
	return m, nil
}

func (m ViewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Molecule.Name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s  rx %.0f° ry %.0f° rz %.0f°",
		m.Molecule.Formula(), m.Rotation.X, m.Rotation.Y, m.Rotation.Z)))
	b.WriteString("\n")

	_, scene, err := m.scene()
	if err != nil {
		b.WriteString(styleIconError.Render(err.Error()))
		return b.String()
	}
	b.WriteString(viewFrameStyle.Render(strings.Join(styleGrid(rasterize(scene, m.Cols, m.Rows)), "\n")))
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
	case m.Saved != "":
		b.WriteString(styleIconSuccess.Render(iconSuccess + " saved " + m.Saved))
		b.WriteString("\n")
	}
	b.WriteString(viewHelpStyle.Render("←/→ ry  ↑/↓ rx  [/] rz  r reset  s save  q quit"))
	return b.String()
}

// scene composes the current orientation on the standard canvas.
func (m ViewModel) scene() (*molecule.Molecule, render.Scene, error) {
	opts := m.Options
	opts.Rotation = m.Rotation
	rotated, rctx, err := pipeline.Transform(m.Molecule, m.Elements, opts)
	if err != nil {
		return nil, render.Scene{}, err
	}
	scene, err := render.Compose(rotated, rctx)
	return rotated, scene, err
}

func (m ViewModel) save() error {
	rotated, scene, err := m.scene()
	if err != nil {
		return err
	}
	opts := m.Options
	opts.Formats = []string{pipeline.FormatSVG}
	out, err := pipeline.Render(context.Background(), rotated, m.Elements, scene, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(m.Path, out[pipeline.FormatSVG], 0o644)
}

// rasterize paints scene onto a cols×rows character grid in primitive
// order, so nearer atoms and bonds overwrite farther ones.
func rasterize(scene render.Scene, cols, rows int) [][]rune {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	if cols == 0 || rows == 0 {
		return grid
	}

	toCell := func(x, y float64) (int, int) {
		c := int(math.Floor(x / scene.Width * float64(cols)))
		r := int(math.Floor(y / scene.Height * float64(rows)))
		return c, r
	}
	put := func(c, r int, ch rune) {
		if r >= 0 && r < rows && c >= 0 && c < cols {
			grid[r][c] = ch
		}
	}

	centres := make(map[int]geometry.Point)
	for _, p := range scene.Primitives {
		if p.Kind == render.KindAtom {
			centres[p.Index] = geometry.Point{X: p.Circle.CX, Y: p.Circle.CY}
		}
	}

	for _, p := range scene.Primitives {
		switch p.Kind {
		case render.KindBond:
			a, b := centres[p.Polygon.A1], centres[p.Polygon.A2]
			c1, r1 := toCell(a.X, a.Y)
			c2, r2 := toCell(b.X, b.Y)
			ch := bondRune(c2-c1, r2-r1)
			steps := max(abs(c2-c1), abs(r2-r1))
			for s := 1; s < steps; s++ {
				t := float64(s) / float64(steps)
				put(c1+int(math.Round(t*float64(c2-c1))), r1+int(math.Round(t*float64(r2-r1))), ch)
			}
		case render.KindAtom:
			c, r := toCell(p.Circle.CX, p.Circle.CY)
			for i, ch := range p.Circle.Element {
				put(c+i, r, ch)
			}
		}
	}
	return grid
}

// bondRune picks a line character for a step of (dc, dr) cells.
func bondRune(dc, dr int) rune {
	switch {
	case dr == 0 || abs(dc) > 2*abs(dr):
		return '-'
	case dc == 0 || abs(dr) > 2*abs(dc):
		return '|'
	case (dc > 0) == (dr > 0):
		return '\\'
	default:
		return '/'
	}
}

func styleGrid(grid [][]rune) []string {
	lines := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for _, ch := range row {
			switch ch {
			case ' ':
				b.WriteRune(ch)
			case '-', '|', '/', '\\':
				b.WriteString(viewBondStyle.Render(string(ch)))
			default:
				b.WriteString(viewAtomStyle.Render(string(ch)))
			}
		}
		lines[i] = b.String()
	}
	return lines
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
