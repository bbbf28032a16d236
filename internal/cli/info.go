package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/projection"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Summarize a structure file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args[0])
			if err != nil {
				return err
			}
			m, err := pipeline.Parse(src, firstNonEmpty(name, nameFromPath(args[0])))
			if err != nil {
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
			printMolecule(m, tbl)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "molecule name (default: file name)")
	return cmd
}

// printMolecule prints a summary block followed by a per-element table.
func printMolecule(m *molecule.Molecule, tbl *elements.Table) {
	fmt.Println(StyleTitle.Render(m.Name))
	printKeyValue("Formula", m.Formula())
	printKeyValue("Atoms", strconv.Itoa(m.AtomCount()))
	printKeyValue("Bonds", strconv.Itoa(m.BondCount()))
	printKeyValue("Fragments", strconv.Itoa(len(m.Fragments())))

	if b, ok := projection.Extent(m); ok {
		printKeyValue("Extent", fmt.Sprintf("x [%.3f, %.3f]  y [%.3f, %.3f]", b.MinX, b.MaxX, b.MinY, b.MaxY))
	}
	if c, ok := m.Centroid(); ok {
		printKeyValue("Centroid", fmt.Sprintf("(%.3f, %.3f, %.3f)", c.X, c.Y, c.Z))
	}
	fit := projection.Autofit(m, tbl.Radii())
	printKeyValue("Scale", fmt.Sprintf("%.2f", fit.Scale))

	counts := m.ElementCounts()
	if len(counts) == 0 {
		return
	}
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		name, radius, colour := "unknown", "0", "none"
		if e, ok := tbl.Get(code); ok {
			name, radius, colour = e.Name, strconv.FormatFloat(e.Radius, 'f', -1, 64), "#"+e.Colours[1]
		}
		rows = append(rows, []string{code, name, strconv.Itoa(counts[code]), radius, colour})
	}
	fmt.Println()
	fmt.Println(renderTable([]string{"Element", "Name", "Count", "Radius", "Colour"}, rows))
}
