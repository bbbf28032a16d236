package sdf

import (
	"bufio"
	"fmt"
	"io"

	"github.com/matzehuels/molview/pkg/molecule"
)

// Write serializes m in the format read by [Parse]. Bond atom numbers are
// written 1-based. Coordinates keep four decimals.
func Write(w io.Writer, m *molecule.Molecule) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, m.Name)
	fmt.Fprintln(bw, "  molview")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "%3d %3d  0  0  0  0  0  0  0  0999 V2000\n", m.AtomCount(), m.BondCount())
	for _, a := range m.Atoms {
		fmt.Fprintf(bw, "%10.4f %10.4f %10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n", a.X, a.Y, a.Z, a.Element)
	}
	for _, b := range m.Bonds {
		fmt.Fprintf(bw, "%3d %3d %3d  0  0  0  0\n", b.A1+1, b.A2+1, b.Epairs)
	}
	fmt.Fprintln(bw, "M  END")

	return bw.Flush()
}
