package molecule

import (
	"slices"
	"strconv"
	"strings"
)

// ElementCounts returns how many atoms of each element the molecule holds.
func (m *Molecule) ElementCounts() map[string]int {
	counts := make(map[string]int)
	for _, a := range m.Atoms {
		counts[a.Element]++
	}
	return counts
}

// Formula returns the molecular formula in Hill order: carbon first, then
// hydrogen, then the remaining elements alphabetically. Without carbon all
// elements are alphabetical.
func (m *Molecule) Formula() string {
	counts := m.ElementCounts()
	if len(counts) == 0 {
		return ""
	}

	var order []string
	_, hasC := counts["C"]
	if hasC {
		order = append(order, "C")
		if _, ok := counts["H"]; ok {
			order = append(order, "H")
		}
	}
	var rest []string
	for el := range counts {
		if hasC && (el == "C" || el == "H") {
			continue
		}
		rest = append(rest, el)
	}
	slices.Sort(rest)
	order = append(order, rest...)

	var b strings.Builder
	for _, el := range order {
		b.WriteString(el)
		if n := counts[el]; n > 1 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}

func sortFragments(frags [][]int) {
	for _, f := range frags {
		slices.Sort(f)
	}
	slices.SortFunc(frags, func(a, b []int) int { return a[0] - b[0] })
}
