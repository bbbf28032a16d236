package sdf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/molview/pkg/errors"
	"github.com/matzehuels/molview/pkg/molecule"
)

// HeaderLines is the number of leading lines skipped before the counts line.
const HeaderLines = 3

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Parse reads a structure from r into a new molecule called name.
func Parse(r io.Reader, name string) (*molecule.Molecule, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read structure")
	}
	return ParseLines(lines, name)
}

// ParseLines parses an already split structure. An empty name falls back
// to the title line.
func ParseLines(lines []string, name string) (*molecule.Molecule, error) {
	p := &parser{lines: lines}
	if name == "" && len(lines) > 0 {
		name = strings.TrimSpace(lines[0])
	}

	if !p.skip(HeaderLines) {
		return nil, errors.New(errors.ErrCodeTruncatedInput,
			"expected %d header lines, got %d", HeaderLines, len(lines))
	}

	nAtoms, nBonds, err := p.counts()
	if err != nil {
		return nil, err
	}

	if rest := len(lines) - p.pos; rest < nAtoms+nBonds {
		return nil, errors.New(errors.ErrCodeTruncatedInput,
			"counts line declares %d atoms and %d bonds, only %d lines follow", nAtoms, nBonds, rest)
	}

	m := molecule.New(name)
	for range nAtoms {
		if err := p.atom(m); err != nil {
			return nil, err
		}
	}
	for range nBonds {
		if err := p.bond(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) skip(n int) bool {
	if len(p.lines)-p.pos < n {
		return false
	}
	p.pos += n
	return true
}

// next returns the fields of the next line and its 1-based number.
func (p *parser) next() ([]string, int, bool) {
	if p.pos >= len(p.lines) {
		return nil, p.pos + 1, false
	}
	p.pos++
	return strings.Fields(p.lines[p.pos-1]), p.pos, true
}

func (p *parser) counts() (int, int, error) {
	f, line, ok := p.next()
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeTruncatedInput, "line %d: missing counts line", line)
	}
	if len(f) < 2 {
		return 0, 0, errors.New(errors.ErrCodeMalformedHeader,
			"line %d: expected atom and bond counts, got %d fields", line, len(f))
	}
	nAtoms, err := strconv.Atoi(f[0])
	if err != nil || nAtoms < 0 {
		return 0, 0, errors.New(errors.ErrCodeMalformedHeader, "line %d: invalid atom count %q", line, f[0])
	}
	nBonds, err := strconv.Atoi(f[1])
	if err != nil || nBonds < 0 {
		return 0, 0, errors.New(errors.ErrCodeMalformedHeader, "line %d: invalid bond count %q", line, f[1])
	}
	return nAtoms, nBonds, nil
}

func (p *parser) atom(m *molecule.Molecule) error {
	f, line, ok := p.next()
	if !ok {
		return errors.New(errors.ErrCodeTruncatedInput, "line %d: missing atom record", line)
	}
	if len(f) < 4 {
		return errors.New(errors.ErrCodeMalformedAtom,
			"line %d: expected x y z element, got %d fields", line, len(f))
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return errors.New(errors.ErrCodeMalformedAtom, "line %d: invalid coordinate %q", line, f[i])
		}
		xyz[i] = v
	}
	m.AppendAtom(f[3], xyz[0], xyz[1], xyz[2])
	return nil
}

func (p *parser) bond(m *molecule.Molecule) error {
	f, line, ok := p.next()
	if !ok {
		return errors.New(errors.ErrCodeTruncatedInput, "line %d: missing bond record", line)
	}
	if len(f) < 3 {
		return errors.New(errors.ErrCodeMalformedBond,
			"line %d: expected a1 a2 epairs, got %d fields", line, len(f))
	}
	var v [3]int
	for i := range v {
		n, err := strconv.Atoi(f[i])
		if err != nil {
			return errors.New(errors.ErrCodeMalformedBond, "line %d: invalid integer %q", line, f[i])
		}
		v[i] = n
	}
	if _, err := m.AppendBond(v[0]-1, v[1]-1, v[2]); err != nil {
		return errors.New(errors.ErrCodeInvalidBondIndex, "line %d: %s", line, errors.UserMessage(err))
	}
	return nil
}
