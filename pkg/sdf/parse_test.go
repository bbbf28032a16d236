package sdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/molview/pkg/errors"
)

const twoAtoms = `title
  program
comment
  2  1  0  0  0  0  0  0  0  0999 V2000
0.0 0.0 0.0 C
1.0 0.0 0.0 O
1 2 1
M  END
`

func TestParseExample(t *testing.T) {
	m, err := Parse(strings.NewReader(twoAtoms), "co")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.AtomCount() != 2 || m.BondCount() != 1 {
		t.Fatalf("counts = %d atoms, %d bonds, want 2, 1", m.AtomCount(), m.BondCount())
	}
	if a := m.Atoms[0]; a.Element != "C" || a.X != 0 || a.Y != 0 || a.Z != 0 {
		t.Errorf("atom 0 = %+v, want C@(0,0,0)", a)
	}
	if a := m.Atoms[1]; a.Element != "O" || a.X != 1 || a.Y != 0 || a.Z != 0 {
		t.Errorf("atom 1 = %+v, want O@(1,0,0)", a)
	}
	if b := m.Bonds[0]; b.A1 != 0 || b.A2 != 1 || b.Epairs != 1 {
		t.Errorf("bond 0 = (%d, %d, %d), want (0, 1, 1)", b.A1, b.A2, b.Epairs)
	}
	if m.Name != "co" {
		t.Errorf("Name = %q, want %q", m.Name, "co")
	}
}

func TestParseNameFromTitle(t *testing.T) {
	m, err := Parse(strings.NewReader(twoAtoms), "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "title" {
		t.Errorf("Name = %q, want %q", m.Name, "title")
	}
}

func TestParseIgnoresExtraTokens(t *testing.T) {
	in := "a\nb\nc\n3 2 extra\n" +
		"0 0 0 N 0 0 0\n1 0 0 H 0 0\n0 1 0 H\n" +
		"1 2 1 0 0 0\n1 3 1\n"
	m, err := Parse(strings.NewReader(in), "nh2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Bonds[1].A1 != 0 || m.Bonds[1].A2 != 2 {
		t.Errorf("bond 1 = (%d, %d), want (0, 2)", m.Bonds[1].A1, m.Bonds[1].A2)
	}
}

func TestParseEmptyMolecule(t *testing.T) {
	m, err := Parse(strings.NewReader("a\nb\nc\n0 0\n"), "none")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !m.IsEmpty() || m.BondCount() != 0 {
		t.Errorf("got %d atoms, %d bonds, want empty", m.AtomCount(), m.BondCount())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"no header", "a\nb\n", errors.ErrCodeTruncatedInput},
		{"no counts", "a\nb\nc\n", errors.ErrCodeTruncatedInput},
		{"non-numeric counts", "a\nb\nc\nx y\n", errors.ErrCodeMalformedHeader},
		{"one count", "a\nb\nc\n2\n", errors.ErrCodeMalformedHeader},
		{"negative count", "a\nb\nc\n-1 0\n", errors.ErrCodeMalformedHeader},
		{"missing atoms", "a\nb\nc\n2 0\n0 0 0 C\n", errors.ErrCodeTruncatedInput},
		{"missing bonds", "a\nb\nc\n2 1\n0 0 0 C\n1 0 0 O\n", errors.ErrCodeTruncatedInput},
		{"short atom", "a\nb\nc\n1 0\n0 0 0\n", errors.ErrCodeMalformedAtom},
		{"bad coordinate", "a\nb\nc\n1 0\n0 zero 0 C\n", errors.ErrCodeMalformedAtom},
		{"short bond", "a\nb\nc\n2 1\n0 0 0 C\n1 0 0 O\n1 2\n", errors.ErrCodeMalformedBond},
		{"bad bond", "a\nb\nc\n2 1\n0 0 0 C\n1 0 0 O\n1 two 1\n", errors.ErrCodeMalformedBond},
		{"bond out of range", "a\nb\nc\n2 1\n0 0 0 C\n1 0 0 O\n1 3 1\n", errors.ErrCodeInvalidBondIndex},
		{"bond zero index", "a\nb\nc\n2 1\n0 0 0 C\n1 0 0 O\n0 1 1\n", errors.ErrCodeInvalidBondIndex},
		{"self bond", "a\nb\nc\n2 1\n0 0 0 C\n1 0 0 O\n2 2 1\n", errors.ErrCodeInvalidBondIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(strings.NewReader(tt.in), "x")
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
			if m != nil {
				t.Errorf("Parse() returned partial molecule %+v", m)
			}
		})
	}
}

func TestParseErrorNamesLine(t *testing.T) {
	_, err := Parse(strings.NewReader("a\nb\nc\n1 0\n0 0 oops C\n"), "x")
	if err == nil || !strings.Contains(err.Error(), "line 5") {
		t.Errorf("error = %v, want mention of line 5", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	m, err := Parse(strings.NewReader(twoAtoms), "co")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Parse(&buf, "")
	if err != nil {
		t.Fatalf("Parse(Write()): %v", err)
	}
	if got.Name != "co" || got.AtomCount() != 2 || got.BondCount() != 1 {
		t.Errorf("round trip = %q with %d atoms, %d bonds", got.Name, got.AtomCount(), got.BondCount())
	}
	if got.Bonds[0].A1 != 0 || got.Bonds[0].A2 != 1 {
		t.Errorf("round trip bond = (%d, %d), want (0, 1)", got.Bonds[0].A1, got.Bonds[0].A2)
	}
}
