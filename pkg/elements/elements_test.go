package elements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/molview/pkg/errors"
)

func TestDefault(t *testing.T) {
	tbl := Default()

	tests := []struct {
		code   string
		radius float64
		id     string
	}{
		{"H", 25, "grad-H"},
		{"C", 40, "grad-C"},
		{"O", 40, "grad-O"},
		{"N", 40, "grad-N"},
		{"Xx", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := tbl.Radius(tt.code); got != tt.radius {
				t.Errorf("Radius(%q) = %v, want %v", tt.code, got, tt.radius)
			}
			if got := tbl.GradientID(tt.code); got != tt.id {
				t.Errorf("GradientID(%q) = %q, want %q", tt.code, got, tt.id)
			}
		})
	}
}

func TestDefaultIsCopy(t *testing.T) {
	a := Default()
	if err := a.Put(Element{Number: 6, Code: "C", Name: "Carbon", Colours: [3]string{"000000", "000000", "000000"}, Radius: 1}); err != nil {
		t.Fatal(err)
	}
	if got := Default().Radius("C"); got != 40 {
		t.Errorf("Default().Radius(C) = %v after mutating a copy, want 40", got)
	}
}

func TestAllSortedByNumber(t *testing.T) {
	all := Default().All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Number > all[i].Number {
			t.Fatalf("All() not sorted: %d before %d", all[i-1].Number, all[i].Number)
		}
	}
	if all[0].Code != "H" {
		t.Errorf("All()[0] = %s, want H", all[0].Code)
	}
}

func TestPutRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		e    Element
	}{
		{"bad code", Element{Code: "carbon", Name: "Carbon", Colours: [3]string{"000000", "000000", "000000"}}},
		{"no name", Element{Code: "C", Colours: [3]string{"000000", "000000", "000000"}}},
		{"bad colour", Element{Code: "C", Name: "Carbon", Colours: [3]string{"#00000", "000000", "000000"}}},
		{"negative radius", Element{Code: "C", Name: "Carbon", Colours: [3]string{"000000", "000000", "000000"}, Radius: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTable().Put(tt.e)
			if !errors.Is(err, errors.ErrCodeInvalidElement) {
				t.Errorf("Put() error = %v, want %s", err, errors.ErrCodeInvalidElement)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elements.toml")
	data := `
[[element]]
number = 11
code = "Na"
name = "Sodium"
colours = ["AB5CF2", "7A2FC0", "3D1760"]
radius = 60
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 1 || tbl.Radius("Na") != 60 {
		t.Errorf("Load() = %d elements, radius(Na) = %v", tbl.Len(), tbl.Radius("Na"))
	}

	base := Default()
	base.Merge(tbl)
	if base.Radius("Na") != 60 || base.Radius("C") != 40 {
		t.Error("Merge did not combine tables")
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("[[element]\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Decode(garbage) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestColours(t *testing.T) {
	g, ok := Default().Colours()["O"]
	if !ok {
		t.Fatal("Colours() missing O")
	}
	if g.ID != "grad-O" || g.Stops[1] != "FF0000" {
		t.Errorf("Colours()[O] = %+v", g)
	}
}

func TestDelete(t *testing.T) {
	tbl := Default()
	if !tbl.Delete("O") {
		t.Fatal("Delete(O) = false, want true")
	}
	if _, ok := tbl.Get("O"); ok {
		t.Error("O still present after Delete")
	}
	if tbl.Delete("O") {
		t.Error("second Delete(O) = true, want false")
	}
}
