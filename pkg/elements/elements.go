// Package elements holds the per-element display table: the radius of the
// circle drawn for an atom and the three stops of its radial gradient.
//
// A [Table] is keyed by element code. Codes missing from the table are not
// an error: they render with radius 0 and no gradient.
//
// The built-in table ([Default]) ships as TOML and a user table can be
// loaded from a file with the same shape:
//
//	[[element]]
//	number = 6
//	code = "C"
//	name = "Carbon"
//	colours = ["808080", "404040", "050505"]
//	radius = 40
package elements

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/molview/pkg/errors"
)

//go:embed elements.toml
var defaultTOML []byte

// Element describes how one element is drawn.
type Element struct {
	Number  int       `toml:"number" json:"number" bson:"number"`
	Code    string    `toml:"code" json:"code" bson:"code"`
	Name    string    `toml:"name" json:"name" bson:"name"`
	Colours [3]string `toml:"colours" json:"colours" bson:"colours"`
	Radius  float64   `toml:"radius" json:"radius" bson:"radius"`
}

// Validate checks the code, name, colours and radius.
func (e Element) Validate() error {
	if err := errors.ValidateElementCode(e.Code); err != nil {
		return err
	}
	if e.Name == "" {
		return errors.New(errors.ErrCodeInvalidElement, "element %s: name is required", e.Code)
	}
	for _, c := range e.Colours {
		if err := errors.ValidateColour(c); err != nil {
			return err
		}
	}
	if e.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidElement, "element %s: negative radius %v", e.Code, e.Radius)
	}
	return nil
}

// GradientID returns the identifier of the element's gradient definition.
// It is derived from the code, so it is unique within a table and a valid
// XML id.
func (e Element) GradientID() string { return "grad-" + e.Code }

// Gradient is a three-stop radial gradient.
type Gradient struct {
	ID    string
	Stops [3]string
}

// Table maps element codes to their display data.
// It is safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	byKey map[string]Element
}

// NewTable returns a table holding elems.
func NewTable(elems ...Element) *Table {
	t := &Table{byKey: make(map[string]Element, len(elems))}
	for _, e := range elems {
		t.byKey[e.Code] = e
	}
	return t
}

type file struct {
	Element []Element `toml:"element"`
}

// Decode parses a TOML element table.
func Decode(data []byte) (*Table, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode element table")
	}
	for _, e := range f.Element {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	return NewTable(f.Element...), nil
}

// Load reads a TOML element table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read element table: %w", err)
	}
	return Decode(data)
}

// Default returns a fresh copy of the built-in table.
func Default() *Table {
	t, err := Decode(defaultTOML)
	if err != nil {
		panic(fmt.Sprintf("elements: built-in table: %v", err))
	}
	return t
}

// Get returns the element for code.
func (t *Table) Get(code string) (Element, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.byKey[code]
	return e, ok
}

// Put adds or replaces an element.
func (t *Table) Put(e Element) error {
	if err := e.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byKey[e.Code] = e
	return nil
}

// Delete removes code and reports whether it was present.
func (t *Table) Delete(code string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.byKey[code]
	delete(t.byKey, code)
	return ok
}

// Merge copies every element of other into t, replacing existing codes.
func (t *Table) Merge(other *Table) {
	for _, e := range other.All() {
		t.mu.Lock()
		t.byKey[e.Code] = e
		t.mu.Unlock()
	}
}

// Len returns the number of elements.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byKey)
}

// All returns every element ordered by atomic number, then code.
func (t *Table) All() []Element {
	t.mu.RLock()
	out := slices.Collect(maps.Values(t.byKey))
	t.mu.RUnlock()
	slices.SortFunc(out, func(a, b Element) int {
		if a.Number != b.Number {
			return a.Number - b.Number
		}
		if a.Code < b.Code {
			return -1
		}
		if a.Code > b.Code {
			return 1
		}
		return 0
	})
	return out
}

// Radius returns the display radius for code, or 0 when unknown.
func (t *Table) Radius(code string) float64 {
	e, _ := t.Get(code)
	return e.Radius
}

// GradientID returns the gradient identifier for code, or "" when unknown.
func (t *Table) GradientID(code string) string {
	if e, ok := t.Get(code); ok {
		return e.GradientID()
	}
	return ""
}

// Radii returns a code to radius map.
func (t *Table) Radii() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.byKey))
	for code, e := range t.byKey {
		out[code] = e.Radius
	}
	return out
}

// Colours returns a code to gradient map.
func (t *Table) Colours() map[string]Gradient {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Gradient, len(t.byKey))
	for code, e := range t.byKey {
		out[code] = Gradient{ID: e.GradientID(), Stops: e.Colours}
	}
	return out
}

// Gradients returns the gradient of every element in [Table.All] order.
func (t *Table) Gradients() []Gradient {
	all := t.All()
	out := make([]Gradient, len(all))
	for i, e := range all {
		out[i] = Gradient{ID: e.GradientID(), Stops: e.Colours}
	}
	return out
}
