package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/molview/pkg/cache"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/sdf"
)

// Parse reads a structure file. An empty name falls back to the title line.
func Parse(src []byte, name string) (*molecule.Molecule, error) {
	return sdf.Parse(bytes.NewReader(src), name)
}

// SourceHash identifies a structure file together with the name it is
// parsed under, since the name ends up in rendered output.
func SourceHash(src []byte, name string) string {
	buf := make([]byte, 0, len(name)+1+len(src))
	buf = append(buf, name...)
	buf = append(buf, 0)
	buf = append(buf, src...)
	return cache.Hash(buf)
}

// MoleculeHash identifies an in-memory molecule by its serialized form.
func MoleculeHash(m *molecule.Molecule) (string, error) {
	data, err := marshalMolecule(m)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

func marshalMolecule(m *molecule.Molecule) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serialize molecule: %w", err)
	}
	return data, nil
}

// unmarshalMolecule restores a cached molecule. Derived bond fields are not
// serialized, so they are recomputed here.
func unmarshalMolecule(data []byte) (*molecule.Molecule, error) {
	var m molecule.Molecule
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("deserialize molecule: %w", err)
	}
	if err := m.UpdateBonds(); err != nil {
		return nil, err
	}
	return &m, nil
}
