// Package molecule provides the in-memory atom/bond graph that every other
// molview package works on.
//
// # Overview
//
// A [Molecule] is an ordered list of [Atom] values and an ordered list of
// [Bond] values. Order matters: atom indices are the identity of an atom,
// bond endpoints refer to those indices, and insertion order breaks depth
// ties when rendering and fixes row order when persisting.
//
// Bonds carry derived fields (projected endpoints, unit direction, length
// and depth) that are recomputed whenever atoms move. They are a rendering
// cache and are never persisted.
//
// # Building a Molecule
//
//	m := molecule.New("water")
//	o := m.AppendAtom("O", 0, 0, 0)
//	h1 := m.AppendAtom("H", 0.96, 0, 0)
//	h2 := m.AppendAtom("H", -0.24, 0.93, 0)
//	m.AppendBond(o, h1, 1)
//	m.AppendBond(o, h2, 1)
//
// # Rotation
//
// [Molecule.Rotate] rotates every atom about the centroid and refreshes the
// bond fields. Rotation mutates the molecule in place; use [Molecule.Clone]
// when a stored molecule must stay untouched.
//
// # Concurrency
//
// A Molecule is not safe for concurrent use. Each request should work on its
// own instance.
package molecule
