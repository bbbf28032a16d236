// Package geometry holds the numeric core used to move and draw molecules:
// rigid rotation of 3-D points about their centroid, and the 2-D segment
// math that turns a bond into a filled quadrilateral.
//
// # Rotation
//
// [Rotate] applies Euler angles given in degrees as three independent
// rotations in the fixed order X, Y, Z. Each rotation works in one
// coordinate plane with the right-handed formulas:
//
//	X: y' = y·cos − z·sin   z' = y·sin + z·cos
//	Y: x' = x·cos + z·sin   z' = −x·sin + z·cos
//	Z: x' = x·cos − y·sin   y' = x·sin + y·cos
//
// Points are translated to the centroid, rotated, and translated back, so
// the centroid itself never moves. An angle of exactly zero skips its axis.
//
// # Segments
//
// [Segment] returns the unit direction and length of a 2-D segment, falling
// back to a zero direction for coincident endpoints. [Quad] expands a
// segment into four corners offset by a half width along the perpendicular.
//
// The package has no knowledge of atoms or bonds; see package molecule for
// the graph that applies these functions.
package geometry
