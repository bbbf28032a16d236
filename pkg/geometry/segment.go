package geometry

import "math"

// Point is a 2-D position in whatever space the caller works in
// (model coordinates or canvas units).
type Point struct {
	X, Y float64
}

// Segment returns the unit direction (dx, dy) from (x1, y1) to (x2, y2) and
// the segment length. Coincident endpoints yield a zero direction and length.
func Segment(x1, y1, x2, y2 float64) (dx, dy, length float64) {
	vx, vy := x2-x1, y2-y1
	length = math.Hypot(vx, vy)
	if length == 0 {
		return 0, 0, 0
	}
	return vx / length, vy / length, length
}

// Perpendicular returns the direction rotated by 90 degrees.
func Perpendicular(dx, dy float64) (px, py float64) {
	return -dy, dx
}

// Quad returns the four corners of a band of half width w around the
// segment (x1, y1)-(x2, y2) with unit direction (dx, dy). Corners are
// ordered so the polygon is traced without self intersection:
//
//	(x1+dy·w, y1−dx·w) (x1−dy·w, y1+dx·w) (x2−dy·w, y2+dx·w) (x2+dy·w, y2−dx·w)
//
// A zero direction collapses the band to the segment itself.
func Quad(x1, y1, x2, y2, dx, dy, w float64) [4]Point {
	return [4]Point{
		{X: x1 + dy*w, Y: y1 - dx*w},
		{X: x1 - dy*w, Y: y1 + dx*w},
		{X: x2 - dy*w, Y: y2 + dx*w},
		{X: x2 + dy*w, Y: y2 - dx*w},
	}
}
