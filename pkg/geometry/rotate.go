package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Euler holds rotation angles in degrees about the X, Y and Z axes.
// The zero value is the identity rotation.
type Euler struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsZero reports whether e leaves every point unchanged.
func (e Euler) IsZero() bool { return e.X == 0 && e.Y == 0 && e.Z == 0 }

// Inverse returns the rotations that undo e when applied as separate calls
// in reverse axis order: Z, then Y, then X.
func (e Euler) Inverse() []Euler {
	return []Euler{{Z: -e.Z}, {Y: -e.Y}, {X: -e.X}}
}

// Centroid returns the arithmetic mean of pts.
// The second result is false when pts is empty.
func Centroid(pts []r3.Vec) (r3.Vec, bool) {
	if len(pts) == 0 {
		return r3.Vec{}, false
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	zs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	return r3.Vec{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}, true
}

// Rotate rotates pts in place about their centroid by e.
// It is a no-op for an empty slice or a zero rotation.
func Rotate(pts []r3.Vec, e Euler) {
	if e.IsZero() {
		return
	}
	c, ok := Centroid(pts)
	if !ok {
		return
	}
	for i, p := range pts {
		pts[i] = r3.Add(RotateVec(r3.Sub(p, c), e), c)
	}
}

// RotateVec rotates a single vector about the origin by e, axis by axis.
func RotateVec(v r3.Vec, e Euler) r3.Vec {
	if e.X != 0 {
		v = rotateX(v, radians(e.X))
	}
	if e.Y != 0 {
		v = rotateY(v, radians(e.Y))
	}
	if e.Z != 0 {
		v = rotateZ(v, radians(e.Z))
	}
	return v
}

func rotateX(v r3.Vec, a float64) r3.Vec {
	sin, cos := math.Sincos(a)
	return r3.Vec{X: v.X, Y: v.Y*cos - v.Z*sin, Z: v.Y*sin + v.Z*cos}
}

func rotateY(v r3.Vec, a float64) r3.Vec {
	sin, cos := math.Sincos(a)
	return r3.Vec{X: v.X*cos + v.Z*sin, Y: v.Y, Z: -v.X*sin + v.Z*cos}
}

func rotateZ(v r3.Vec, a float64) r3.Vec {
	sin, cos := math.Sincos(a)
	return r3.Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos, Z: v.Z}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
