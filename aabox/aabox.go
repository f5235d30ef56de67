package aabox

import (
	"fmt"
	"math"

	"row-major/boxtracer/ray"
	"row-major/boxtracer/vmath/vec3"
)

// FaceBias is how far a point may sit from a face plane and still be
// considered on that face.
const FaceBias = 1e-4

// AABox is an axis-aligned box spanning the corners Lo and Hi.  Lo <= Hi on
// every axis is assumed, not enforced.
type AABox struct {
	Lo, Hi vec3.T
}

func (b AABox) Span(axis int) ray.Span {
	return ray.Span{Lo: b.Lo[axis], Hi: b.Hi[axis]}
}

// Validate reports the first axis on which Lo exceeds Hi.
func (b AABox) Validate() error {
	for a := 0; a < 3; a++ {
		if b.Lo[a] > b.Hi[a] {
			return fmt.Errorf("inverted box on axis %d: lo %v > hi %v", a, b.Lo[a], b.Hi[a])
		}
	}
	return nil
}

func (b AABox) Contains(p vec3.T) bool {
	for a := 0; a < 3; a++ {
		if p[a] < b.Lo[a] || b.Hi[a] < p[a] {
			return false
		}
	}
	return true
}

func (b AABox) Center() vec3.T {
	return vec3.MulVS(vec3.AddVV(b.Lo, b.Hi), 0.5)
}

// Slab clips window against the three slabs of b and returns what is left.
// ok is false as soon as the window closes.
//
// A zero slope component gives an infinite reciprocal, which the comparisons
// below treat like any other bound.  When the ray origin lies exactly on a
// slab plane the product is NaN, and since every comparison with NaN is false
// the running window is left alone on that side.
func Slab(r ray.Ray, b AABox, window ray.Span) (ray.Span, bool) {
	for a := 0; a < 3; a++ {
		invD := 1.0 / r.Slope[a]
		t0 := (b.Lo[a] - r.Point[a]) * invD
		t1 := (b.Hi[a] - r.Point[a]) * invD
		if invD < 0.0 {
			t0, t1 = t1, t0
		}

		if t0 > window.Lo {
			window.Lo = t0
		}
		if t1 < window.Hi {
			window.Hi = t1
		}

		if window.Hi <= window.Lo {
			return window, false
		}
	}
	return window, true
}

var faceNormals = [6]vec3.T{
	{-1, 0, 0},
	{1, 0, 0},
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
}

// FaceNormal returns the outward normal of the face p lies on.  Faces are
// checked in the order x-lo, x-hi, y-lo, y-hi, z-lo, z-hi, so points on edges
// and corners resolve to the first face in that order.  If p is on no face,
// the zero vector and false are returned.
func FaceNormal(b AABox, p vec3.T) (vec3.T, bool) {
	for a := 0; a < 3; a++ {
		if math.Abs(p[a]-b.Lo[a]) < FaceBias {
			return faceNormals[2*a], true
		}
		if math.Abs(p[a]-b.Hi[a]) < FaceBias {
			return faceNormals[2*a+1], true
		}
	}
	return vec3.T{}, false
}
