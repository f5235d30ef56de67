// Package affinetransform holds the rigid motions that can be applied to
// geometry by re-expressing rays in the geometry's local frame.
package affinetransform

import (
	"math"

	"row-major/boxtracer/vmath/mat33"
	"row-major/boxtracer/vmath/vec3"
)

// Transform maps vectors between an object's local frame and the world frame.
// The two directions must be exact inverses of each other, and must preserve
// lengths, so that ray parameters mean the same thing in both frames.
//
// Only linear maps are supported, so points and directions transform alike.
type Transform interface {
	ToLocal(v vec3.T) vec3.T
	ToWorld(v vec3.T) vec3.T
}

// RotationY rotates the world about the Y axis.  ToWorld turns by the angle,
// ToLocal turns back.
type RotationY struct {
	Sin, Cos float64
}

func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// NewRotationY computes the sine and cosine of the angle once, up front.
func NewRotationY(degrees float64) RotationY {
	theta := Radians(degrees)
	return RotationY{
		Sin: math.Sin(theta),
		Cos: math.Cos(theta),
	}
}

// ToLocal leaves the Y component untouched.
func (r RotationY) ToLocal(v vec3.T) vec3.T {
	return vec3.T{
		r.Cos*v[0] - r.Sin*v[2],
		v[1],
		r.Sin*v[0] + r.Cos*v[2],
	}
}

// ToWorld leaves the Y component untouched.
func (r RotationY) ToWorld(v vec3.T) vec3.T {
	return vec3.T{
		r.Cos*v[0] + r.Sin*v[2],
		v[1],
		-r.Sin*v[0] + r.Cos*v[2],
	}
}

// Linear returns the matrix of ToWorld.
func (r RotationY) Linear() mat33.T {
	return mat33.T{Elts: [9]float64{
		r.Cos, 0, r.Sin,
		0, 1, 0,
		-r.Sin, 0, r.Cos,
	}}
}
