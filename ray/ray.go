package ray

import (
	"math"

	"row-major/boxtracer/vmath/vec3"
)

// Span is a closed interval [Lo, Hi] of ray parameters.
type Span struct {
	Lo, Hi float64
}

// Forward is the span used for rays leaving a surface.  The small positive Lo
// keeps a ray from re-hitting the surface it started on.
func Forward() Span {
	return Span{Lo: 0.001, Hi: math.Inf(1)}
}

func (s Span) IsEmpty() bool {
	return !(s.Lo < s.Hi)
}

func (s Span) Contains(t float64) bool {
	return s.Lo <= t && t <= s.Hi
}

func (s Span) Surrounds(t float64) bool {
	return s.Lo < t && t < s.Hi
}

func (s Span) IsFinite() bool {
	return !math.IsInf(s.Lo, 0) && !math.IsInf(s.Hi, 0)
}

type Ray struct {
	Point vec3.T
	Slope vec3.T
}

func (r Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

// RaySegment is a ray together with the span of parameters a query is
// interested in.
type RaySegment struct {
	TheRay     Ray
	TheSegment Span
}

// Narrowed returns a copy of the segment with Hi lowered to hi.
func (b RaySegment) Narrowed(hi float64) RaySegment {
	b.TheSegment.Hi = hi
	return b
}
