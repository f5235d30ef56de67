package geometry

import (
	"context"
	"math"

	"row-major/boxtracer/aabox"
	"row-major/boxtracer/contact"
	"row-major/boxtracer/ray"
	"row-major/boxtracer/renderstats"
	"row-major/boxtracer/vmath/vec3"

	"github.com/golang/glog"
)

// Intersectable is anything a ray can be tested against: primitives,
// transformed wrappers, and whole scenes.
//
// Hit reports the nearest contact whose T lies within query.TheSegment.
// Implementations must not retain or modify anything reachable from the
// query, and must be safe for concurrent use.
type Intersectable interface {
	Hit(query ray.RaySegment) (contact.Contact, bool)
}

// Sphere is a sphere with an explicit center and radius.
type Sphere struct {
	Center   vec3.T
	Radius   float64
	Material interface{}
}

func (s *Sphere) Hit(query ray.RaySegment) (contact.Contact, bool) {
	r := query.TheRay

	oc := vec3.SubVV(r.Point, s.Center)
	a := r.Slope.NormSquared()
	halfB := vec3.IProd(oc, r.Slope)
	c := oc.NormSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return contact.Contact{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Prefer the near root, falling back to the far one when the near one is
	// outside the segment (the ray starts inside the sphere).
	t := (-halfB - sqrtD) / a
	if !query.TheSegment.Surrounds(t) {
		t = (-halfB + sqrtD) / a
		if !query.TheSegment.Surrounds(t) {
			return contact.Contact{}, false
		}
	}

	p := r.Eval(t)
	result := contact.Contact{
		T:        t,
		P:        p,
		Material: s.Material,
	}
	result.SetFaceNormal(r, vec3.DivVS(vec3.SubVV(p, s.Center), s.Radius))
	return result, true
}

// Box is an axis-aligned box primitive.
type Box struct {
	Bounds   aabox.AABox
	Material interface{}
}

// NewBox creates a box with corners lo and hi.  The corners are used as given:
// lo must not exceed hi on any axis.  Use Validate to check.
func NewBox(lo, hi vec3.T, material interface{}) *Box {
	return &Box{
		Bounds:   aabox.AABox{Lo: lo, Hi: hi},
		Material: material,
	}
}

func (b *Box) Validate() error {
	return b.Bounds.Validate()
}

// Hit intersects the ray with the box using the slab method.  The contact is
// made at the entry parameter; if the ray starts inside the box that is the
// segment's own lower bound.
func (b *Box) Hit(query ray.RaySegment) (contact.Contact, bool) {
	window, ok := aabox.Slab(query.TheRay, b.Bounds, query.TheSegment)
	if !ok {
		return contact.Contact{}, false
	}

	result := contact.Contact{
		T:        window.Lo,
		P:        query.TheRay.Eval(window.Lo),
		Material: b.Material,
	}

	outward, onFace := aabox.FaceNormal(b.Bounds, result.P)
	if !onFace {
		// Rays refracted into a glass box land here on every bounce, so this
		// is counted, and only logged when asked for.  The zero normal is
		// passed on.
		renderstats.RecordDegenerateFace(context.Background())
		if glog.V(2) {
			glog.Infof("Box hit at t=%v point=%v matched no face of %v; query %+v", result.T, result.P, b.Bounds, query)
		}
	}

	result.SetFaceNormal(query.TheRay, outward)
	return result, true
}
