package geometry

import (
	"row-major/boxtracer/affinetransform"
	"row-major/boxtracer/contact"
	"row-major/boxtracer/ray"
)

// Transformed places Inner in the world through Xform.  Rather than moving the
// geometry, each query ray is carried into Inner's local frame, and the
// resulting contact is carried back out.
//
// No world-space bounds are computed for the transformed content.
type Transformed struct {
	Inner Intersectable
	Xform affinetransform.Transform
}

// RotateY wraps inner in a rotation of the given number of degrees about the
// Y axis.  Wrappers may be nested.
func RotateY(inner Intersectable, degrees float64) *Transformed {
	return &Transformed{
		Inner: inner,
		Xform: affinetransform.NewRotationY(degrees),
	}
}

func (w *Transformed) Hit(query ray.RaySegment) (contact.Contact, bool) {
	local := ray.RaySegment{
		TheRay: ray.Ray{
			Point: w.Xform.ToLocal(query.TheRay.Point),
			Slope: w.Xform.ToLocal(query.TheRay.Slope),
		},
		TheSegment: query.TheSegment,
	}

	c, ok := w.Inner.Hit(local)
	if !ok {
		return contact.Contact{}, false
	}

	// Xform preserves lengths, so T and the material carry over as-is.  The
	// face orientation has to be redone: take the outward normal back to the
	// world frame and compare it with the world-frame ray.
	outward := w.Xform.ToWorld(c.OutwardNormal())
	c.P = w.Xform.ToWorld(c.P)
	c.SetFaceNormal(query.TheRay, outward)
	return c, true
}
