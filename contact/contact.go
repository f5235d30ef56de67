package contact

import (
	"row-major/boxtracer/ray"
	"row-major/boxtracer/vmath/vec3"
)

// Contact describes where a ray struck a surface.
type Contact struct {
	T float64
	P vec3.T

	// N is the unit surface normal, oriented to oppose the incoming ray.
	N vec3.T

	// FrontFace is true when N is the outward normal, i.e. the ray arrived
	// from outside the surface.
	FrontFace bool

	// Material is the shading handle of the struck surface.  Geometry never
	// looks inside it; several surfaces may share one.
	Material interface{}
}

// SetFaceNormal orients N against r given the surface's outward normal.
func (c *Contact) SetFaceNormal(r ray.Ray, outward vec3.T) {
	c.FrontFace = vec3.IProd(r.Slope, outward) < 0
	if c.FrontFace {
		c.N = outward
	} else {
		c.N = vec3.Neg(outward)
	}
}

// OutwardNormal undoes the orientation applied by SetFaceNormal.
func (c *Contact) OutwardNormal() vec3.T {
	if c.FrontFace {
		return c.N
	}
	return vec3.Neg(c.N)
}
