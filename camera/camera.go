package camera

import (
	"math"
	"math/rand"

	"row-major/boxtracer/affinetransform"
	"row-major/boxtracer/ray"
	"row-major/boxtracer/vmath/mat33"
	"row-major/boxtracer/vmath/vec3"
)

type Camera interface {
	ImageToRay(curRow, imgRows, curCol, imgCols int, rng *rand.Rand) ray.Ray
}

// ThinLensCamera models a lens of finite aperture.  Points on the focus plane
// are sharp; everything else is blurred in proportion to the defocus angle.
//
// In camera coordinates the camera looks down -Z with +Y up.  CameraToWorld
// carries those coordinates into the world.
type ThinLensCamera struct {
	Center        vec3.T
	CameraToWorld mat33.T

	// Half-extents of the viewport, measured on the focus plane.
	HalfWidth, HalfHeight float64

	FocusDist     float64
	DefocusRadius float64
}

// NewThinLensCamera points a camera at lookAt from lookFrom.  vfov and
// defocusAngle are in degrees; aspect is width over height.
func NewThinLensCamera(lookFrom, lookAt, vup vec3.T, vfov, aspect, defocusAngle, focusDist float64) *ThinLensCamera {
	w := vec3.Normalize(vec3.SubVV(lookFrom, lookAt))
	u := vec3.Normalize(vec3.CProd(vup, w))
	v := vec3.CProd(w, u)

	halfHeight := math.Tan(affinetransform.Radians(vfov)/2) * focusDist

	return &ThinLensCamera{
		Center:        lookFrom,
		CameraToWorld: mat33.FromColumns(u, v, w),
		HalfWidth:     halfHeight * aspect,
		HalfHeight:    halfHeight,
		FocusDist:     focusDist,
		DefocusRadius: focusDist * math.Tan(affinetransform.Radians(defocusAngle)/2),
	}
}

// ImageToRay returns a ray through a random point of pixel (curRow, curCol).
// Row 0 is the top of the image.
func (c *ThinLensCamera) ImageToRay(curRow, imgRows, curCol, imgCols int, rng *rand.Rand) ray.Ray {
	s := (float64(curCol) + rng.Float64()) / float64(imgCols)
	t := (float64(curRow) + rng.Float64()) / float64(imgRows)
	return c.Through(s, t, rng)
}

// Through returns a ray that passes through the viewport point (s, t), where
// (0, 0) is the top left corner and (1, 1) the bottom right.  The ray reaches
// the focus plane at parameter 1.
func (c *ThinLensCamera) Through(s, t float64, rng *rand.Rand) ray.Ray {
	target := vec3.T{
		(2*s - 1) * c.HalfWidth,
		(1 - 2*t) * c.HalfHeight,
		-c.FocusDist,
	}

	lens := vec3.T{}
	if c.DefocusRadius > 0 {
		lens = vec3.MulVS(vec3.UnitDiskDistribution(rng), c.DefocusRadius)
	}

	origin := vec3.AddVV(c.Center, mat33.MulMV(c.CameraToWorld, lens))
	return ray.Ray{
		Point: origin,
		Slope: mat33.MulMV(c.CameraToWorld, vec3.SubVV(target, lens)),
	}
}
