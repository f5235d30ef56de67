// Package integrator estimates the radiance arriving along a ray by path
// tracing through a scene.
package integrator

import (
	"math/rand"

	"row-major/boxtracer/geometry"
	"row-major/boxtracer/material"
	"row-major/boxtracer/ray"
	"row-major/boxtracer/vmath/vec3"

	"github.com/golang/glog"
)

// Counters tallies the scene queries made while sampling.
type Counters struct {
	Rays int64
	Hits int64
}

type PathTracer struct {
	World geometry.Intersectable

	// MaxDepth bounds the number of scene queries per sample.  A path still
	// bouncing when it runs out contributes nothing more.
	MaxDepth int

	// Sky gives the radiance of rays that escape the scene.  Defaults to
	// SkyGradient.
	Sky func(r ray.Ray) vec3.T
}

// SkyGradient blends from white at the horizon to light blue overhead.
func SkyGradient(r ray.Ray) vec3.T {
	unit := vec3.Normalize(r.Slope)
	a := 0.5 * (unit[1] + 1.0)
	return vec3.Lerp(a, vec3.T{1, 1, 1}, vec3.T{0.5, 0.7, 1.0})
}

// SampleRay returns one radiance sample along initialQuery.  counters may be
// nil.
func (p *PathTracer) SampleRay(initialQuery ray.Ray, rng *rand.Rand, counters *Counters) vec3.T {
	if counters == nil {
		counters = &Counters{}
	}

	sky := p.Sky
	if sky == nil {
		sky = SkyGradient
	}

	accum := vec3.T{}
	curK := vec3.T{1, 1, 1}
	curRay := initialQuery

	for i := 0; i < p.MaxDepth; i++ {
		counters.Rays++
		c, ok := p.World.Hit(ray.RaySegment{TheRay: curRay, TheSegment: ray.Forward()})
		if !ok {
			return vec3.AddVV(accum, vec3.MulVV(curK, sky(curRay)))
		}
		counters.Hits++

		m, ok := c.Material.(material.Material)
		if !ok {
			if glog.V(1) {
				glog.Infof("Surface at %v has non-shading material %T; treating as black", c.P, c.Material)
			}
			return accum
		}

		shading := m.Shade(curRay, c, rng)
		accum = vec3.AddVV(accum, vec3.MulVV(curK, shading.Emitted))
		if !shading.DidScatter {
			return accum
		}

		curK = vec3.MulVV(curK, shading.Attenuation)
		curRay = shading.Scattered
	}

	return accum
}
