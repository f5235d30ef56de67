package material

import (
	"math"
	"math/rand"

	"row-major/boxtracer/contact"
	"row-major/boxtracer/ray"
	"row-major/boxtracer/vmath/vec3"
)

// ShadeInfo is the result of shading one contact.
type ShadeInfo struct {
	// Emitted is the radiance the surface gives off on its own.
	Emitted vec3.T

	// Attenuation is the per-channel fraction of the radiance arriving along
	// Scattered that is passed back along the incoming ray.
	Attenuation vec3.T

	Scattered  ray.Ray
	DidScatter bool
}

type Material interface {
	Shade(in ray.Ray, c contact.Contact, rng *rand.Rand) ShadeInfo
}

// Lambertian is an ideal diffuse reflector.
type Lambertian struct {
	Albedo vec3.T
}

func (m *Lambertian) Shade(in ray.Ray, c contact.Contact, rng *rand.Rand) ShadeInfo {
	dir := vec3.AddVV(c.N, vec3.UniformUnitDistribution(rng))
	if dir.NearZero() {
		dir = c.N
	}

	return ShadeInfo{
		Attenuation: m.Albedo,
		Scattered:   ray.Ray{Point: c.P, Slope: dir},
		DidScatter:  true,
	}
}

// Metal reflects specularly, with the reflected direction perturbed within a
// sphere of radius Fuzz.
type Metal struct {
	Albedo vec3.T
	Fuzz   float64
}

func (m *Metal) Shade(in ray.Ray, c contact.Contact, rng *rand.Rand) ShadeInfo {
	dir := vec3.Normalize(vec3.Reflect(in.Slope, c.N))
	if m.Fuzz > 0 {
		dir = vec3.AddVV(dir, vec3.MulVS(vec3.UniformUnitDistribution(rng), m.Fuzz))
	}

	return ShadeInfo{
		Attenuation: m.Albedo,
		Scattered:   ray.Ray{Point: c.P, Slope: dir},
		// Fuzz can push the ray below the surface; it is absorbed.
		DidScatter: vec3.IProd(dir, c.N) > 0,
	}
}

// Dielectric is a clear refractive material such as glass.  Index is its
// refractive index relative to the surrounding medium.
type Dielectric struct {
	Index float64
}

func (m *Dielectric) Shade(in ray.Ray, c contact.Contact, rng *rand.Rand) ShadeInfo {
	etaRatio := m.Index
	if c.FrontFace {
		etaRatio = 1.0 / m.Index
	}

	unit := vec3.Normalize(in.Slope)
	cosTheta := math.Min(vec3.IProd(vec3.Neg(unit), c.N), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	var dir vec3.T
	if etaRatio*sinTheta > 1.0 || Reflectance(cosTheta, etaRatio) > rng.Float64() {
		dir = vec3.Reflect(unit, c.N)
	} else {
		dir = vec3.Refract(unit, c.N, etaRatio)
	}

	return ShadeInfo{
		Attenuation: vec3.T{1, 1, 1},
		Scattered:   ray.Ray{Point: c.P, Slope: dir},
		DidScatter:  true,
	}
}

// Reflectance is Schlick's approximation of the fraction of light reflected
// at a dielectric boundary.
func Reflectance(cosine, etaRatio float64) float64 {
	r0 := (1 - etaRatio) / (1 + etaRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// Emitter is a light source.  It does not scatter.
type Emitter struct {
	Radiance vec3.T
}

func (m *Emitter) Shade(in ray.Ray, c contact.Contact, rng *rand.Rand) ShadeInfo {
	return ShadeInfo{
		Emitted: m.Radiance,
	}
}
