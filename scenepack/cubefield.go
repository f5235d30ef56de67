package scenepack

import (
	"math/rand"

	"row-major/boxtracer/camera"
	"row-major/boxtracer/geometry"
	"row-major/boxtracer/material"
	"row-major/boxtracer/scene"
	"row-major/boxtracer/vmath/vec3"
)

// CubeField builds the demo scene: a ground plane (a very large sphere), a
// 10x10 grid of small randomly-placed cubes, and three large cubes, all turned
// 45 degrees about Y.
func CubeField(rng *rand.Rand) *scene.Scene {
	s := &scene.Scene{Name: "cube-field"}

	s.Add(&geometry.Sphere{
		Center:   vec3.T{0, -1000, 0},
		Radius:   1000,
		Material: &material.Lambertian{Albedo: vec3.T{0.3, 0.3, 0.3}},
	})

	keepClear := vec3.T{4, 0.2, 0}
	half := vec3.T{0.2, 0.2, 0.2}

	for a := -5; a < 5; a++ {
		for b := -5; b < 5; b++ {
			chooseMat := rng.Float64()
			center := vec3.T{float64(a) + 0.9*rng.Float64(), 0.2, float64(b) + 0.9*rng.Float64()}

			if vec3.SubVV(center, keepClear).Norm() <= 0.9 {
				continue
			}

			var m material.Material
			switch {
			case chooseMat < 0.8:
				m = &material.Lambertian{Albedo: vec3.MulVV(vec3.Random(0, 1, rng), vec3.Random(0, 1, rng))}
			case chooseMat < 0.95:
				m = &material.Metal{Albedo: vec3.Random(0.5, 1, rng), Fuzz: 0.5 * rng.Float64()}
			default:
				m = &material.Dielectric{Index: 1.5}
			}

			cube := geometry.NewBox(vec3.SubVV(center, half), vec3.AddVV(center, half), m)
			s.Add(geometry.RotateY(cube, 45))
		}
	}

	const offsetX = 3.0

	bigCubes := []struct {
		lo, hi vec3.T
		m      material.Material
	}{
		{vec3.T{4 - offsetX, 0, 1}, vec3.T{6 - offsetX, 2, 3}, &material.Metal{Albedo: vec3.T{0.7, 0.6, 0.5}}},
		{vec3.T{1 - offsetX, 0, -1}, vec3.T{3 - offsetX, 2, 1}, &material.Dielectric{Index: 1.5}},
		{vec3.T{-4 - offsetX, 0, -4}, vec3.T{-2 - offsetX, 2, -2}, &material.Lambertian{Albedo: vec3.T{0.4, 0.2, 0.1}}},
	}
	for _, c := range bigCubes {
		s.Add(geometry.RotateY(geometry.NewBox(c.lo, c.hi, c.m), 45))
	}

	s.AddCamera(camera.NewThinLensCamera(
		vec3.T{13, 2, 3},
		vec3.T{0, 0, 0},
		vec3.T{0, 1, 0},
		20,
		16.0/9.0,
		0.6,
		10,
	))

	return s
}
