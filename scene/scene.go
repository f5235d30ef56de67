package scene

import (
	"row-major/boxtracer/camera"
	"row-major/boxtracer/contact"
	"row-major/boxtracer/geometry"
	"row-major/boxtracer/ray"
)

// Scene is a flat collection of intersectables.  Every query visits every
// element; there is no acceleration structure.
//
// A Scene must not be modified once rendering starts.
type Scene struct {
	// Name tags metrics recorded while rendering the scene.
	Name string

	Elements []geometry.Intersectable

	Cameras []camera.Camera
}

// Add registers an element and returns its index.
func (s *Scene) Add(e geometry.Intersectable) int {
	s.Elements = append(s.Elements, e)
	return len(s.Elements) - 1
}

func (s *Scene) AddCamera(c camera.Camera) int {
	s.Cameras = append(s.Cameras, c)
	return len(s.Cameras) - 1
}

// Hit returns the nearest contact among all elements.  After each hit the
// query's upper bound is pulled in to the contact's T, so later elements are
// only asked about strictly nearer surfaces.
func (s *Scene) Hit(query ray.RaySegment) (contact.Contact, bool) {
	minContact := contact.Contact{}
	found := false

	for _, e := range s.Elements {
		c, ok := e.Hit(query)
		if !ok {
			continue
		}
		query = query.Narrowed(c.T)
		minContact = c
		found = true
	}

	return minContact, found
}
