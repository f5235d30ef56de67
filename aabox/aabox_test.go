package aabox

import (
	"math"
	"math/rand"
	"testing"

	"row-major/boxtracer/ray"
	"row-major/boxtracer/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

var unitBox = AABox{Lo: vec3.T{-1, -1, -1}, Hi: vec3.T{1, 1, 1}}

func TestSlabHeadOn(t *testing.T) {
	r := ray.Ray{Point: vec3.T{0, 0, -5}, Slope: vec3.T{0, 0, 1}}

	got, ok := Slab(r, unitBox, ray.Span{Lo: 0.001, Hi: math.Inf(1)})
	if !ok {
		t.Fatalf("Slab reported a miss for a head-on ray")
	}
	if diff := cmp.Diff(got, ray.Span{Lo: 4, Hi: 6}); diff != "" {
		t.Errorf("Bad window; diff (-got +want)\n%s", diff)
	}
}

func TestSlabNegativeSlope(t *testing.T) {
	r := ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -2}}

	got, ok := Slab(r, unitBox, ray.Span{Lo: 0.001, Hi: math.Inf(1)})
	if !ok {
		t.Fatalf("Slab reported a miss for a head-on ray with negative slope")
	}
	if diff := cmp.Diff(got, ray.Span{Lo: 2, Hi: 3}); diff != "" {
		t.Errorf("Bad window; diff (-got +want)\n%s", diff)
	}
}

func TestSlabRespectsWindow(t *testing.T) {
	r := ray.Ray{Point: vec3.T{0, 0, -5}, Slope: vec3.T{0, 0, 1}}

	if _, ok := Slab(r, unitBox, ray.Span{Lo: 0.001, Hi: 3.5}); ok {
		t.Errorf("Slab reported a hit beyond the window's upper bound")
	}
	if _, ok := Slab(r, unitBox, ray.Span{Lo: 6.5, Hi: math.Inf(1)}); ok {
		t.Errorf("Slab reported a hit before the window's lower bound")
	}

	// Starting inside the box, the window's own lower bound is kept.
	got, ok := Slab(r, unitBox, ray.Span{Lo: 5, Hi: math.Inf(1)})
	if !ok {
		t.Fatalf("Slab reported a miss for a window that starts inside the box")
	}
	if diff := cmp.Diff(got, ray.Span{Lo: 5, Hi: 6}); diff != "" {
		t.Errorf("Bad window; diff (-got +want)\n%s", diff)
	}
}

func TestSlabGrazing(t *testing.T) {
	testCases := []struct {
		desc   string
		point  vec3.T
		slope  vec3.T
		wantOK bool
		want   ray.Span
	}{
		{
			desc:   "on x-lo plane",
			point:  vec3.T{-1, 0, -5},
			slope:  vec3.T{0, 0, 1},
			wantOK: true,
			want:   ray.Span{Lo: 4, Hi: 6},
		},
		{
			desc:   "on x-hi plane",
			point:  vec3.T{1, 0, -5},
			slope:  vec3.T{0, 0, 1},
			wantOK: true,
			want:   ray.Span{Lo: 4, Hi: 6},
		},
		{
			desc:   "outside x slab, zero x slope",
			point:  vec3.T{-1.5, 0, -5},
			slope:  vec3.T{0, 0, 1},
			wantOK: false,
		},
		{
			desc:   "outside x slab, negative zero x slope",
			point:  vec3.T{-1.5, 0, -5},
			slope:  vec3.T{math.Copysign(0, -1), 0, 1},
			wantOK: false,
		},
		{
			desc:   "on y-hi plane, zero x and y slope",
			point:  vec3.T{0, 1, 5},
			slope:  vec3.T{0, 0, -1},
			wantOK: true,
			want:   ray.Span{Lo: 4, Hi: 6},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, ok := Slab(ray.Ray{Point: tc.point, Slope: tc.slope}, unitBox, ray.Span{Lo: 0.001, Hi: math.Inf(1)})
			if ok != tc.wantOK {
				t.Fatalf("Bad hit status; got %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Bad window; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestSlabAwayPointingRaysMiss(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		lo := vec3.Random(-5, 0, rng)
		hi := vec3.AddVV(lo, vec3.Random(0.1, 3, rng))
		b := AABox{Lo: lo, Hi: hi}

		// Put the origin outside the box on every axis, and point away.
		var point, slope vec3.T
		for a := 0; a < 3; a++ {
			d := 0.01 + 10*rng.Float64()
			s := 0.01 + rng.Float64()
			if rng.Intn(2) == 0 {
				point[a] = lo[a] - d
				slope[a] = -s
			} else {
				point[a] = hi[a] + d
				slope[a] = s
			}
		}

		r := ray.Ray{Point: point, Slope: slope}
		if w, ok := Slab(r, b, ray.Span{Lo: 0.001, Hi: math.Inf(1)}); ok {
			t.Fatalf("Away-pointing ray %+v hit box %+v with window %v", r, b, w)
		}
	}
}

func TestFaceNormal(t *testing.T) {
	testCases := []struct {
		desc   string
		p      vec3.T
		want   vec3.T
		wantOK bool
	}{
		{"x-lo", vec3.T{-1, 0.2, 0.3}, vec3.T{-1, 0, 0}, true},
		{"x-hi", vec3.T{1, 0.2, 0.3}, vec3.T{1, 0, 0}, true},
		{"y-lo", vec3.T{0.2, -1, 0.3}, vec3.T{0, -1, 0}, true},
		{"y-hi", vec3.T{0.2, 1, 0.3}, vec3.T{0, 1, 0}, true},
		{"z-lo", vec3.T{0.2, 0.3, -1}, vec3.T{0, 0, -1}, true},
		{"z-hi", vec3.T{0.2, 0.3, 1}, vec3.T{0, 0, 1}, true},
		{"within bias", vec3.T{0.2, 0.3, 1 + 5e-5}, vec3.T{0, 0, 1}, true},
		{"edge prefers x", vec3.T{1, 1, 0}, vec3.T{1, 0, 0}, true},
		{"corner prefers x-lo", vec3.T{-1, -1, -1}, vec3.T{-1, 0, 0}, true},
		{"edge y-hi z-lo prefers y", vec3.T{0, 1, -1}, vec3.T{0, 1, 0}, true},
		{"interior", vec3.T{0, 0, 0}, vec3.T{}, false},
		{"just outside bias", vec3.T{0, 0, 1 + 2e-4}, vec3.T{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, ok := FaceNormal(unitBox, tc.p)
			if ok != tc.wantOK {
				t.Errorf("Bad ok; got %v, want %v", ok, tc.wantOK)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Bad normal; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := unitBox.Validate(); err != nil {
		t.Errorf("Unexpected error for well-formed box: %v", err)
	}

	flat := AABox{Lo: vec3.T{0, 0, 0}, Hi: vec3.T{1, 0, 1}}
	if err := flat.Validate(); err != nil {
		t.Errorf("Unexpected error for flat box: %v", err)
	}

	inverted := AABox{Lo: vec3.T{0, 2, 0}, Hi: vec3.T{1, 1, 1}}
	if err := inverted.Validate(); err == nil {
		t.Errorf("Expected error for box inverted on y")
	}
}

func TestContainsAndCenter(t *testing.T) {
	if !unitBox.Contains(vec3.T{0, 0, 0}) || !unitBox.Contains(vec3.T{1, -1, 1}) {
		t.Errorf("Box should contain its center and corners")
	}
	if unitBox.Contains(vec3.T{0, 0, 1.01}) {
		t.Errorf("Box shouldn't contain an outside point")
	}
	if diff := cmp.Diff(unitBox.Center(), vec3.T{0, 0, 0}); diff != "" {
		t.Errorf("Bad center; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(unitBox.Span(2), ray.Span{Lo: -1, Hi: 1}); diff != "" {
		t.Errorf("Bad span; diff (-got +want)\n%s", diff)
	}
}
