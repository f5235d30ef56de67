package vec3

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestArithmetic(t *testing.T) {
	a := T{1, 2, 3}
	b := T{4, 5, 6}

	testCases := []struct {
		desc string
		got  T
		want T
	}{
		{"AddVV", AddVV(a, b), T{5, 7, 9}},
		{"SubVV", SubVV(b, a), T{3, 3, 3}},
		{"MulVV", MulVV(a, b), T{4, 10, 18}},
		{"MulVS", MulVS(a, 2), T{2, 4, 6}},
		{"DivVS", DivVS(b, 2), T{2, 2.5, 3}},
		{"Neg", Neg(a), T{-1, -2, -3}},
		{"CProd", CProd(T{1, 0, 0}, T{0, 1, 0}), T{0, 0, 1}},
		{"Lerp", Lerp(0.5, T{0, 0, 0}, T{2, 4, 6}), T{1, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if diff := cmp.Diff(tc.got, tc.want); diff != "" {
				t.Errorf("Bad result; diff (-got +want)\n%s", diff)
			}
		})
	}

	if got := IProd(a, b); got != 32 {
		t.Errorf("Bad inner product; got %v, want %v", got, 32)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(T{3, 0, 4})
	want := T{0.6, 0, 0.8}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad normalization; diff (-got +want)\n%s", diff)
	}
	if n := got.Norm(); math.Abs(n-1) > 1e-12 {
		t.Errorf("Normalized vector has norm %v, want 1", n)
	}
}

func TestReflect(t *testing.T) {
	got := Reflect(T{1, -1, 0}, T{0, 1, 0})
	if diff := cmp.Diff(got, T{1, 1, 0}); diff != "" {
		t.Errorf("Bad reflection; diff (-got +want)\n%s", diff)
	}
}

func TestRefractStraightThrough(t *testing.T) {
	// A ray along the normal is not bent, whatever the ratio.
	got := Refract(T{0, -1, 0}, T{0, 1, 0}, 1.0/1.5)
	if diff := cmp.Diff(got, T{0, -1, 0}, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad refraction; diff (-got +want)\n%s", diff)
	}
}

func TestDistributions(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	normal := T{0, 0, 1}
	for i := 0; i < 1000; i++ {
		u := UniformUnitDistribution(rng)
		if math.Abs(u.Norm()-1) > 1e-9 {
			t.Fatalf("UniformUnitDistribution gave non-unit vector %v", u)
		}

		h := HemisphereUnitVec3Distribution(normal, rng)
		if IProd(h, normal) < 0 {
			t.Fatalf("HemisphereUnitVec3Distribution gave %v, outside hemisphere of %v", h, normal)
		}

		d := UnitDiskDistribution(rng)
		if d[2] != 0 || d.NormSquared() >= 1 {
			t.Fatalf("UnitDiskDistribution gave %v, outside the unit disk", d)
		}
	}
}

func TestNearZero(t *testing.T) {
	if !(T{1e-9, -1e-9, 0}).NearZero() {
		t.Errorf("Expected tiny vector to be near zero")
	}
	if (T{0, 0, 1e-3}).NearZero() {
		t.Errorf("Expected vector with 1e-3 component not to be near zero")
	}
}
