package ray

import (
	"math"
	"testing"

	"row-major/boxtracer/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestEval(t *testing.T) {
	r := Ray{Point: vec3.T{1, 2, 3}, Slope: vec3.T{0, 0, -2}}
	if diff := cmp.Diff(r.Eval(1.5), vec3.T{1, 2, 0}); diff != "" {
		t.Errorf("Bad Eval; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(r.Eval(0), r.Point); diff != "" {
		t.Errorf("Eval(0) isn't the origin; diff (-got +want)\n%s", diff)
	}

	// Rays are values; Eval works on one that was never stored.
	seg := RaySegment{TheRay: r, TheSegment: Forward()}
	if diff := cmp.Diff(seg.Narrowed(3).TheRay.Eval(2), vec3.T{1, 2, -1}); diff != "" {
		t.Errorf("Bad Eval on returned ray; diff (-got +want)\n%s", diff)
	}
}

func TestSpan(t *testing.T) {
	s := Span{Lo: 1, Hi: 2}

	if s.IsEmpty() {
		t.Errorf("Span %v reported empty", s)
	}
	if !(Span{Lo: 2, Hi: 2}).IsEmpty() {
		t.Errorf("Degenerate span reported non-empty")
	}
	if !(Span{Lo: 3, Hi: 2}).IsEmpty() {
		t.Errorf("Inverted span reported non-empty")
	}

	if !s.Contains(1) || !s.Contains(2) || s.Contains(2.5) {
		t.Errorf("Contains should accept the closed interval [1, 2] only")
	}
	if s.Surrounds(1) || s.Surrounds(2) || !s.Surrounds(1.5) {
		t.Errorf("Surrounds should accept the open interval (1, 2) only")
	}

	if Forward().IsFinite() {
		t.Errorf("Forward span should be unbounded above")
	}
	if !Forward().Contains(math.MaxFloat64) || Forward().Contains(0) {
		t.Errorf("Forward span has wrong bounds: %v", Forward())
	}
}

func TestNarrowed(t *testing.T) {
	seg := RaySegment{TheSegment: Span{Lo: 0.001, Hi: math.Inf(1)}}
	n := seg.Narrowed(4)

	if n.TheSegment != (Span{Lo: 0.001, Hi: 4}) {
		t.Errorf("Bad narrowed span; got %v, want %v", n.TheSegment, Span{Lo: 0.001, Hi: 4})
	}
	if !math.IsInf(seg.TheSegment.Hi, 1) {
		t.Errorf("Narrowed modified the receiver")
	}
}
