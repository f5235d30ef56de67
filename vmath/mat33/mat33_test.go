package mat33

import (
	"testing"

	"row-major/boxtracer/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestColumns(t *testing.T) {
	m := FromColumns(vec3.T{1, 2, 3}, vec3.T{4, 5, 6}, vec3.T{7, 8, 9})

	want := T{[9]float64{1, 4, 7, 2, 5, 8, 3, 6, 9}}
	if diff := cmp.Diff(m, want); diff != "" {
		t.Fatalf("Bad matrix; diff (-got +want)\n%s", diff)
	}

	if diff := cmp.Diff(m.Column(1), vec3.T{4, 5, 6}); diff != "" {
		t.Errorf("Bad column; diff (-got +want)\n%s", diff)
	}
}

func TestMulMV(t *testing.T) {
	m := FromColumns(vec3.T{1, 2, 3}, vec3.T{4, 5, 6}, vec3.T{7, 8, 9})
	got := MulMV(m, vec3.T{0, 1, 0})
	if diff := cmp.Diff(got, vec3.T{4, 5, 6}); diff != "" {
		t.Errorf("Bad product; diff (-got +want)\n%s", diff)
	}
}

func TestMulMMIdentityAndTranspose(t *testing.T) {
	m := T{[9]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}}

	if diff := cmp.Diff(MulMM(Identity(), m), m); diff != "" {
		t.Errorf("Identity product changed matrix; diff (-got +want)\n%s", diff)
	}

	if diff := cmp.Diff(Transpose(Transpose(m)), m); diff != "" {
		t.Errorf("Double transpose changed matrix; diff (-got +want)\n%s", diff)
	}

	if diff := cmp.Diff(Transpose(m), T{[9]float64{1, 4, 7, 2, 5, 8, 3, 6, 9}}); diff != "" {
		t.Errorf("Bad transpose; diff (-got +want)\n%s", diff)
	}
}
