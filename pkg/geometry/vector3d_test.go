package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const tolerance = 1e-4

// vecEquals compares vectors component by component with an absolute float32 tolerance.
func vecEquals(a, b mgl32.Vec3) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tolerance {
			return false
		}
	}
	return true
}

func quatEquals(a, b mgl32.Quat) bool {
	return math.Abs(float64(a.W-b.W)) <= tolerance && vecEquals(a.V, b.V)
}

func quatIsFinite(q mgl32.Quat) bool {
	return IsFiniteScalar(q.W) && IsFinite(q.V)
}

func TestVecEquals_AbsoluteNearZero(t *testing.T) {
	// float32 noise around an exact zero component must still compare equal.
	if !vecEquals(mgl32.Vec3{1.0000001, 0, -1.1920929e-07}, mgl32.Vec3{1, 0, 0}) {
		t.Error("vecEquals rejected float32 rounding noise around zero")
	}
	if vecEquals(mgl32.Vec3{1, 0, 0.001}, mgl32.Vec3{1, 0, 0}) {
		t.Error("vecEquals accepted a difference above tolerance")
	}
	if !quatEquals(mgl32.Quat{W: 1, V: mgl32.Vec3{2e-8, 0, -3e-8}}, mgl32.QuatIdent()) {
		t.Error("quatEquals rejected float32 rounding noise around zero")
	}
}

func TestFormatVec3(t *testing.T) {
	v := mgl32.Vec3{1.234, 5.678, -9}
	want := "(1.23, 5.68, -9.00)"
	if got := FormatVec3(v); got != want {
		t.Errorf("FormatVec3() = %q; want %q", got, want)
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"Positive", 3.5, 1},
		{"Negative", -0.1, -1},
		{"Zero counts as positive", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sign(tt.in); got != tt.want {
				t.Errorf("Sign(%v) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	if !IsFinite(mgl32.Vec3{1, 2, 3}) {
		t.Error("finite vector reported as non-finite")
	}
	if IsFinite(mgl32.Vec3{1, nan, 3}) {
		t.Error("NaN component not detected")
	}
	if IsFinite(mgl32.Vec3{inf, 0, 0}) {
		t.Error("Inf component not detected")
	}
}

func TestNormalizeSafe(t *testing.T) {
	tests := []struct {
		name string
		in   mgl32.Vec3
		want mgl32.Vec3
	}{
		{"Zero vector", mgl32.Vec3{}, mgl32.Vec3{}},
		{"Axis", mgl32.Vec3{0, 0, 7}, mgl32.Vec3{0, 0, 1}},
		{"3-4-0", mgl32.Vec3{3, 4, 0}, mgl32.Vec3{0.6, 0.8, 0}},
		{"Tiny but normal", mgl32.Vec3{1e-10, 0, 0}, mgl32.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSafe(tt.in)
			if !vecEquals(got, tt.want) {
				t.Errorf("NormalizeSafe(%v) = %v; want %v", tt.in, got, tt.want)
			}
			if !IsFinite(got) {
				t.Errorf("NormalizeSafe(%v) produced non-finite %v", tt.in, got)
			}
		})
	}
}

func TestLookRotationSafe(t *testing.T) {
	fallback := mgl32.QuatRotate(0.3, mgl32.Vec3{1, 0, 0})

	t.Run("Forward along +Z is identity", func(t *testing.T) {
		got := LookRotationSafe(mgl32.Vec3{0, 0, 5}, WorldUp, fallback)
		if !quatEquals(got, mgl32.QuatIdent()) {
			t.Errorf("LookRotationSafe(+Z) = %v; want identity", got)
		}
	})

	t.Run("Rotates +Z onto forward", func(t *testing.T) {
		forwards := []mgl32.Vec3{
			{1, 0, 0},
			{-1, 0, 0},
			{0, 0, -1},
			{1, 2, 3},
			{-4, -1, 0.5},
		}
		for _, f := range forwards {
			q := LookRotationSafe(f, WorldUp, fallback)
			if !quatIsFinite(q) {
				t.Fatalf("LookRotationSafe(%v) produced non-finite %v", f, q)
			}
			if got, want := Forward(q), f.Normalize(); !vecEquals(got, want) {
				t.Errorf("Forward(LookRotationSafe(%v)) = %v; want %v", f, got, want)
			}
			// Up stays in the half space of the world up.
			if up := q.Rotate(mgl32.Vec3{0, 1, 0}); up.Dot(WorldUp) < 0 {
				t.Errorf("rotated up %v points away from world up", up)
			}
		}
	})

	degenerate := []struct {
		name    string
		forward mgl32.Vec3
	}{
		{"Zero forward", mgl32.Vec3{}},
		{"Parallel to up", mgl32.Vec3{0, 3, 0}},
		{"Anti-parallel to up", mgl32.Vec3{0, -2, 0}},
		{"NaN forward", mgl32.Vec3{float32(math.NaN()), 0, 1}},
	}
	for _, tt := range degenerate {
		t.Run(tt.name, func(t *testing.T) {
			got := LookRotationSafe(tt.forward, WorldUp, fallback)
			if got != fallback {
				t.Errorf("LookRotationSafe(%v) = %v; want fallback %v", tt.forward, got, fallback)
			}
		})
	}

	t.Run("Zero up", func(t *testing.T) {
		got := LookRotationSafe(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, fallback)
		if got != fallback {
			t.Errorf("LookRotationSafe with zero up = %v; want fallback", got)
		}
	})
}

func BenchmarkLookRotationSafe(b *testing.B) {
	f := mgl32.Vec3{1, 2, 3}
	for i := 0; i < b.N; i++ {
		LookRotationSafe(f, WorldUp, mgl32.QuatIdent())
	}
}
