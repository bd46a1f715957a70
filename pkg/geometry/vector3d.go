package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used for float32 comparisons and degeneracy checks.
const (
	Epsilon = 1e-6
)

// minNormalFloat32 is the smallest positive normal float32.
// Squared lengths at or below it are treated as the zero vector.
const minNormalFloat32 = 0x1p-126

// WorldUp is the fixed global up vector used for orientations.
var WorldUp = mgl32.Vec3{0, 1, 0}

// ---------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------

// FormatVec3 renders v like "(1.00, 2.00, 3.00)".
// mgl32.Vec3 is a foreign type so we cannot hang a String method on it.
func FormatVec3(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}

// ---------------------------------------------------------------------
// Scalar helpers
// ---------------------------------------------------------------------

// Sign returns 1 for x >= 0 and -1 otherwise. Zero is positive.
func Sign(x float32) float32 {
	if x >= 0 {
		return 1
	}
	return -1
}

// IsFiniteScalar reports whether x is neither NaN nor infinite.
func IsFiniteScalar(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsFinite reports whether every component of v is finite.
func IsFinite(v mgl32.Vec3) bool {
	return IsFiniteScalar(v[0]) && IsFiniteScalar(v[1]) && IsFiniteScalar(v[2])
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// NormalizeSafe returns a unit vector in the same direction as v,
// or the zero vector when v is zero (never NaN).
func NormalizeSafe(v mgl32.Vec3) mgl32.Vec3 {
	lenSq := v.Dot(v)
	if lenSq <= minNormalFloat32 || !IsFiniteScalar(lenSq) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / float32(math.Sqrt(float64(lenSq))))
}

// ---------------------------------------------------------------------
// Orientation
// ---------------------------------------------------------------------

// LookRotationSafe returns the rotation that maps +Z onto forward while keeping
// +Y as close as possible to up.
//
// When forward is zero, non-finite or parallel (or anti-parallel) to up the
// rotation is undefined and fallback is returned unchanged.
func LookRotationSafe(forward, up mgl32.Vec3, fallback mgl32.Quat) mgl32.Quat {
	z := NormalizeSafe(forward)
	u := NormalizeSafe(up)
	if z.Len() < Epsilon || u.Len() < Epsilon {
		return fallback
	}

	x := u.Cross(z)
	xLen := x.Len()
	if xLen < Epsilon {
		return fallback
	}
	x = x.Mul(1 / xLen)
	y := z.Cross(x)

	q := mgl32.Mat4ToQuat(mgl32.Mat3FromCols(x, y, z).Mat4()).Normalize()
	if !IsFiniteScalar(q.W) || !IsFinite(q.V) {
		return fallback
	}
	return q
}

// Forward returns the direction +Z is rotated onto by q.
func Forward(q mgl32.Quat) mgl32.Vec3 {
	return q.Rotate(mgl32.Vec3{0, 0, 1})
}
