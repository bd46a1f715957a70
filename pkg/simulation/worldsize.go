package simulation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldHalfSize returns the half extent of the cube holding agentCount boids at the
// given density, rounded up to a multiple of roundTo on every axis.
// roundTo == 0 disables rounding. A zero population or a non-positive density gives
// a zero sized world.
func WorldHalfSize(agentCount uint32, density float32, roundTo uint32) mgl32.Vec3 {
	if agentCount == 0 || !(density > 0) {
		return mgl32.Vec3{}
	}
	size := math.Ceil(math.Cbrt(float64(agentCount)) * float64(density))
	if roundTo > 0 {
		r := float64(roundTo)
		size = math.Ceil(size/r) * r
	}
	h := float32(size)
	return mgl32.Vec3{h, h, h}
}
