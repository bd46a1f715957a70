package simulation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

func TestIntegrate_ZeroVelocityKeepsPosition(t *testing.T) {
	a := NewAgent("still", mgl32.Vec3{3, -2, 7}, mgl32.Vec3{}, 0, 0.02)
	Integrate(&a, 0.5, 30)
	if want := (mgl32.Vec3{3, -2, 7}); !vecNear(a.Position, want) {
		t.Errorf("Position = %v; want %v", a.Position, want)
	}
}

func TestIntegrate_PropulsionAndDrag(t *testing.T) {
	a := NewAgent("mover", mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 0, 0}, 4, 0.01)
	Integrate(&a, 0.5, 30)

	// v' = (2 + 1*4*0.5) * (1 - 30*0.01*0.5) = 4 * 0.85 = 3.4
	if want := (mgl32.Vec3{2.7, 0, 0}); !vecNear(a.Position, want) {
		t.Errorf("Position = %v; want %v", a.Position, want)
	}
	if want := (mgl32.Vec3{2, 0, 0}); a.Velocity != want {
		t.Errorf("Velocity was written by integration: %v; want %v", a.Velocity, want)
	}
	// Facing position + v' = (6.1, 0, 0)
	if got := a.Heading(); !vecNear(got, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Heading = %v; want +X", got)
	}
}

func TestIntegrate_AccelerationOnlyAlongHeading(t *testing.T) {
	a := NewAgent("diag", mgl32.Vec3{}, mgl32.Vec3{3, 4, 0}, 10, 0)
	Integrate(&a, 1, 30)
	// v' = (3,4,0) + (0.6,0.8,0)*10 = (9,12,0)
	if want := (mgl32.Vec3{9, 12, 0}); !vecNear(a.Position, want) {
		t.Errorf("Position = %v; want %v", a.Position, want)
	}
}

func TestIntegrate_DegenerateOrientationKeepsPrevious(t *testing.T) {
	previous := mgl32.QuatRotate(1.2, mgl32.Vec3{0, 1, 0})

	tests := []struct {
		name string
		pos  mgl32.Vec3
		vel  mgl32.Vec3
	}{
		{"Zero forward", mgl32.Vec3{}, mgl32.Vec3{}},
		{"Forward along up", mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}},
		{"Forward along down", mgl32.Vec3{0, -3, 0}, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAgent("x", tt.pos, tt.vel, 0, 0)
			a.Orientation = previous
			Integrate(&a, 1, 30)
			if a.Orientation != previous {
				t.Errorf("Orientation = %v; want previous %v", a.Orientation, previous)
			}
			if !geometry.IsFiniteScalar(a.Orientation.W) || !geometry.IsFinite(a.Orientation.V) {
				t.Errorf("Orientation is not finite: %v", a.Orientation)
			}
		})
	}
}

func TestIntegrate_ZeroTimeStep(t *testing.T) {
	a := NewAgent("frozen", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{5, 0, 0}, 8, 0.03)
	Integrate(&a, 0, 30)
	if want := (mgl32.Vec3{1, 1, 1}); a.Position != want {
		t.Errorf("Position = %v; want %v", a.Position, want)
	}
}
