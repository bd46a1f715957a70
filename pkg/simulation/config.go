package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed boids.schema.json
var embeddedSchema string

const embeddedSchemaURL = "boids.schema.json"

type Config struct {
	// Population and world sizing
	NumBoids         int     `json:"numBoids"`
	BoidDensity      float32 `json:"boidDensity"`
	RoundWorldSizeTo int     `json:"roundWorldSizeTo"`

	// Steering constants
	ViewRange         float32 `json:"viewRange"`      // Bounds margin
	BoundsRate        float32 `json:"boundsRate"`     // Bounds push strength
	CoherenceRate     float32 `json:"coherenceRate"`  // Cohesion strength
	AvoidanceRange    float32 `json:"avoidanceRange"` // Personal space radius
	AvoidanceRate     float32 `json:"avoidanceRate"`  // Separation strength
	MatchVelocityRate float32 `json:"matchVelocityRate"`
	DragMultiplier    float32 `json:"dragMultiplier"`

	// Rule toggles
	EnableBounds     bool `json:"enableBounds"`
	EnableCohesion   bool `json:"enableCohesion"`
	EnableSeparation bool `json:"enableSeparation"`
	EnableAlignment  bool `json:"enableAlignment"`

	CohesionMode     CohesionMode     `json:"cohesionMode"`
	SeparationMetric SeparationMetric `json:"separationMetric"`
	NeighborIndex    NeighborIndex    `json:"neighborIndex"`

	// Execution
	Workers        int    `json:"workers"` // 0 means GOMAXPROCS
	TicksPerSecond int    `json:"ticksPerSecond"`
	Seed           uint64 `json:"seed"` // 0 picks a random seed
}

func DefaultConfig() *Config {
	r := DefaultRules()
	return &Config{
		NumBoids:          10,
		BoidDensity:       4,
		RoundWorldSizeTo:  5,
		ViewRange:         r.ViewRange,
		BoundsRate:        r.BoundsRate,
		CoherenceRate:     r.CoherenceRate,
		AvoidanceRange:    r.AvoidanceRange,
		AvoidanceRate:     r.AvoidanceRate,
		MatchVelocityRate: r.MatchVelocityRate,
		DragMultiplier:    r.DragMultiplier,
		EnableBounds:      r.EnableBounds,
		EnableCohesion:    r.EnableCohesion,
		EnableSeparation:  r.EnableSeparation,
		EnableAlignment:   r.EnableAlignment,
		CohesionMode:      r.CohesionMode,
		SeparationMetric:  r.SeparationMetric,
		NeighborIndex:     IndexAllPairs,
		Workers:           0,
		TicksPerSecond:    60,
		Seed:              0,
	}
}

// Rules extracts the steering rules from the configuration.
func (c *Config) Rules() Rules {
	return Rules{
		ViewRange:         c.ViewRange,
		BoundsRate:        c.BoundsRate,
		CoherenceRate:     c.CoherenceRate,
		AvoidanceRange:    c.AvoidanceRange,
		AvoidanceRate:     c.AvoidanceRate,
		MatchVelocityRate: c.MatchVelocityRate,
		DragMultiplier:    c.DragMultiplier,
		EnableBounds:      c.EnableBounds,
		EnableCohesion:    c.EnableCohesion,
		EnableSeparation:  c.EnableSeparation,
		EnableAlignment:   c.EnableAlignment,
		CohesionMode:      c.CohesionMode,
		SeparationMetric:  c.SeparationMetric,
	}
}

// WorldHalfSize is the half extent of the world cube for this configuration.
func (c *Config) WorldHalfSize() mgl32.Vec3 {
	return WorldHalfSize(uint32(c.NumBoids), c.BoidDensity, uint32(c.RoundWorldSizeTo))
}

// Validate checks the configuration without the JSON schema, so configs built in
// code get the same guarantees as files.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if c.NumBoids < 0 {
		return fmt.Errorf("%w: numBoids must be >= 0, got %d", ErrInvalidConfig, c.NumBoids)
	}
	if !(c.BoidDensity > 0) {
		return fmt.Errorf("%w: boidDensity must be > 0, got %v", ErrInvalidConfig, c.BoidDensity)
	}
	if c.RoundWorldSizeTo < 0 {
		return fmt.Errorf("%w: roundWorldSizeTo must be >= 0, got %d", ErrInvalidConfig, c.RoundWorldSizeTo)
	}
	nonNegative := map[string]float32{
		"viewRange":         c.ViewRange,
		"boundsRate":        c.BoundsRate,
		"coherenceRate":     c.CoherenceRate,
		"avoidanceRange":    c.AvoidanceRange,
		"avoidanceRate":     c.AvoidanceRate,
		"matchVelocityRate": c.MatchVelocityRate,
		"dragMultiplier":    c.DragMultiplier,
	}
	for name, v := range nonNegative {
		if !(v >= 0) {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConfig, name, v)
		}
	}
	switch c.CohesionMode {
	case CohesionAverage, CohesionLiteral:
	default:
		return fmt.Errorf("%w: unknown cohesionMode %q", ErrInvalidConfig, c.CohesionMode)
	}
	switch c.SeparationMetric {
	case SeparationSquared, SeparationLiteral:
	default:
		return fmt.Errorf("%w: unknown separationMetric %q", ErrInvalidConfig, c.SeparationMetric)
	}
	switch c.NeighborIndex {
	case IndexAllPairs, IndexGrid:
	default:
		return fmt.Errorf("%w: unknown neighborIndex %q", ErrInvalidConfig, c.NeighborIndex)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("%w: ticksPerSecond must be > 0, got %d", ErrInvalidConfig, c.TicksPerSecond)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
// An empty schemaFile uses the schema embedded in this package.
// Fields missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile == "" {
		return jsonschema.CompileString(embeddedSchemaURL, embeddedSchema)
	}
	return jsonschema.Compile(schemaFile)
}
