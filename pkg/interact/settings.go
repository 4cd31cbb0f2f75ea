package interact

import (
	"math"

	"github.com/chazu/aquascape/pkg/placement"
)

// Settings are the tunable constants of the controller.
type Settings struct {
	TranslateSensitivity float64 `yaml:"translate_sensitivity"`
	RotateSensitivity    float64 `yaml:"rotate_sensitivity"`
	ScaleSensitivity     float64 `yaml:"scale_sensitivity"`
	ElevateSensitivity   float64 `yaml:"elevate_sensitivity"`

	MinScale    float64 `yaml:"min_scale"`
	MaxScale    float64 `yaml:"max_scale"`
	MinY        float64 `yaml:"min_y"`
	EdgePadding float64 `yaml:"edge_padding"`

	NudgeStep  float64 `yaml:"nudge_step"`
	RotateStep float64 `yaml:"rotate_step"`

	StackRadius float64 `yaml:"stack_radius"`
	StackGap    float64 `yaml:"stack_gap"`

	RandomYaw     bool    `yaml:"random_yaw"`
	RandomSpreadX float64 `yaml:"random_spread_x"`
	RandomSpreadZ float64 `yaml:"random_spread_z"`
	RandomDropY   float64 `yaml:"random_drop_y"`

	FloorOffset float64 `yaml:"floor_offset"`
	WallOffset  float64 `yaml:"wall_offset"`
}

// DefaultSettings returns the stock interaction constants.
func DefaultSettings() Settings {
	return Settings{
		TranslateSensitivity: 0.05,
		RotateSensitivity:    0.01,
		ScaleSensitivity:     0.01,
		ElevateSensitivity:   0.05,
		MinScale:             0.2,
		MaxScale:             3.0,
		MinY:                 0.5,
		EdgePadding:          2,
		NudgeStep:            0.5,
		RotateStep:           math.Pi / 12,
		StackRadius:          2,
		StackGap:             2,
		RandomYaw:            true,
		RandomSpreadX:        10,
		RandomSpreadZ:        8,
		RandomDropY:          1,
		FloorOffset:          placement.DefaultFloorOffset,
		WallOffset:           placement.DefaultWallOffset,
	}
}

// Resolver returns a placement resolver using the configured offsets.
func (s Settings) Resolver() *placement.Resolver {
	return &placement.Resolver{FloorOffset: s.FloorOffset, WallOffset: s.WallOffset}
}
