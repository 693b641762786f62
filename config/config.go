// Package config provides configuration loading and access for the arcade simulations.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Flappy    FlappyConfig    `yaml:"flappy"`
	Pong      PongConfig      `yaml:"pong"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings shared by both games.
type ScreenConfig struct {
	TargetFPS int    `yaml:"target_fps"`
	FontSize  int    `yaml:"font_size"`
	Assets    string `yaml:"assets"` // Directory with PNG sprites (empty = procedural sprites)
}

// FlappyConfig holds the Flappy Bird playfield and physics parameters.
type FlappyConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	BirdX float64 `yaml:"bird_x"`
	BirdY float64 `yaml:"bird_y"`

	JumpVelocity  float64 `yaml:"jump_velocity"`  // Negative is upward
	Gravity       float64 `yaml:"gravity"`        // d = v*t + 0.5*gravity*t^2
	MaxFall       float64 `yaml:"max_fall"`       // Displacement cap per tick, downward
	RiseBoost     float64 `yaml:"rise_boost"`     // Extra pixels added to upward displacement
	MaxRise       float64 `yaml:"max_rise"`       // Displacement cap per tick, upward
	TiltThreshold float64 `yaml:"tilt_threshold"` // Stay pitched up while within this of the jump height
	MaxRotation   float64 `yaml:"max_rotation"`   // Degrees
	RotationVel   float64 `yaml:"rotation_vel"`   // Degrees per tick while diving
	MinRotation   float64 `yaml:"min_rotation"`   // Degrees, dive limit
	AnimationTime int     `yaml:"animation_time"` // Ticks per wing frame

	PipeGap       float64 `yaml:"pipe_gap"`
	PipeVelocity  float64 `yaml:"pipe_velocity"`
	PipeMinHeight int     `yaml:"pipe_min_height"` // Inclusive
	PipeMaxHeight int     `yaml:"pipe_max_height"` // Exclusive
	PipeSpawnX    float64 `yaml:"pipe_spawn_x"`

	Floor        float64 `yaml:"floor"`
	BaseVelocity float64 `yaml:"base_velocity"`

	MaxFrames int `yaml:"max_frames"` // Per generation (0 = unlimited)
}

// PongConfig holds the Pong court and physics parameters.
type PongConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	PaddleX        float64 `yaml:"paddle_x"`
	PaddleVelocity float64 `yaml:"paddle_velocity"`
	PaddleMinY     float64 `yaml:"paddle_min_y"`     // Paddle may move up while y >= this
	PaddleMaxSlack float64 `yaml:"paddle_max_slack"` // Paddle may move down while y <= height + slack - paddle height

	BallSize     int `yaml:"ball_size"`
	BallMinSpeed int `yaml:"ball_min_speed"` // Inclusive
	BallMaxSpeed int `yaml:"ball_max_speed"` // Exclusive
	BallMinY     int `yaml:"ball_min_y"`
	BallMaxY     int `yaml:"ball_max_y"`

	HitSpeed     float64 `yaml:"hit_speed"`
	HitMinYSpeed int     `yaml:"hit_min_y_speed"` // Inclusive
	HitMaxYSpeed int     `yaml:"hit_max_y_speed"` // Exclusive
	MissMargin   float64 `yaml:"miss_margin"`     // Ball behind paddle edge minus this is a miss

	MaxFrames int `yaml:"max_frames"` // Per generation (0 = unlimited)
}

// EvolutionConfig holds run-level neuro-evolution settings.
type EvolutionConfig struct {
	Generations int     `yaml:"generations"`
	Threshold   float64 `yaml:"threshold"` // Sensor output above this triggers the action
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	LogGenerations bool `yaml:"log_generations"`
	TopSpecies     int  `yaml:"top_species"`  // Species listed in each generation log line
	HallOfFame     int  `yaml:"hall_of_fame"` // Champions kept in hall_of_fame.json
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	PongBallSpeedSpan int // BallMaxSpeed - BallMinSpeed
	PongBallYSpan     int // BallMaxY - BallMinY
	PongHitYSpeedSpan int // HitMaxYSpeed - HitMinYSpeed
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects ranges that would make random draws panic.
func (c *Config) Validate() error {
	if c.Flappy.PipeMaxHeight <= c.Flappy.PipeMinHeight {
		return fmt.Errorf("flappy.pipe_max_height (%d) must exceed pipe_min_height (%d)",
			c.Flappy.PipeMaxHeight, c.Flappy.PipeMinHeight)
	}
	if c.Pong.BallMaxSpeed <= c.Pong.BallMinSpeed {
		return fmt.Errorf("pong.ball_max_speed (%d) must exceed ball_min_speed (%d)",
			c.Pong.BallMaxSpeed, c.Pong.BallMinSpeed)
	}
	if c.Pong.BallMaxY <= c.Pong.BallMinY {
		return fmt.Errorf("pong.ball_max_y (%d) must exceed ball_min_y (%d)", c.Pong.BallMaxY, c.Pong.BallMinY)
	}
	if c.Pong.HitMaxYSpeed <= c.Pong.HitMinYSpeed {
		return fmt.Errorf("pong.hit_max_y_speed (%d) must exceed hit_min_y_speed (%d)",
			c.Pong.HitMaxYSpeed, c.Pong.HitMinYSpeed)
	}
	if c.Flappy.AnimationTime <= 0 {
		return fmt.Errorf("flappy.animation_time must be positive, got %d", c.Flappy.AnimationTime)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after changing fields in code.
func (c *Config) ComputeDerived() {
	c.Derived.PongBallSpeedSpan = c.Pong.BallMaxSpeed - c.Pong.BallMinSpeed
	c.Derived.PongBallYSpan = c.Pong.BallMaxY - c.Pong.BallMinY
	c.Derived.PongHitYSpeedSpan = c.Pong.HitMaxYSpeed - c.Pong.HitMinYSpeed
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
