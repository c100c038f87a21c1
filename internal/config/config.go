// Package config handles animtool configuration loading and management.
package config

import (
	"fmt"
	gomath "math"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-anim/pkg/archive"
)

// Config holds all animtool settings.
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Source       SourceConfig       `yaml:"source"`
	Optimization OptimizationConfig `yaml:"optimization"`
	Clips        []ClipConfig       `yaml:"clips"`
	Output       OutputConfig       `yaml:"output"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	Playback     PlaybackConfig     `yaml:"playback"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// SourceConfig holds settings for reading source documents.
type SourceConfig struct {
	// Encoding is the charset of source files, e.g. "euc-kr". Empty means UTF-8.
	Encoding string `yaml:"encoding"`
}

// OptimizationConfig holds keyframe reduction settings.
type OptimizationConfig struct {
	Enabled           bool    `yaml:"enabled"`
	DistanceTolerance float32 `yaml:"distance_tolerance"`  // model units
	AngleToleranceDeg float32 `yaml:"angle_tolerance_deg"` // degrees
	// Joints overrides the tolerances of individual joints, by name.
	Joints map[string]JointTolerance `yaml:"joints,omitempty"`
}

// JointTolerance overrides the optimizer tolerance of one joint.
type JointTolerance struct {
	Distance float32 `yaml:"distance"`
	AngleDeg float32 `yaml:"angle_deg"`
}

// ClipConfig names a time range of the source animation to export on its
// own. With no clips configured the whole animation is exported.
type ClipConfig struct {
	Name  string  `yaml:"name"`
	Start float32 `yaml:"start"`
	End   float32 `yaml:"end"`
}

// OutputConfig holds archive output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// PipelineConfig holds offline export settings.
type PipelineConfig struct {
	Workers int `yaml:"workers"` // 0 means one per CPU
}

// PlaybackConfig holds settings of the play command.
type PlaybackConfig struct {
	FPS       int     `yaml:"fps"`
	Speed     float32 `yaml:"speed"`
	Loop      bool    `yaml:"loop"`
	Instances int     `yaml:"instances"`
	Frames    int     `yaml:"frames"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Optimization: OptimizationConfig{
			Enabled:           true,
			DistanceTolerance: 1e-3,
			AngleToleranceDeg: 0.1,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Pipeline: PipelineConfig{
			Workers: 0,
		},
		Playback: PlaybackConfig{
			FPS:       30,
			Speed:     1,
			Loop:      true,
			Instances: 1,
			Frames:    90,
		},
	}
}

// AngleTolerance returns the default angle tolerance in radians.
func (o *OptimizationConfig) AngleTolerance() float32 {
	return degToRad(o.AngleToleranceDeg)
}

// AngleTolerance returns the override angle in radians.
func (j JointTolerance) AngleTolerance() float32 {
	return degToRad(j.AngleDeg)
}

func degToRad(deg float32) float32 {
	return deg * gomath.Pi / 180
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error

	o := c.Optimization
	if o.DistanceTolerance < 0 || o.AngleToleranceDeg < 0 {
		err = multierr.Append(err, fmt.Errorf("optimization tolerances must not be negative"))
	}
	for name, j := range o.Joints {
		if j.Distance < 0 || j.AngleDeg < 0 {
			err = multierr.Append(err, fmt.Errorf("joint %q tolerances must not be negative", name))
		}
	}

	seen := make(map[string]bool, len(c.Clips))
	for i, clip := range c.Clips {
		if clip.Name == "" {
			err = multierr.Append(err, fmt.Errorf("clip %d has no name", i))
		} else if seen[clip.Name] {
			err = multierr.Append(err, fmt.Errorf("clip %q is defined twice", clip.Name))
		} else if nameErr := archive.CheckName(clip.Name); nameErr != nil {
			err = multierr.Append(err, fmt.Errorf("clip %d: %w", i, nameErr))
		}
		seen[clip.Name] = true
		if clip.Start < 0 || !(clip.End > clip.Start) {
			err = multierr.Append(err, fmt.Errorf("clip %q range [%v, %v] is empty or negative", clip.Name, clip.Start, clip.End))
		}
	}

	if c.Pipeline.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("pipeline workers %d must not be negative", c.Pipeline.Workers))
	}

	p := c.Playback
	if p.FPS <= 0 {
		err = multierr.Append(err, fmt.Errorf("playback fps %d must be positive", p.FPS))
	}
	if p.Instances <= 0 {
		err = multierr.Append(err, fmt.Errorf("playback instances %d must be positive", p.Instances))
	}
	if p.Frames < 0 {
		err = multierr.Append(err, fmt.Errorf("playback frames %d must not be negative", p.Frames))
	}
	if gomath.IsNaN(float64(p.Speed)) || gomath.IsInf(float64(p.Speed), 0) {
		err = multierr.Append(err, fmt.Errorf("playback speed %v must be finite", p.Speed))
	}

	return err
}
