// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// StepConf carries every tunable recognized by World.Step, per spec.md §6.
// It is the functional-options target for NewWorld, following the teacher
// engine's vu.Config/vu.Attr pattern (config.go, e.g. vu.Title).
type StepConf struct {
	Dt      float64 `yaml:"dt"`
	InvDt   float64 `yaml:"-"` // derived, not user-set
	DtRatio float64 `yaml:"dtRatio"`

	RegVelocityIterations int `yaml:"regVelocityIterations"`
	RegPositionIterations int `yaml:"regPositionIterations"`
	ToiVelocityIterations int `yaml:"toiVelocityIterations"`
	ToiPositionIterations int `yaml:"toiPositionIterations"`

	MaxToiRootIters  int `yaml:"maxToiRootIters"`
	MaxToiIters      int `yaml:"maxToiIters"`
	MaxDistanceIters int `yaml:"maxDistanceIters"`
	MaxSubSteps      int `yaml:"maxSubSteps"`

	LinearSlop         float64 `yaml:"linearSlop"`
	AngularSlop        float64 `yaml:"angularSlop"`
	MaxLinearCorrection float64 `yaml:"maxLinearCorrection"`
	MaxAngularCorrection float64 `yaml:"maxAngularCorrection"`

	RegResolutionRate float64 `yaml:"regResolutionRate"` // baumgarte, regular phase
	ToiResolutionRate float64 `yaml:"toiResolutionRate"` // baumgarte, TOI phase

	RegMinSeparation float64 `yaml:"regMinSeparation"`
	ToiMinSeparation float64 `yaml:"toiMinSeparation"`

	VelocityThreshold float64 `yaml:"velocityThreshold"`

	MaxTranslation float64 `yaml:"maxTranslation"`
	MaxRotation    float64 `yaml:"maxRotation"`

	DoWarmStart bool `yaml:"doWarmStart"`
	DoToi       bool `yaml:"doToi"`
	DoBlockSolve bool `yaml:"doBlockSolve"`

	LinearSleepTolerance  float64 `yaml:"linearSleepTolerance"`
	AngularSleepTolerance float64 `yaml:"angularSleepTolerance"`
	MinStillTimeToSleep   float64 `yaml:"minStillTimeToSleep"`

	AABBExtension    float64 `yaml:"aabbExtension"`
	AABBMultiplier   float64 `yaml:"aabbMultiplier"`
}

// DefaultStepConf returns the §6 defaults.
func DefaultStepConf() StepConf {
	slop := 0.005
	return StepConf{
		DtRatio:               1,
		RegVelocityIterations: 8,
		RegPositionIterations: 3,
		ToiVelocityIterations: 8,
		ToiPositionIterations: 20,
		MaxToiRootIters:       50,
		MaxToiIters:           20,
		MaxDistanceIters:      20,
		MaxSubSteps:           48,
		LinearSlop:            slop,
		AngularSlop:           2.0 / 180.0 * 3.14159265358979323846,
		MaxLinearCorrection:   0.2,
		MaxAngularCorrection:  8.0 / 180.0 * 3.14159265358979323846,
		RegResolutionRate:     0.2,
		ToiResolutionRate:     0.75,
		RegMinSeparation:      -3 * slop,
		ToiMinSeparation:      -1.5 * slop,
		VelocityThreshold:     1.0,
		MaxTranslation:        4.0,
		MaxRotation:           3.14159265358979323846 / 2,
		DoWarmStart:           true,
		DoToi:                 true,
		DoBlockSolve:          true,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2.0 / 180.0 * 3.14159265358979323846,
		MinStillTimeToSleep:   0.5,
		AABBExtension:         0.1,
		AABBMultiplier:        2.0,
	}
}

// Validate rejects out-of-range configuration at construction time (§7
// "Configuration out-of-range"), never allowing a partially-built world.
func (c StepConf) Validate() error {
	if c.LinearSlop <= 0 {
		return fmt.Errorf("physics: linearSlop must be positive, got %v", c.LinearSlop)
	}
	if c.RegVelocityIterations < 0 || c.RegPositionIterations < 0 ||
		c.ToiVelocityIterations < 0 || c.ToiPositionIterations < 0 {
		return fmt.Errorf("physics: iteration counts must be non-negative")
	}
	if c.MaxTranslation < 0 || c.MaxRotation < 0 {
		return fmt.Errorf("physics: maxTranslation/maxRotation must be non-negative")
	}
	if c.MaxToiRootIters <= 0 || c.MaxToiIters <= 0 || c.MaxDistanceIters <= 0 || c.MaxSubSteps <= 0 {
		return fmt.Errorf("physics: maxToiRootIters/maxToiIters/maxDistanceIters/maxSubSteps must be positive")
	}
	return nil
}

// withDt returns a copy of c with Dt/InvDt/DtRatio set for one Step call.
func (c StepConf) withDt(dt float64) StepConf {
	prevDt := c.Dt
	c.Dt = dt
	if dt > 0 {
		c.InvDt = 1.0 / dt
	} else {
		c.InvDt = 0
	}
	if prevDt > 0 {
		c.DtRatio = dt / prevDt
	} else {
		c.DtRatio = 1
	}
	return c
}

// LoadStepConf reads a YAML-encoded StepConf, starting from the defaults
// so a scene file only needs to override the fields it cares about.
func LoadStepConf(r io.Reader) (StepConf, error) {
	conf := DefaultStepConf()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&conf); err != nil && err != io.EOF {
		return StepConf{}, fmt.Errorf("physics: decode step config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return StepConf{}, err
	}
	return conf, nil
}

// MarshalYAMLBytes round-trips a StepConf back to YAML bytes.
func (c StepConf) MarshalYAMLBytes() ([]byte, error) {
	return yaml.Marshal(c)
}

// WorldOption configures a World at construction time, following the
// teacher engine's functional-options pattern (config.go's vu.Attr).
type WorldOption func(*World)

// WithStepConf overrides the world's default StepConf.
func WithStepConf(conf StepConf) WorldOption {
	return func(w *World) { w.conf = conf }
}

// WithContactFilter installs a user ContactFilter.
func WithContactFilter(f ContactFilter) WorldOption {
	return func(w *World) { w.contactFilter = f }
}

// WithContactListener installs a user ContactListener.
func WithContactListener(l ContactListener) WorldOption {
	return func(w *World) { w.contactListener = l }
}

// WithDestructionListener installs a user DestructionListener.
func WithDestructionListener(l DestructionListener) WorldOption {
	return func(w *World) { w.destructionListener = l }
}

// WithLogger overrides the world's default slog.Logger (slog.Default()).
// NewWorld still tags whatever logger results with the world's instance
// id, so a host's own handler/sink configuration is preserved.
func WithLogger(logger *slog.Logger) WorldOption {
	return func(w *World) { w.logger = logger }
}
