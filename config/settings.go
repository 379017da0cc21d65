// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the compositor's tunable Settings, loadable
// from a TOML file the way the teacher persists its own app settings
// (base/iox/tomlx backed by go-toml/v2), with Default() returning the
// values baked into the specification.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Settings bundles every tunable referenced by the spec that isn't a
// hard invariant: render-scale floor, backing-dimension clamp, resize
// sanitizer thresholds, default animation timing, and scheduler
// behavior.
type Settings struct {
	// RenderScaleFloor is the minimum renderScale per platform: 2 on
	// macOS (Retina baseline), 1 elsewhere.
	RenderScaleFloor float32 `toml:"renderScaleFloor"`

	// BackingDimensionClamp is the [1, N] clamp applied to backing
	// texture width/height after scaling.
	BackingDimensionClamp int `toml:"backingDimensionClamp"`

	// SuspiciousAspectRatio is the w:h (or h:w) ratio above which a
	// resize request is considered suspicious.
	SuspiciousAspectRatio float32 `toml:"suspiciousAspectRatio"`

	// SuspiciousMaxDimFraction and SuspiciousMinDimFloor are the
	// max-dim-proportion / min-dim pairing
	// used alongside SuspiciousAspectRatio: max-dim >= this fraction
	// of BackingDimensionClamp with min-dim <= SuspiciousMinDimFloor
	// is also considered suspicious.
	SuspiciousMaxDimFraction float32 `toml:"suspiciousMaxDimFraction"`
	SuspiciousMinDimFloor    float32 `toml:"suspiciousMinDimFloor"`

	// DefaultTickBudget is a deadline window for a Render command
	// issued by an animation tick; no package in this module reads it.
	DefaultTickBudget time.Duration `toml:"defaultTickBudget"`

	// MainThreadHopEnabled controls whether the scheduler marshals
	// command execution to a dedicated executor goroutine (standing
	// in for the macOS main-queue hop) or runs inline.
	MainThreadHopEnabled bool `toml:"mainThreadHopEnabled"`

	// DefaultMaxCatchupSteps is a default for
	// TimingOptions.MaxCatchupSteps; no package in this module reads
	// it (anim.DefaultTimingOptions sets its own value).
	DefaultMaxCatchupSteps int `toml:"defaultMaxCatchupSteps"`
}

// Default returns the settings implied directly by the specification:
// floor=1 (non-macOS), clamp=16384, aspect ratio 256:1, and a 16ms
// (roughly 60Hz) tick budget.
func Default() Settings {
	return Settings{
		RenderScaleFloor:         1,
		BackingDimensionClamp:    16384,
		SuspiciousAspectRatio:    256,
		SuspiciousMaxDimFraction: 0.5,
		SuspiciousMinDimFloor:    2,
		DefaultTickBudget:        16 * time.Millisecond,
		MainThreadHopEnabled:     false,
		DefaultMaxCatchupSteps:   2,
	}
}

// DefaultDarwin returns Default with the macOS render-scale floor of 2,
// for callers constructing a macOS-targeted backend.
func DefaultDarwin() Settings {
	s := Default()
	s.RenderScaleFloor = 2
	s.MainThreadHopEnabled = true
	return s
}

// Load reads a TOML file at path (e.g. "config.toml"), overlaying its
// fields onto Default().
func Load(path string) (Settings, error) {
	s := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := toml.Unmarshal(b, &s); err != nil {
		return s, err
	}
	return s, nil
}
