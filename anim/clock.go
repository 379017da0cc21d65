// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"time"

	"github.com/omegawtk/compositor/math32"
)

// TickContext is what an animator hands its Clock each tick: wall
// time, the animation's start time, its timing options, and the
// tick-step index the backend has most recently confirmed presented
// for this animation's lane (the animator derives this by watching
// AnimationHandle.lastPresentedPacketId against the packet id it
// reserved for each step; 0 means nothing presented yet).
type TickContext struct {
	Now            time.Time
	Start          time.Time
	Timing         TimingOptions
	PresentedTick  int
	TickIndex      int // this tick's own step index, 1-based
}

// TickResult is a Clock's verdict for one tick: the progress value to
// sample tracks at, and whether the animator should actually sample
// and submit this tick at all (false = stale-skip: hold the previous
// frame, do no work).
type TickResult struct {
	Progress  float32
	Advance   bool
	StaleSkip bool
}

// Clock is the shared tick interface for WallClock, PresentedClock,
// and HybridClock (spec §4.6 "Clock model").
type Clock interface {
	Tick(ctx TickContext) TickResult
}

// WallClock advances strictly from elapsed wall time, ignoring
// presentation feedback entirely.
type WallClock struct{}

func (WallClock) Tick(ctx TickContext) TickResult {
	return TickResult{Progress: wallProgress(ctx), Advance: true}
}

func wallProgress(ctx TickContext) float32 {
	if ctx.Timing.Duration <= 0 {
		return 1
	}
	elapsed := ctx.Now.Sub(ctx.Start)
	raw := float32(elapsed) / float32(ctx.Timing.Duration)
	return math32.Clamp01(raw * ctx.Timing.PlaybackRate)
}

// PresentedClock advances progress only in lockstep with backend
// presentation: a tick whose step has not yet been confirmed
// presented is a stale-skip.
type PresentedClock struct {
	staleStepsSkipped       int
	monotonicProgressClamps int
	staleSkipMode           bool
	lastProgress            float32
}

func (c *PresentedClock) Tick(ctx TickContext) TickResult {
	if ctx.PresentedTick < ctx.TickIndex-1 {
		c.staleSkipMode = true
		c.staleStepsSkipped++
		return TickResult{Progress: c.lastProgress, Advance: false, StaleSkip: true}
	}
	c.staleSkipMode = false

	total := stepCount(ctx.Timing)
	progress := math32.Clamp01(float32(ctx.TickIndex) / float32(total))
	if progress < c.lastProgress {
		c.monotonicProgressClamps++
		progress = c.lastProgress
	}
	c.lastProgress = progress
	return TickResult{Progress: progress, Advance: true}
}

// StaleStepsSkipped returns how many ticks this clock held for lack
// of presentation confirmation.
func (c *PresentedClock) StaleStepsSkipped() int { return c.staleStepsSkipped }

// MonotonicProgressClamps returns how many ticks had their computed
// progress clamped to the previous value to prevent regression.
func (c *PresentedClock) MonotonicProgressClamps() int { return c.monotonicProgressClamps }

// StaleSkipMode reports whether the most recent tick was a stale-skip.
func (c *PresentedClock) StaleSkipMode() bool { return c.staleSkipMode }

// HybridClock uses wall-clock progress unless the backend's
// presentation lags the tick stream by more than MaxCatchupSteps,
// in which case it stale-skips until presentation catches up.
type HybridClock struct {
	staleStepsSkipped       int
	monotonicProgressClamps int
	staleSkipMode           bool
	lastProgress            float32
}

func (c *HybridClock) Tick(ctx TickContext) TickResult {
	lag := ctx.TickIndex - ctx.PresentedTick
	if lag > max(ctx.Timing.MaxCatchupSteps, 0) {
		c.staleSkipMode = true
		c.staleStepsSkipped++
		return TickResult{Progress: c.lastProgress, Advance: false, StaleSkip: true}
	}
	c.staleSkipMode = false

	progress := wallProgress(ctx)
	if progress < c.lastProgress {
		c.monotonicProgressClamps++
		progress = c.lastProgress
	}
	c.lastProgress = progress
	return TickResult{Progress: progress, Advance: true}
}

func (c *HybridClock) StaleStepsSkipped() int { return c.staleStepsSkipped }
func (c *HybridClock) MonotonicProgressClamps() int { return c.monotonicProgressClamps }
func (c *HybridClock) StaleSkipMode() bool { return c.staleSkipMode }

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// stepCount derives the total tick-step count PresentedClock paces
// itself against, from the duration and the frame-rate hint.
func stepCount(timing TimingOptions) int {
	if timing.FrameRateHint == 0 || timing.Duration <= 0 {
		return 1
	}
	steps := int(timing.Duration.Seconds() * float64(timing.FrameRateHint))
	if steps < 1 {
		steps = 1
	}
	return steps
}

// NewClock constructs the Clock implementation timing.ClockMode names.
func NewClock(mode ClockMode) Clock {
	switch mode {
	case ClockPresented:
		return &PresentedClock{}
	case ClockHybrid:
		return &HybridClock{}
	default:
		return WallClock{}
	}
}
