// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallClockAlwaysAdvances(t *testing.T) {
	clock := WallClock{}
	start := time.Unix(0, 0)
	timing := TimingOptions{Duration: time.Second, PlaybackRate: 1}

	result := clock.Tick(TickContext{Now: start.Add(500 * time.Millisecond), Start: start, Timing: timing, TickIndex: 1})
	assert.True(t, result.Advance)
	assert.InDelta(t, 0.5, result.Progress, 1e-3)
}

func TestWallClockClampsToZeroDuration(t *testing.T) {
	clock := WallClock{}
	start := time.Unix(0, 0)
	timing := TimingOptions{Duration: 0, PlaybackRate: 1}
	result := clock.Tick(TickContext{Now: start, Start: start, Timing: timing, TickIndex: 1})
	assert.Equal(t, float32(1), result.Progress)
}

// TestHybridClockStaleSkipsWhenPresentationLags covers S6: a Hybrid
// clock with MaxCatchupSteps=1 driven for 5 ticks while presentation
// never acknowledges anything (PresentedTick stays 0) must stale-skip
// once the lag exceeds the catch-up budget, and progress must never
// regress across the sequence of ticks that do advance.
func TestHybridClockStaleSkipsWhenPresentationLags(t *testing.T) {
	clock := &HybridClock{}
	start := time.Unix(0, 0)
	timing := TimingOptions{Duration: time.Second, PlaybackRate: 1, MaxCatchupSteps: 1}

	var lastProgress float32
	var results []TickResult
	for i := 1; i <= 5; i++ {
		now := start.Add(time.Duration(i) * 100 * time.Millisecond)
		r := clock.Tick(TickContext{Now: now, Start: start, Timing: timing, PresentedTick: 0, TickIndex: i})
		results = append(results, r)
		if r.Advance {
			assert.GreaterOrEqual(t, r.Progress, lastProgress, "progress must never regress")
			lastProgress = r.Progress
		}
	}

	assert.GreaterOrEqual(t, clock.StaleStepsSkipped(), 2)
	assert.True(t, clock.StaleSkipMode())
	assert.GreaterOrEqual(t, clock.MonotonicProgressClamps(), 0)

	// The first tick (lag 1 <= MaxCatchupSteps) advances; later ticks,
	// once lag exceeds the budget, stale-skip.
	assert.True(t, results[0].Advance)
	assert.False(t, results[len(results)-1].Advance)
}

func TestHybridClockResumesOnceCatchesUp(t *testing.T) {
	clock := &HybridClock{}
	start := time.Unix(0, 0)
	timing := TimingOptions{Duration: time.Second, PlaybackRate: 1, MaxCatchupSteps: 1}

	clock.Tick(TickContext{Now: start.Add(100 * time.Millisecond), Start: start, Timing: timing, PresentedTick: 0, TickIndex: 1})
	stale := clock.Tick(TickContext{Now: start.Add(300 * time.Millisecond), Start: start, Timing: timing, PresentedTick: 0, TickIndex: 3})
	assert.False(t, stale.Advance)

	caughtUp := clock.Tick(TickContext{Now: start.Add(400 * time.Millisecond), Start: start, Timing: timing, PresentedTick: 3, TickIndex: 4})
	assert.True(t, caughtUp.Advance)
}

func TestPresentedClockDeterministicSamplingForIdenticalTickStream(t *testing.T) {
	timing := TimingOptions{Duration: time.Second, PlaybackRate: 1, FrameRateHint: 10}
	start := time.Unix(0, 0)

	run := func() []float32 {
		clock := &PresentedClock{}
		var progresses []float32
		for i := 1; i <= 10; i++ {
			now := start.Add(time.Duration(i) * 100 * time.Millisecond)
			r := clock.Tick(TickContext{Now: now, Start: start, Timing: timing, PresentedTick: i - 1, TickIndex: i})
			progresses = append(progresses, r.Progress)
		}
		return progresses
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "identical TimingOptions and tick stream must sample identically")
}
