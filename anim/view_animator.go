// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"math"
	"sync"
	"time"

	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

// ViewClip is the track bundle animate() samples for a render target's
// overall rect (ViewResize).
type ViewClip struct {
	Rect *KeyframeTrack[math32.Rect]
}

// ViewDiagnostics is the point-in-time telemetry snapshot a
// ViewAnimator exposes for monitoring/tests: per spec §4.6's
// diagnostics list.
type ViewDiagnostics struct {
	TickCount               int
	StaleStepsSkipped       int
	MonotonicProgressClamps int

	ActiveTracks    int
	CompletedTracks int
	CancelledTracks int
	FailedTracks    int

	QueuedPackets    int
	SubmittedPackets int
	DroppedPackets   int
	FailedPackets    int

	LastSubmittedPacketID proxy.PacketID
	LastPresentedPacketID proxy.PacketID

	InFlight          bool
	StaleSkipMode     bool
	LaneUnderPressure bool
	ResizeBudgetActive bool
}

// ViewAnimator owns a render target's ViewClip tick loop and holds the
// LayerAnimators it was constructed with, returned by Layers(). It
// does not pause or cancel those LayerAnimators' animations.
type ViewAnimator struct {
	proxy  *proxy.ClientProxy
	target proxy.RenderTargetHandle
	layers []*LayerAnimator

	mu   sync.Mutex
	diag ViewDiagnostics
}

// NewViewAnimator binds a ViewAnimator to the proxy/target pair and
// the LayerAnimators composing its subtree.
func NewViewAnimator(p *proxy.ClientProxy, target proxy.RenderTargetHandle, layers ...*LayerAnimator) *ViewAnimator {
	return &ViewAnimator{proxy: p, target: target, layers: layers}
}

// Animate starts ticking clip and returns its control handle.
func (v *ViewAnimator) Animate(clip ViewClip, timing TimingOptions) *AnimationHandle {
	return v.run(clip, timing)
}

// AnimateOnLane mirrors LayerAnimator.AnimateOnLane: the lane is fixed
// by the underlying ClientProxy.
func (v *ViewAnimator) AnimateOnLane(clip ViewClip, timing TimingOptions, _ proxy.LaneID) *AnimationHandle {
	return v.run(clip, timing)
}

func (v *ViewAnimator) run(clip ViewClip, timing TimingOptions) *AnimationHandle {
	if timing.PlaybackRate == 0 {
		timing.PlaybackRate = 1
	}
	handle := newAnimationHandle(timing.PlaybackRate)
	handle.setState(StateRunning)

	v.mu.Lock()
	v.diag.ActiveTracks++
	v.mu.Unlock()

	interval := tickInterval(timing.FrameRateHint)
	go v.loop(clip, timing, handle, interval)
	return handle
}

func (v *ViewAnimator) loop(clip ViewClip, timing TimingOptions, handle *AnimationHandle, interval time.Duration) {
	clock := NewClock(timing.ClockMode)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now().Add(timing.Delay)
	tickIndex := 0
	lap := 0
	laps := totalIterations(timing)
	reservedSteps := map[proxy.PacketID]int{}
	var lastRect *math32.Rect

	for {
		select {
		case <-handle.Cancelled():
			v.proxy.BeginRecord()
			v.proxy.QueueCancel(proxy.CancelRange{Start: 0, End: proxy.CommandID(math.MaxInt64)})
			v.proxy.EndRecord()
			v.finish(handle, StateCancelled)
			return
		case now := <-ticker.C:
			v.mu.Lock()
			v.diag.TickCount++
			v.mu.Unlock()

			if handle.State() == StatePaused {
				continue
			}

			if seek, ok := handle.takeSeek(); ok {
				start = now.Add(-time.Duration(seek * float32(timing.Duration)))
			}

			tickIndex++
			presentedTick := reservedSteps[handle.LastPresentedPacketID()]
			result := clock.Tick(TickContext{
				Now:           now,
				Start:         start,
				Timing:        timing,
				PresentedTick: presentedTick,
				TickIndex:     tickIndex,
			})
			v.recordClockDiagnostics(clock)
			if !result.Advance {
				continue
			}
			handle.setProgress(result.Progress)
			sampleT := lapSampleProgress(timing.Direction, lap, result.Progress)

			reserved := v.proxy.PeekNextPacketID()
			if v.sampleAndQueue(clip, sampleT, &lastRect) {
				reservedSteps[reserved] = tickIndex
				handle.setSubmittedPacketID(reserved)

				v.mu.Lock()
				v.diag.QueuedPackets++
				v.diag.SubmittedPackets++
				v.diag.LastSubmittedPacketID = reserved
				v.mu.Unlock()
			}

			if result.Progress >= 1 {
				lap++
				if lap >= laps {
					v.complete(handle, clip, timing, &lastRect)
					return
				}
				clock = NewClock(timing.ClockMode)
				start = now
				tickIndex = 0
			}
		}
	}
}

// sampleAndQueue samples clip.Rect at t and, if it differs from the
// last-queued value, queues a ViewResize. Returns whether it queued.
func (v *ViewAnimator) sampleAndQueue(clip ViewClip, t float32, lastRect **math32.Rect) bool {
	if clip.Rect == nil || clip.Rect.Empty() {
		return false
	}
	rect := clip.Rect.Sample(t)
	if *lastRect != nil && **lastRect == rect {
		return false
	}
	v.proxy.BeginRecord()
	v.proxy.QueueViewResize(v.target, rect)
	v.proxy.EndRecord()
	*lastRect = &rect
	return true
}

// complete applies FillMode once every lap has played (spec §4.6:
// "progress reaches 1 ... or iterations exhaust"): FillForwards/
// FillBoth hold the last queued rect, FillNone/FillBackwards revert by
// queuing one more sample at the track's base (offset 0) value.
func (v *ViewAnimator) complete(handle *AnimationHandle, clip ViewClip, timing TimingOptions, lastRect **math32.Rect) {
	if timing.FillMode == FillNone || timing.FillMode == FillBackwards {
		if v.sampleAndQueue(clip, 0, lastRect) {
			v.mu.Lock()
			v.diag.QueuedPackets++
			v.diag.SubmittedPackets++
			v.mu.Unlock()
		}
	}
	v.finish(handle, StateCompleted)
}

func (v *ViewAnimator) recordClockDiagnostics(clock Clock) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch c := clock.(type) {
	case *PresentedClock:
		v.diag.StaleStepsSkipped = c.StaleStepsSkipped()
		v.diag.MonotonicProgressClamps = c.MonotonicProgressClamps()
		v.diag.StaleSkipMode = c.StaleSkipMode()
	case *HybridClock:
		v.diag.StaleStepsSkipped = c.StaleStepsSkipped()
		v.diag.MonotonicProgressClamps = c.MonotonicProgressClamps()
		v.diag.StaleSkipMode = c.StaleSkipMode()
	}
}

func (v *ViewAnimator) finish(handle *AnimationHandle, final AnimationState) {
	handle.setState(final)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.diag.ActiveTracks--
	switch final {
	case StateCompleted:
		v.diag.CompletedTracks++
	case StateCancelled:
		v.diag.CancelledTracks++
	case StateFailed:
		v.diag.FailedTracks++
	}
}

// Diagnostics returns a snapshot of the animator's current counters.
func (v *ViewAnimator) Diagnostics() ViewDiagnostics {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.diag
}

// Layers returns the LayerAnimators this ViewAnimator was constructed
// with.
func (v *ViewAnimator) Layers() []*LayerAnimator { return v.layers }
