// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"math"
	"time"

	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

// LayerClip bundles the tracks one animate() call samples together
// for a single layer. A nil track is simply not sampled/queued.
type LayerClip struct {
	Rect      *KeyframeTrack[math32.Rect]
	Transform *KeyframeTrack[layer.TransformEffect]
	Shadow    *KeyframeTrack[layer.ShadowEffect]
}

// LayerAnimator owns the tick loop that samples a LayerClip's tracks
// and queues LayerResize/LayerEffect commands through a ClientProxy.
type LayerAnimator struct {
	proxy  *proxy.ClientProxy
	target layer.LayerHandle
}

// NewLayerAnimator binds an animator to the layer's owning proxy.
func NewLayerAnimator(p *proxy.ClientProxy, target layer.LayerHandle) *LayerAnimator {
	return &LayerAnimator{proxy: p, target: target}
}

// Animate starts ticking clip on the proxy's default lane and returns
// its control handle.
func (a *LayerAnimator) Animate(clip LayerClip, timing TimingOptions) *AnimationHandle {
	return a.run(clip, timing)
}

// AnimateOnLane is identical to Animate; the lane is fixed by the
// LayerAnimator's underlying ClientProxy, exposed under this name for
// symmetry with the source API that let a caller pick among several
// lanes a client might hold.
func (a *LayerAnimator) AnimateOnLane(clip LayerClip, timing TimingOptions, _ proxy.LaneID) *AnimationHandle {
	return a.run(clip, timing)
}

func (a *LayerAnimator) run(clip LayerClip, timing TimingOptions) *AnimationHandle {
	if timing.PlaybackRate == 0 {
		timing.PlaybackRate = 1
	}
	handle := newAnimationHandle(timing.PlaybackRate)
	handle.setState(StateRunning)

	interval := tickInterval(timing.FrameRateHint)
	go a.loop(clip, timing, handle, interval)
	return handle
}

func (a *LayerAnimator) loop(clip LayerClip, timing TimingOptions, handle *AnimationHandle, interval time.Duration) {
	clock := NewClock(timing.ClockMode)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now().Add(timing.Delay)
	tickIndex := 0
	lap := 0
	laps := totalIterations(timing)
	reservedSteps := map[proxy.PacketID]int{}
	var lastRect *math32.Rect
	var lastTransform *layer.TransformEffect
	var lastShadow *layer.ShadowEffect

	for {
		select {
		case <-handle.Cancelled():
			a.cancel(handle)
			return
		case now := <-ticker.C:
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
			if !result.Advance {
				continue
			}
			handle.setProgress(result.Progress)
			sampleT := lapSampleProgress(timing.Direction, lap, result.Progress)

			deadline := now.Add(interval)
			reserved := a.proxy.PeekNextPacketID()
			queued := a.sampleAndQueue(clip, sampleT, deadline, &lastRect, &lastTransform, &lastShadow)
			if queued {
				reservedSteps[reserved] = tickIndex
				handle.setSubmittedPacketID(reserved)
			}

			if result.Progress >= 1 {
				lap++
				if lap >= laps {
					a.complete(handle, clip, timing, &lastRect, &lastTransform, &lastShadow)
					return
				}
				clock = NewClock(timing.ClockMode)
				start = now
				tickIndex = 0
			}
		}
	}
}

// sampleAndQueue samples clip's tracks at t, diffs against the
// last-queued values, and queues whatever changed inside one
// record/submit bracket. Returns whether anything was queued.
func (a *LayerAnimator) sampleAndQueue(clip LayerClip, t float32, deadline time.Time, lastRect **math32.Rect, lastTransform **layer.TransformEffect, lastShadow **layer.ShadowEffect) bool {
	var queued bool
	a.proxy.BeginRecord()
	if clip.Rect != nil && !clip.Rect.Empty() {
		rect := clip.Rect.Sample(t)
		if *lastRect == nil || **lastRect != rect {
			a.proxy.QueueLayerResize(a.target, rect, &deadline)
			*lastRect = &rect
			queued = true
		}
	}
	if (clip.Transform != nil && !clip.Transform.Empty()) || (clip.Shadow != nil && !clip.Shadow.Empty()) {
		var transform *layer.TransformEffect
		var shadow *layer.ShadowEffect
		if clip.Transform != nil && !clip.Transform.Empty() {
			v := clip.Transform.Sample(t)
			if *lastTransform == nil || **lastTransform != v {
				transform = &v
				*lastTransform = &v
			}
		}
		if clip.Shadow != nil && !clip.Shadow.Empty() {
			v := clip.Shadow.Sample(t)
			if *lastShadow == nil || **lastShadow != v {
				shadow = &v
				*lastShadow = &v
			}
		}
		if transform != nil || shadow != nil {
			a.proxy.QueueLayerEffect(a.target, shadow, transform, &deadline)
			queued = true
		}
	}
	a.proxy.EndRecord()
	return queued
}

// complete marks handle Completed once every lap has played (spec
// §4.6: "progress reaches 1 ... or iterations exhaust"). FillForwards/
// FillBoth hold the last queued sample as-is; FillNone/FillBackwards
// revert by queuing one more sample at each track's base (offset 0)
// value.
func (a *LayerAnimator) complete(handle *AnimationHandle, clip LayerClip, timing TimingOptions, lastRect **math32.Rect, lastTransform **layer.TransformEffect, lastShadow **layer.ShadowEffect) {
	if timing.FillMode == FillNone || timing.FillMode == FillBackwards {
		deadline := time.Now().Add(tickInterval(timing.FrameRateHint))
		a.sampleAndQueue(clip, 0, deadline, lastRect, lastTransform, lastShadow)
	}
	handle.setState(StateCompleted)
}

func (a *LayerAnimator) cancel(handle *AnimationHandle) {
	a.proxy.BeginRecord()
	a.proxy.QueueCancel(proxy.CancelRange{Start: 0, End: proxy.CommandID(math.MaxInt64)})
	a.proxy.EndRecord()
}

// tickInterval derives a ticker period from a frame-rate hint,
// defaulting to 60fps.
func tickInterval(hz uint16) time.Duration {
	if hz == 0 {
		hz = 60
	}
	return time.Second / time.Duration(hz)
}
