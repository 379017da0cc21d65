// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canvas

import (
	"image/color"
	"time"

	"github.com/omegawtk/compositor/layer"
)

// Frame is the captured state of one Canvas.SendFrame call: an
// ordered sequence of VisualCommands and CanvasEffects targeting one
// Layer, plus a frame-scoped background color. A Frame is single-use:
// once enqueued (Freeze called) it rejects further mutation.
type Frame struct {
	Target     layer.LayerHandle
	Background color.RGBA

	Commands []VisualCommand
	Effects  []CanvasEffect

	// Timestamp and Deadline are set by the enqueuing Canvas
	// (Timestamp = now(), no deadline) before handoff to the frame
	// sink; animations may set a tick deadline via the LayerAnimator
	// path instead of going through Canvas directly.
	Timestamp time.Time
	Deadline  *time.Time

	frozen bool
}

// newFrame returns a fresh Frame targeting the given layer, with a
// fully transparent background, matching the spec's "Background color
// is frame-scoped and defaults to fully transparent."
func newFrame(target layer.LayerHandle) *Frame {
	return &Frame{Target: target, Background: TransparentColor}
}

// IsNoOpTransparent reports whether f has zero commands, zero effects,
// and a fully transparent background — the condition under which the
// compositor must skip the frame without wiping prior content (§4.2,
// §4.5, §8 invariant 4).
func (f *Frame) IsNoOpTransparent() bool {
	return len(f.Commands) == 0 && len(f.Effects) == 0 && IsFullyTransparent(f.Background)
}

// Freeze marks f immutable; subsequent appendCommand/appendEffect
// calls on an already-frozen frame are no-ops (defensive against a
// Canvas continuing to hold a stale reference after SendFrame).
func (f *Frame) Freeze() { f.frozen = true }

func (f *Frame) appendCommand(c VisualCommand) {
	if f.frozen {
		return
	}
	f.Commands = append(f.Commands, c)
}

func (f *Frame) appendEffect(e CanvasEffect) {
	if f.frozen {
		return
	}
	f.Effects = append(f.Effects, e)
}
