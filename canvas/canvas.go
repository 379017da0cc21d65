// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canvas

import (
	"errors"
	"image/color"
	"sync"
	"time"

	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
)

// ErrNoFontEngine is returned by DrawText when no FontEngine has been
// configured on the Canvas.
var ErrNoFontEngine = errors.New("canvas: no FontEngine configured")

// FrameSink receives a Canvas's completed Frame at SendFrame time. It
// is implemented by proxy.ClientProxy's QueueFrame method; defining
// the interface here (rather than importing the proxy package) keeps
// canvas free of a dependency on proxy.
type FrameSink interface {
	QueueFrame(f *Frame)
}

// Now is the frame-timestamp source, overridable in tests.
var Now = time.Now

// Canvas is bound to exactly one Layer and accumulates VisualCommands
// and CanvasEffects into an in-progress Frame. SendFrame atomically
// swaps in a fresh Frame and hands the old one to the FrameSink.
type Canvas struct {
	mu         sync.Mutex
	target     layer.LayerHandle
	sink       FrameSink
	fontEngine FontEngine
	frame      *Frame
}

// New returns a Canvas bound to target, delivering completed frames to
// sink. fontEngine may be nil if DrawText will never be called.
func New(target layer.LayerHandle, sink FrameSink, fontEngine FontEngine) *Canvas {
	return &Canvas{
		target:     target,
		sink:       sink,
		fontEngine: fontEngine,
		frame:      newFrame(target),
	}
}

// Target returns the Layer this Canvas is bound to.
func (c *Canvas) Target() layer.LayerHandle { return c.target }

// DrawRect appends a Rect VisualCommand.
func (c *Canvas) DrawRect(r math32.Rect, brush Brush, border *Border) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.appendCommand(VisualCommand{Kind: CommandRect, Rect: r, Brush: brush, Border: border})
}

// DrawRoundedRect appends a RoundedRect VisualCommand.
func (c *Canvas) DrawRoundedRect(r math32.Rect, radius float32, brush Brush, border *Border) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.appendCommand(VisualCommand{Kind: CommandRoundedRect, Rect: r, CornerRadius: radius, Brush: brush, Border: border})
}

// DrawEllipse appends an Ellipse VisualCommand.
func (c *Canvas) DrawEllipse(r math32.Rect, brush Brush, border *Border) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.appendCommand(VisualCommand{Kind: CommandEllipse, Rect: r, Brush: brush, Border: border})
}

// DrawPath appends a VectorPath VisualCommand.
func (c *Canvas) DrawPath(path []PathSegment, bounds math32.Rect, brush Brush, border *Border) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.appendCommand(VisualCommand{Kind: CommandVectorPath, Rect: bounds, Path: path, Brush: brush, Border: border})
}

// DrawImage appends a Bitmap VisualCommand referencing an
// already-decoded texture, optionally carrying a producer fence.
func (c *Canvas) DrawImage(tex TextureRef, rect math32.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.appendCommand(VisualCommand{Kind: CommandBitmap, Rect: rect, Texture: tex})
}

// DrawGPUTexture appends a Bitmap VisualCommand like DrawImage and
// also sets a solid brush of col; used when the caller already owns a
// GPU texture handle (e.g. a video decoder's output) rather than a
// CPU-side image.
func (c *Canvas) DrawGPUTexture(tex TextureRef, rect math32.Rect, col color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.appendCommand(VisualCommand{Kind: CommandBitmap, Rect: rect, Texture: tex, Brush: SolidBrush(col)})
}

// ApplyEffect appends a CanvasEffect to the current frame, to be
// applied, in order, after all geometry in the backend's effect pass.
func (c *Canvas) ApplyEffect(e CanvasEffect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.appendEffect(e)
}

// SetBackground sets the current frame's background color.
func (c *Canvas) SetBackground(col color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.Background = col
}

// SendFrame atomically replaces the in-progress frame with a fresh one
// and hands the old frame to the FrameSink with Timestamp=now() and no
// deadline.
func (c *Canvas) SendFrame() {
	c.mu.Lock()
	done := c.frame
	c.frame = newFrame(c.target)
	c.mu.Unlock()

	done.Timestamp = Now()
	done.Deadline = nil
	done.Freeze()
	if c.sink != nil {
		c.sink.QueueFrame(done)
	}
}
