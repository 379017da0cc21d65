// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/math32"
)

// RenderTargetContext is the per-surface GPU state described in spec
// §4.5: a sanitized logical rect, a clamped render scale and backing
// dimensions, and (for the WebGPU-backed implementation) the
// attachment textures and tessellation context those dimensions size.
// Native/WebGPU resources live behind the opaque `native` field so
// MockBackend can share this same bookkeeping type.
type RenderTargetContext struct {
	mu sync.Mutex

	settings config.Settings
	group    singleflight.Group

	vt VisualTreeHandle

	logicalRect math32.Rect
	hasStable   bool
	renderScale float32
	backingW    int
	backingH    int
	pendingFx   int // queued-effect count; not read or written by this package
	transform   math32.Matrix4
	native      any // backend-specific GPU resource bundle
}

// newRenderTargetContext returns a context with the given initial
// (already-sanitized) rect and settings.
func newRenderTargetContext(vt VisualTreeHandle, rect math32.Rect, settings config.Settings) *RenderTargetContext {
	ctx := &RenderTargetContext{vt: vt, settings: settings}
	ctx.logicalRect = rect
	ctx.hasStable = true
	ctx.renderScale = settings.RenderScaleFloor
	ctx.transform = math32.Identity4()
	ctx.recomputeBackingLocked()
	return ctx
}

// SetTransform stores the composed layer-effect transform on the
// context, returning the previous value.
func (c *RenderTargetContext) SetTransform(m math32.Matrix4) math32.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.transform
	c.transform = m
	return prev
}

// Transform returns the context's current composed transform.
func (c *RenderTargetContext) Transform() math32.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform
}

// LogicalRect returns the context's current sanitized logical rect.
func (c *RenderTargetContext) LogicalRect() math32.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logicalRect
}

// BackingSize returns the clamped backing texture width/height.
func (c *RenderTargetContext) BackingSize() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backingW, c.backingH
}

func (c *RenderTargetContext) recomputeBackingLocked() {
	clamp := c.settings.BackingDimensionClamp
	w := clampInt(round32(c.logicalRect.W*c.renderScale), 1, clamp)
	h := clampInt(round32(c.logicalRect.H*c.renderScale), 1, clamp)
	c.backingW, c.backingH = w, h
}

func round32(f float32) int {
	return int(math32.Round(f))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sanitize implements spec §4.5's resize sanitizer: non-finite
// coordinates fall back to the last stable rect; w/h <= 0 become 1;
// and a rect with extreme aspect ratio or a pathological max/min-dim
// pairing is considered suspicious and also falls back, if a stable
// rect exists.
func (c *RenderTargetContext) sanitize(rect math32.Rect) math32.Rect {
	if !rect.IsFinite() {
		if c.hasStable {
			return c.logicalRect
		}
		rect = math32.NewRect(0, 0, 1, 1)
	}
	if rect.W <= 0 {
		rect.W = 1
	}
	if rect.H <= 0 {
		rect.H = 1
	}

	maxDim, minDim := rect.MaxMinDim()
	suspicious := rect.AspectExtreme(c.settings.SuspiciousAspectRatio) ||
		(maxDim >= float32(c.settings.BackingDimensionClamp)*c.settings.SuspiciousMaxDimFraction && minDim <= c.settings.SuspiciousMinDimFloor)
	if suspicious && c.hasStable {
		return c.logicalRect
	}
	return rect
}

// resizeResult is the singleflight payload: whether the backing
// dimensions actually changed (and therefore whether resources must
// rebuild).
type resizeResult struct {
	rect    math32.Rect
	changed bool
	oldW    int
	oldH    int
}

// SetSize implements setRenderTargetSize: sanitize, recompute backing
// dimensions, and report whether resources need rebuilding. Concurrent
// calls carrying the same raw rect collapse into a single
// recomputation via singleflight (invariant 9's idempotent-resize
// guarantee).
func (c *RenderTargetContext) SetSize(rect math32.Rect) (changed bool, sanitized math32.Rect) {
	key := rectKey(rect)
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		clean := c.sanitize(rect)
		oldW, oldH := c.backingW, c.backingH

		c.logicalRect = clean
		c.hasStable = true
		c.recomputeBackingLocked()

		return resizeResult{
			rect:    clean,
			changed: c.backingW != oldW || c.backingH != oldH,
			oldW:    oldW,
			oldH:    oldH,
		}, nil
	})
	r := v.(resizeResult)
	return r.changed, r.rect
}

func rectKey(r math32.Rect) string {
	return fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.W, r.H)
}
