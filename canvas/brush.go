// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package canvas implements the paint-intent capture model: a Canvas
// bound to one Layer accumulates VisualCommands and CanvasEffects into
// a Frame, which is single-use and immutable once enqueued.
package canvas

import "image/color"

// BrushKind tags the variant carried by a Brush.
type BrushKind int

const (
	BrushSolid BrushKind = iota
	BrushLinearGradient
	BrushRadialGradient
	BrushImage
)

// GradientStop is one color stop in a linear/radial gradient brush.
type GradientStop struct {
	Offset float32 // [0,1]
	Color  color.RGBA
}

// Brush is the tagged union of fill styles a VisualCommand can carry.
type Brush struct {
	Kind BrushKind

	// BrushSolid
	Color color.RGBA

	// BrushLinearGradient / BrushRadialGradient
	Stops  []GradientStop
	Angle  float32 // radians, linear gradient direction
	Center [2]float32
	Radius float32

	// BrushImage
	Texture TextureRef
}

// SolidBrush constructs a solid-color Brush.
func SolidBrush(c color.RGBA) Brush { return Brush{Kind: BrushSolid, Color: c} }

// TransparentColor is fully-transparent black, the default Frame
// background and the sentinel checked by the no-op transparent frame
// policy.
var TransparentColor = color.RGBA{0, 0, 0, 0}

// IsFullyTransparent reports whether c has zero alpha.
func IsFullyTransparent(c color.RGBA) bool { return c.A == 0 }

// Border is the optional stroke carried by geometry VisualCommands.
type Border struct {
	Width  float32
	Brush  Brush
	Radius [4]float32 // per-corner radius: top-left, top-right, bottom-right, bottom-left
}

// TextureRef is an opaque reference to a GPU texture owned by the
// backend (or, before the backend ingests it, by an external producer
// such as an image decoder or the FontEngine). TextureFence, when
// non-nil, is closed by the producer once the texture's contents are
// safe to sample, letting the backend coordinate producer/consumer GPU
// ordering for Bitmap commands.
type TextureRef struct {
	Handle uint64
	Fence  <-chan struct{}
}

// Signaled reports whether the fence (if any) has already fired.
func (t TextureRef) Signaled() bool {
	if t.Fence == nil {
		return true
	}
	select {
	case <-t.Fence:
		return true
	default:
		return false
	}
}
