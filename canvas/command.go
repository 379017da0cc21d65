// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canvas

import "github.com/omegawtk/compositor/math32"

// VisualCommandKind tags the variant carried by a VisualCommand.
type VisualCommandKind int

const (
	CommandRect VisualCommandKind = iota
	CommandRoundedRect
	CommandEllipse
	CommandVectorPath
	CommandBitmap
	CommandText
)

// PathSegmentKind tags one segment of a VectorPath command.
type PathSegmentKind int

const (
	PathMoveTo PathSegmentKind = iota
	PathLineTo
	PathQuadTo
	PathCubicTo
	PathClose
)

// PathSegment is one instruction in a VectorPath's segment list.
type PathSegment struct {
	Kind      PathSegmentKind
	Points    [3]math32.Vector2 // meaning depends on Kind
}

// VisualCommand is the tagged union of paint operations a Frame
// carries, each with geometry, a brush, and an optional border.
type VisualCommand struct {
	Kind VisualCommandKind

	Rect math32.Rect // Rect, RoundedRect, Ellipse bounds; Bitmap/Text placement rect
	CornerRadius float32 // RoundedRect only

	Path []PathSegment // VectorPath only

	Brush  Brush
	Border *Border // nil if no stroke

	// Bitmap / Text
	Texture TextureRef
	Glyphs  []GlyphRun // populated by drawText via FontEngine
}

// GlyphRun is one shaped, positioned run of glyphs produced by a
// FontEngine. The texture it was rasterized into is carried on the
// VisualCommand's Texture field, not on the run.
type GlyphRun struct {
	GlyphIDs []uint32
	Advances []float32
	Offsets  []math32.Vector2
}

// CanvasEffectKind tags the variant carried by a CanvasEffect.
type CanvasEffectKind int

const (
	EffectGaussianBlur CanvasEffectKind = iota
	EffectDirectionalBlur
)

// CanvasEffect is appended post-geometry and applied, in order, by the
// backend's effect pass.
type CanvasEffect struct {
	Kind CanvasEffectKind

	// EffectGaussianBlur
	Radius float32

	// EffectDirectionalBlur
	Angle    float32
	Distance float32
}
