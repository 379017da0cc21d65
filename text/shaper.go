// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package text implements the default canvas.FontEngine, shaping text
// with go-text/typesetting and handing the shaped run to a Rasterizer
// for the backing texture that Canvas.DrawText wraps as an opaque
// Bitmap command. Face resolution (FaceSource) and rasterization
// (Rasterizer) are supplied by the caller; neither the compositor core
// nor this package parses font files or glyph outlines.
package text

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/math32"
)

// FaceSource resolves a canvas.Font request to a shaped font.Face. The
// compositor treats face/glyph-outline resolution as an external
// concern (font file parsing is out of scope); callers supply their
// own FaceSource, typically backed by a system font cache.
type FaceSource interface {
	Face(f canvas.Font) (*font.Face, error)
}

// Rasterizer turns a shaping.Output into a GPU texture handle (and
// optional completion fence). Like FaceSource, glyph rasterization is
// external — the compositor only ever consumes the resulting
// canvas.TextureRef.
type Rasterizer interface {
	Rasterize(out shaping.Output, rect math32.Rect) (canvas.TextureRef, error)
}

// Shaper is the default canvas.FontEngine implementation: it shapes
// with go-text/typesetting's HarfbuzzShaper and delegates
// rasterization to a Rasterizer.
type Shaper struct {
	mu     sync.Mutex
	hb     shaping.HarfbuzzShaper
	faces  FaceSource
	raster Rasterizer

	nextHandle atomic.Uint64
}

// NewShaper returns a Shaper resolving faces via faces and
// rasterizing via raster.
func NewShaper(faces FaceSource, raster Rasterizer) *Shaper {
	return &Shaper{faces: faces, raster: raster}
}

// Shape implements canvas.FontEngine.
func (s *Shaper) Shape(text string, f canvas.Font, rect math32.Rect, layout canvas.TextLayout) (canvas.GlyphRun, canvas.TextureRef, error) {
	face, err := s.faces.Face(f)
	if err != nil {
		return canvas.GlyphRun{}, canvas.TextureRef{}, fmt.Errorf("text: resolving face for %q: %w", f.Family, err)
	}

	runes := []rune(text)
	input := shaping.Input{
		Text:     runes,
		RunStart: 0,
		RunEnd:   len(runes),
		Direction: di.DirectionLTR,
		Face:     face,
		Size:     fixed.I(int(f.Size)),
		Script:   language.Latin,
		Language: language.NewLanguage("en"),
	}

	s.mu.Lock()
	out := s.hb.Shape(input)
	s.mu.Unlock()

	run := canvas.GlyphRun{
		GlyphIDs: make([]uint32, len(out.Glyphs)),
		Advances: make([]float32, len(out.Glyphs)),
		Offsets:  make([]math32.Vector2, len(out.Glyphs)),
	}
	var cursor float32
	for i, g := range out.Glyphs {
		run.GlyphIDs[i] = uint32(g.GlyphID)
		adv := float32(g.XAdvance) / 64
		run.Advances[i] = adv
		run.Offsets[i] = math32.Vec2(cursor+float32(g.XOffset)/64, float32(g.YOffset)/64)
		cursor += adv
	}

	tex, err := s.raster.Rasterize(out, rect)
	if err != nil {
		return canvas.GlyphRun{}, canvas.TextureRef{}, fmt.Errorf("text: rasterizing %q: %w", text, err)
	}
	return run, tex, nil
}
