// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canvas

import (
	"image/color"

	"github.com/omegawtk/compositor/math32"
)

// Font describes the typeface/size/weight requested of a FontEngine.
type Font struct {
	Family string
	Size   float32
	Weight int
}

// TextAlign is the horizontal alignment requested of a line/wrap
// layout.
type TextAlign int

const (
	AlignStart TextAlign = iota
	AlignCenter
	AlignEnd
)

// TextLayout is the line/wrap request accompanying a drawText call;
// per §1 non-goals this is the extent of text layout this package
// performs — no general text-layout engine.
type TextLayout struct {
	WrapWidth float32
	MaxLines  int
	Align     TextAlign
}

// FontEngine is the external contract consumed by Canvas.drawText: it
// shapes text into a glyph run and rasterizes that run into a backing
// GPU texture (with an optional fence), which drawText wraps in an
// opaque Bitmap VisualCommand. The compositor never inspects glyph
// contents itself; it is an opaque producer per §1/§6.
type FontEngine interface {
	Shape(text string, font Font, rect math32.Rect, layout TextLayout) (GlyphRun, TextureRef, error)
}

// drawText shapes text via fe and appends a Bitmap command referencing
// the resulting texture and fence, with the glyph run attached.
func (c *Canvas) drawText(text string, font Font, rect math32.Rect, col color.RGBA, layout TextLayout) error {
	if c.fontEngine == nil {
		return ErrNoFontEngine
	}
	glyphs, tex, err := c.fontEngine.Shape(text, font, rect, layout)
	if err != nil {
		return err
	}
	c.frame.appendCommand(VisualCommand{
		Kind:    CommandBitmap,
		Rect:    rect,
		Brush:   SolidBrush(col),
		Texture: tex,
		Glyphs:  []GlyphRun{glyphs},
	})
	return nil
}

// DrawText is the public entry point for Canvas.drawText.
func (c *Canvas) DrawText(text string, font Font, rect math32.Rect, col color.RGBA, layout TextLayout) error {
	return c.drawText(text, font, rect, col, layout)
}
