// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

// Rect is an axis-aligned rectangle in a parent's coordinate space,
// the attribute type backing Layer.Bounds and RenderTargetContext's
// logicalRect.
type Rect struct {
	X, Y, W, H float32
}

func NewRect(x, y, w, h float32) Rect { return Rect{x, y, w, h} }

// IsFinite reports whether every component of r is finite.
func (r Rect) IsFinite() bool {
	return IsFinite(r.X) && IsFinite(r.Y) && IsFinite(r.W) && IsFinite(r.H)
}

// Positive reports whether both dimensions are greater than zero.
func (r Rect) Positive() bool { return r.W > 0 && r.H > 0 }

// Equal reports exact field equality, used for the resize-dedup
// invariant (setRect with the same r twice yields one backend resize).
func (r Rect) Equal(o Rect) bool {
	return r.X == o.X && r.Y == o.Y && r.W == o.W && r.H == o.H
}

// Lerp componentwise-interpolates between r and o at t.
func (r Rect) Lerp(o Rect, t float32) Rect {
	return Rect{
		X: Lerp(r.X, o.X, t),
		Y: Lerp(r.Y, o.Y, t),
		W: Lerp(r.W, o.W, t),
		H: Lerp(r.H, o.H, t),
	}
}

// AspectExtreme reports whether the rect's aspect ratio exceeds the
// given ratio (e.g. 256) in either direction, used by the resize
// sanitizer's "suspicious aspect ratio" check.
func (r Rect) AspectExtreme(ratio float32) bool {
	w, h := Abs(r.W), Abs(r.H)
	if w == 0 || h == 0 {
		return true
	}
	if w > h {
		return w/h > ratio
	}
	return h/w > ratio
}

// MaxMinDim returns the larger and smaller of W and H.
func (r Rect) MaxMinDim() (maxDim, minDim float32) {
	w, h := Abs(r.W), Abs(r.H)
	if w >= h {
		return w, h
	}
	return h, w
}

// Slice returns the rect as a 4-element float64 slice (X, Y, W, H),
// the representation KeyframeTrack's gonum-backed lerp operates on.
func (r Rect) Slice() []float64 {
	return []float64{float64(r.X), float64(r.Y), float64(r.W), float64(r.H)}
}

// RectFromSlice is the inverse of Rect.Slice.
func RectFromSlice(s []float64) Rect {
	return Rect{float32(s[0]), float32(s[1]), float32(s[2]), float32(s[3])}
}
