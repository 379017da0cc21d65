// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package math32 provides the float32 vector, matrix, and rect types
// used throughout the compositor's geometry and transform pipeline:
// layer rects and the 3D transform composition behind
// LayerEffect commands.
package math32

import cmath "github.com/chewxy/math32"

// Vector2 is a 2D point or direction.
type Vector2 struct {
	X, Y float32
}

func Vec2(x, y float32) Vector2 { return Vector2{x, y} }

func (a Vector2) Add(b Vector2) Vector2 { return Vector2{a.X + b.X, a.Y + b.Y} }
func (a Vector2) Sub(b Vector2) Vector2 { return Vector2{a.X - b.X, a.Y - b.Y} }
func (a Vector2) Scale(s float32) Vector2 { return Vector2{a.X * s, a.Y * s} }

// Lerp linearly interpolates between a and b at t.
func (a Vector2) Lerp(b Vector2, t float32) Vector2 {
	return Vector2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// Vector3 is a 3D point, direction, or (for rotation/scale triples)
// a bundle of three independent axis components.
type Vector3 struct {
	X, Y, Z float32
}

func Vec3(x, y, z float32) Vector3 { return Vector3{x, y, z} }

func (a Vector3) Add(b Vector3) Vector3   { return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vector3) Sub(b Vector3) Vector3   { return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vector3) Scale(s float32) Vector3 { return Vector3{a.X * s, a.Y * s, a.Z * s} }

func (a Vector3) Lerp(b Vector3, t float32) Vector3 {
	return Vector3{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t), Lerp(a.Z, b.Z, t)}
}

// Lerp linearly interpolates between a and b at t (not clamped; callers
// that need clamp01 semantics clamp t before calling).
func Lerp(a, b, t float32) float32 { return a + (b-a)*t }

// Clamp01 clamps v to the closed interval [0, 1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IsFinite reports whether v is neither NaN nor +/-Inf.
func IsFinite(v float32) bool {
	return !cmath.IsNaN(v) && !cmath.IsInf(v, 0)
}

func Sin(rad float32) float32 { return cmath.Sin(rad) }
func Cos(rad float32) float32 { return cmath.Cos(rad) }
func Sqrt(v float32) float32  { return cmath.Sqrt(v) }
func Abs(v float32) float32   { return cmath.Abs(v) }

func Round(v float32) float32 { return cmath.Round(v) }

func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return Max(lo, Min(v, hi))
}
