// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package anim implements the compositor's animation runtime: curves,
// generic keyframe tracks, the shared AnimationHandle state block, the
// WallClock/PresentedClock/Hybrid tick models, and the LayerAnimator/
// ViewAnimator contracts that turn a sampled track into queued
// CompositorCommands.
package anim

import "github.com/omegawtk/compositor/math32"

// CurveKind tags an AnimationCurve's variant.
type CurveKind int

const (
	CurveLinear CurveKind = iota
	CurveQuadraticBezier
	CurveCubicBezier
)

// AnimationCurve is a 1x1 normalized easing curve: Linear runs from
// (0,StartH) to (1,EndH); QuadraticBezier and CubicBezier add one or
// two control points respectively.
type AnimationCurve struct {
	Kind CurveKind

	StartH, EndH float32
	A, B         math32.Vector2
}

// LinearCurve returns the identity-ish Linear curve from startH to endH.
func LinearCurve(startH, endH float32) AnimationCurve {
	return AnimationCurve{Kind: CurveLinear, StartH: startH, EndH: endH}
}

// Linear is the no-op-shaped Linear preset: sample(t) == t.
func Linear() AnimationCurve { return LinearCurve(0, 1) }

// QuadraticBezier returns a single-control-point bezier curve.
func QuadraticBezier(a math32.Vector2) AnimationCurve {
	return AnimationCurve{Kind: CurveQuadraticBezier, EndH: 1, A: a}
}

// CubicBezier returns a two-control-point bezier curve over [startH, endH].
func CubicBezier(a, b math32.Vector2, startH, endH float32) AnimationCurve {
	return AnimationCurve{Kind: CurveCubicBezier, StartH: startH, EndH: endH, A: a, B: b}
}

// EaseIn is the CSS ease-in preset: cubic-bezier(0.42,0,1,1).
func EaseIn() AnimationCurve {
	return CubicBezier(math32.Vec2(0.42, 0), math32.Vec2(1, 1), 0, 1)
}

// EaseOut is the CSS ease-out preset: cubic-bezier(0,0,0.58,1).
func EaseOut() AnimationCurve {
	return CubicBezier(math32.Vec2(0, 0), math32.Vec2(0.58, 1), 0, 1)
}

// EaseInOut is the CSS ease-in-out preset: cubic-bezier(0.42,0,0.58,1).
func EaseInOut() AnimationCurve {
	return CubicBezier(math32.Vec2(0.42, 0), math32.Vec2(0.58, 1), 0, 1)
}

// Sample evaluates the curve at t (clamped to [0,1] both on input and
// output). Bezier kinds use t directly as the curve parameter and read
// only the Y components of A and B; the X components are not used, so
// EaseIn, EaseOut and EaseInOut (all with control Y values 0 and 1)
// sample identically.
func (c AnimationCurve) Sample(t float32) float32 {
	t = math32.Clamp01(t)
	switch c.Kind {
	case CurveLinear:
		return math32.Clamp01(math32.Lerp(c.StartH, c.EndH, t))
	case CurveQuadraticBezier:
		return math32.Clamp01(quadraticBezier1D(c.A.Y, t))
	case CurveCubicBezier:
		return math32.Clamp01(cubicBezier1D(c.StartH, c.A.Y, c.B.Y, c.EndH, t))
	default:
		return t
	}
}

func quadraticBezier1D(control, t float32) float32 {
	u := 1 - t
	return u*u*0 + 2*u*t*control + t*t*1
}

func cubicBezier1D(p0, p1, p2, p3, t float32) float32 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}
