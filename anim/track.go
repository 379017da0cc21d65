// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
)

// epsilon guards against a zero-width bracket when two keyframes share
// an offset.
const epsilon = 1e-6

// Keyframe is one stop on a KeyframeTrack: a normalized offset, a
// value, and the easing curve applied between this key and the next
// one (nil means linear/identity).
type Keyframe[T any] struct {
	Offset       float32
	Value        T
	EasingToNext *AnimationCurve
}

// LerpFunc interpolates between a and b at t for a track's value type.
// Tracks take this as a constructor argument rather than requiring T
// to implement an interface method, since float32 (a track value type
// named directly in the spec) cannot carry methods.
type LerpFunc[T any] func(a, b T, t float32) T

// KeyframeTrack is a sorted, offset-clamped list of Keyframe[T], sampled
// per spec §4.6: empty -> zero value, one key -> that key, t outside
// the key range clamps to the nearest end, otherwise the bracketing
// pair is eased and lerped.
type KeyframeTrack[T any] struct {
	keys []Keyframe[T]
	lerp LerpFunc[T]
}

// NewKeyframeTrack builds a track from keys (copied and sorted by
// offset, offsets clamped to [0,1]) using lerp for in-between sampling.
func NewKeyframeTrack[T any](keys []Keyframe[T], lerp LerpFunc[T]) *KeyframeTrack[T] {
	sorted := append([]Keyframe[T](nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := range sorted {
		sorted[i].Offset = math32.Clamp01(sorted[i].Offset)
	}
	return &KeyframeTrack[T]{keys: sorted, lerp: lerp}
}

// Empty reports whether the track has no keyframes.
func (k *KeyframeTrack[T]) Empty() bool { return len(k.keys) == 0 }

// Sample evaluates the track at normalized time t.
func (k *KeyframeTrack[T]) Sample(t float32) T {
	var zero T
	if len(k.keys) == 0 {
		return zero
	}
	if len(k.keys) == 1 {
		return k.keys[0].Value
	}

	t = math32.Clamp01(t)
	first, last := k.keys[0], k.keys[len(k.keys)-1]
	if t <= first.Offset {
		return first.Value
	}
	if t >= last.Offset {
		return last.Value
	}

	for i := 1; i < len(k.keys); i++ {
		prev, next := k.keys[i-1], k.keys[i]
		if t > next.Offset {
			continue
		}
		span := next.Offset - prev.Offset
		if span < epsilon {
			span = epsilon
		}
		local := math32.Clamp01((t - prev.Offset) / span)
		eased := local
		if prev.EasingToNext != nil {
			eased = prev.EasingToNext.Sample(local)
		}
		return k.lerp(prev.Value, next.Value, math32.Clamp01(eased))
	}
	return last.Value
}

// lerpSlice computes a + (b-a)*t elementwise via gonum/floats, the
// shared componentwise-lerp primitive backing Rect/TransformEffect/
// ShadowEffect keyframe interpolation.
func lerpSlice(a, b []float64, t float32) []float64 {
	diff := append([]float64(nil), b...)
	floats.Sub(diff, a)
	out := append([]float64(nil), a...)
	floats.AddScaled(out, float64(t), diff)
	return out
}

// LerpFloat32 is the LerpFunc for plain float32 tracks (opacity).
func LerpFloat32(a, b float32, t float32) float32 { return math32.Lerp(a, b, t) }

// LerpRect is the LerpFunc for math32.Rect tracks (position/size).
func LerpRect(a, b math32.Rect, t float32) math32.Rect {
	return math32.RectFromSlice(lerpSlice(a.Slice(), b.Slice(), t))
}

// LerpTransform is the LerpFunc for layer.TransformEffect tracks.
func LerpTransform(a, b layer.TransformEffect, t float32) layer.TransformEffect {
	return layer.TransformEffectFromSlice(lerpSlice(a.Slice(), b.Slice(), t))
}

// LerpShadow is the LerpFunc for layer.ShadowEffect tracks. Enabled is
// not a continuous quantity; it takes b's value once t >= 0.5 between
// the two keyframes being blended, and a's value before that.
func LerpShadow(a, b layer.ShadowEffect, t float32) layer.ShadowEffect {
	out := layer.ShadowEffectFromSlice(lerpSlice(a.Slice(), b.Slice(), t))
	if t >= 0.5 {
		out.Enabled = b.Enabled
	} else {
		out.Enabled = a.Enabled
	}
	return out
}
