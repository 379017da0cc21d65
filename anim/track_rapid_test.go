// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"testing"

	"pgregory.net/rapid"
)

// TestTrackSamplingIsBitForBitDeterministic covers invariant 8: an
// animation seeded with identical TimingOptions and identical tick
// clock produces identical keyframe-sampled values bit-for-bit. Here
// that reduces to: sampling the same track at the same offset twice,
// from two independently built tracks carrying identical keyframes,
// always yields the same float32 bits.
func TestTrackSamplingIsBitForBitDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "n")
		offsets := make([]float32, n)
		values := make([]float32, n)
		for i := 0; i < n; i++ {
			offsets[i] = float32(i) / float32(n)
			values[i] = float32(rapid.Float64Range(-1e4, 1e4).Draw(t, "value"))
		}

		build := func() *KeyframeTrack[float32] {
			keys := make([]Keyframe[float32], n)
			for i := 0; i < n; i++ {
				keys[i] = Keyframe[float32]{Offset: offsets[i], Value: values[i]}
			}
			return NewKeyframeTrack(keys, LerpFloat32)
		}

		trackA := build()
		trackB := build()

		samples := rapid.IntRange(1, 12).Draw(t, "samples")
		for i := 0; i < samples; i++ {
			tt := float32(rapid.Float64Range(0, 1).Draw(t, "t"))
			a := trackA.Sample(tt)
			b := trackB.Sample(tt)
			if a != b {
				t.Fatalf("sample at t=%v diverged: %v != %v", tt, a, b)
			}
			// Re-sampling the same track at the same offset must also
			// be stable across repeated calls.
			if again := trackA.Sample(tt); again != a {
				t.Fatalf("repeated sample at t=%v diverged: %v != %v", tt, again, a)
			}
		}
	})
}
