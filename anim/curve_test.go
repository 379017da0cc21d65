// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omegawtk/compositor/math32"
)

func TestLinearCurveSampleIsIdentity(t *testing.T) {
	c := Linear()
	assert.InDelta(t, 0, c.Sample(0), 1e-6)
	assert.InDelta(t, 0.5, c.Sample(0.5), 1e-6)
	assert.InDelta(t, 1, c.Sample(1), 1e-6)
}

func TestLinearCurveSampleClampsOutOfRangeT(t *testing.T) {
	c := Linear()
	assert.InDelta(t, 0, c.Sample(-1), 1e-6)
	assert.InDelta(t, 1, c.Sample(2), 1e-6)
}

func TestEaseCurvesEndpoints(t *testing.T) {
	for _, c := range []AnimationCurve{EaseIn(), EaseOut(), EaseInOut()} {
		assert.InDelta(t, 0, c.Sample(0), 1e-6)
		assert.InDelta(t, 1, c.Sample(1), 1e-6)
	}
}

func TestEaseInStartsSlowerThanLinear(t *testing.T) {
	c := EaseIn()
	assert.Less(t, c.Sample(0.1), float32(0.1))
}

func TestEaseOutEndsSlowerThanLinear(t *testing.T) {
	c := EaseOut()
	assert.Greater(t, c.Sample(0.9), float32(0.9))
}

func TestQuadraticBezierEndpoints(t *testing.T) {
	c := QuadraticBezier(math32.Vec2(0.5, 0.5))
	assert.InDelta(t, 0, c.Sample(0), 1e-6)
	assert.InDelta(t, 1, c.Sample(1), 1e-6)
}
