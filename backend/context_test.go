// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/math32"
)

func nan32() float32 { return float32(math.NaN()) }

func newTestContext() *RenderTargetContext {
	return newRenderTargetContext(1, math32.NewRect(0, 0, 100, 100), config.Default())
}

func TestSetSizeClampsBackingDimensions(t *testing.T) {
	ctx := newTestContext()
	changed, clean := ctx.SetSize(math32.NewRect(0, 0, 1e9, 1e9))
	require.True(t, changed)
	assert.Equal(t, float32(1e9), clean.W)

	w, h := ctx.BackingSize()
	assert.Equal(t, config.Default().BackingDimensionClamp, w)
	assert.Equal(t, config.Default().BackingDimensionClamp, h)
}

func TestSetSizeClampsToAtLeastOne(t *testing.T) {
	ctx := newTestContext()
	ctx.SetSize(math32.NewRect(0, 0, 0, 0))

	w, h := ctx.BackingSize()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestSetSizeNonFiniteFallsBackToLastStable(t *testing.T) {
	ctx := newTestContext()
	_, stable := ctx.SetSize(math32.NewRect(0, 0, 200, 150))

	_, clean := ctx.SetSize(math32.NewRect(0, nan32(), 10, 10))
	assert.Equal(t, stable, clean)
}

func TestSetSizeSuspiciousAspectRatioFallsBack(t *testing.T) {
	ctx := newTestContext()
	_, stable := ctx.SetSize(math32.NewRect(0, 0, 400, 300))

	_, clean := ctx.SetSize(math32.NewRect(0, 0, 100000, 1))
	assert.Equal(t, stable, clean)
}

func TestSetSizeSuspiciousMaxMinPairingFallsBack(t *testing.T) {
	ctx := newTestContext()
	_, stable := ctx.SetSize(math32.NewRect(0, 0, 400, 300))

	settings := config.Default()
	huge := float32(settings.BackingDimensionClamp) * settings.SuspiciousMaxDimFraction
	_, clean := ctx.SetSize(math32.NewRect(0, 0, huge+1, settings.SuspiciousMinDimFloor-1))
	assert.Equal(t, stable, clean)
}

func TestSetSizeWithoutStableRectUsesFallbackRect(t *testing.T) {
	ctx := &RenderTargetContext{settings: config.Default()}
	_, clean := ctx.SetSize(math32.NewRect(0, nan32(), 10, 10))
	assert.Equal(t, math32.NewRect(0, 0, 1, 1), clean)
}

// TestSetSizeConcurrentIdenticalCallsCollapse covers invariant 9:
// concurrent calls carrying the same raw rect must singleflight into
// one recomputation rather than racing.
func TestSetSizeConcurrentIdenticalCallsCollapse(t *testing.T) {
	ctx := newTestContext()
	rect := math32.NewRect(0, 0, 640, 480)

	const n = 32
	var wg sync.WaitGroup
	results := make([]math32.Rect, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, clean := ctx.SetSize(rect)
			results[i] = clean
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
	w, h := ctx.BackingSize()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestSetSizeNoChangeWhenBackingDimensionsSame(t *testing.T) {
	ctx := newTestContext()
	changed, _ := ctx.SetSize(math32.NewRect(5, 5, 100, 100))
	assert.False(t, changed)
}

func TestSetTransformRoundTrips(t *testing.T) {
	ctx := newTestContext()
	m := math32.Translate3D(math32.Vec3(1, 2, 3))
	prev := ctx.SetTransform(m)
	assert.Equal(t, math32.Identity4(), prev)
	assert.Equal(t, m, ctx.Transform())
}
