// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layer_test

import (
	"testing"

	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChildLayerIndependentBounds(t *testing.T) {
	tr := layer.New(math32.NewRect(0, 0, 800, 600))
	root, err := tr.RootLayer(tr.RootLimb())
	require.NoError(t, err)

	child, err := tr.NewChildLayer(root, math32.NewRect(10, 10, 100, 50))
	require.NoError(t, err)

	require.NoError(t, tr.ResizeLayer(root, math32.NewRect(0, 0, 1200, 900)))

	childBounds, err := tr.Bounds(child)
	require.NoError(t, err)
	assert.Equal(t, math32.NewRect(10, 10, 100, 50), childBounds, "resizing parent must not implicitly reshape children")
}

func TestResizeRejectsNonFiniteAndNonPositive(t *testing.T) {
	tr := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tr.RootLayer(tr.RootLimb())

	err := tr.ResizeLayer(root, math32.NewRect(0, 0, 0, 10))
	assert.ErrorIs(t, err, layer.ErrInvalidGeometry)

	nan := float32(0)
	nan = nan / nan
	err = tr.ResizeLayer(root, math32.NewRect(0, 0, nan, 10))
	assert.ErrorIs(t, err, layer.ErrInvalidGeometry)
}

func TestReparentAcrossTreesFails(t *testing.T) {
	a := layer.New(math32.NewRect(0, 0, 10, 10))
	b := layer.New(math32.NewRect(0, 0, 10, 10))

	rootA, _ := a.RootLayer(a.RootLimb())
	rootB, _ := b.RootLayer(b.RootLimb())

	limb, err := a.NewLimb(rootA, math32.NewRect(0, 0, 10, 10))
	require.NoError(t, err)

	err = a.Reparent(limb, rootB)
	assert.ErrorIs(t, err, layer.ErrInvalidParent)
}

type recordingObserver struct {
	rects    []math32.Rect
	visible  []bool
	detached bool
}

func (o *recordingObserver) OnRectChange(r math32.Rect)   { o.rects = append(o.rects, r) }
func (o *recordingObserver) OnVisibilityChange(v bool)    { o.visible = append(o.visible, v) }
func (o *recordingObserver) OnDetach()                    { o.detached = true }

func TestObserversNotifiedOnRectVisibilityDetach(t *testing.T) {
	tr := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tr.RootLayer(tr.RootLimb())
	child, _ := tr.NewChildLayer(root, math32.NewRect(0, 0, 10, 10))

	obs := &recordingObserver{}
	unsub, err := tr.AttachObserver(child, obs)
	require.NoError(t, err)

	require.NoError(t, tr.ResizeLayer(child, math32.NewRect(0, 0, 20, 20)))
	require.NoError(t, tr.SetVisible(child, false))
	require.NoError(t, tr.DetachLayer(child))

	assert.Equal(t, []math32.Rect{math32.NewRect(0, 0, 20, 20)}, obs.rects)
	assert.Equal(t, []bool{false}, obs.visible)
	assert.True(t, obs.detached)

	unsub()
}

func TestResizeSameRectIsNoOpForObservers(t *testing.T) {
	tr := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tr.RootLayer(tr.RootLimb())
	obs := &recordingObserver{}
	_, err := tr.AttachObserver(root, obs)
	require.NoError(t, err)

	require.NoError(t, tr.ResizeLayer(root, math32.NewRect(0, 0, 100, 100)))
	assert.Empty(t, obs.rects, "resizing to an identical rect should not notify observers")
}
