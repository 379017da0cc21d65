// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compositor

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omegawtk/compositor/backend"
	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

type fakeWidget struct {
	proxy *proxy.ClientProxy
	layer layer.LayerHandle
}

func (w *fakeWidget) Proxy() *proxy.ClientProxy  { return w.proxy }
func (w *fakeWidget) Layer() layer.LayerHandle   { return w.layer }
func (w *fakeWidget) Paint(ctx PaintContext) {
	ctx.Canvas.SetBackground(color.RGBA{R: 255, A: 255})
	ctx.Canvas.DrawRect(math32.NewRect(0, 0, 10, 10), canvas.SolidBrush(color.RGBA{G: 255, A: 255}), nil)
	ctx.Canvas.SendFrame()
}

func newAttachedCompositor(t *testing.T) (*Compositor, *backend.MockBackend, *proxy.ClientProxy, layer.LayerHandle) {
	t.Helper()
	settings := config.Default()
	b := backend.NewMockBackend(settings)
	c := New(b, settings)

	tree := layer.New(math32.NewRect(0, 0, 200, 200))
	root, err := tree.RootLayer(tree.RootLimb())
	require.NoError(t, err)

	p := c.AttachTarget(nil, tree)
	return c, b, p, root
}

func TestAttachTargetBindsProxyToScheduler(t *testing.T) {
	c, _, p, _ := newAttachedCompositor(t)
	require.NotNil(t, p)
	assert.Equal(t, 1, len(c.proxies))
}

func TestWidgetPaintDispatchesThroughSchedulerToBackend(t *testing.T) {
	_, b, p, root := newAttachedCompositor(t)
	w := &fakeWidget{proxy: p, layer: root}

	p.BeginRecord()
	widgetRepainter{w: w}.Repaint(ReasonInitial)
	p.EndRecord()

	assert.Eventually(t, func() bool {
		return b.DrawCount > 0
	}, time.Second, 10*time.Millisecond)
}

func TestBeginEndResizeFlushesWidgetsThroughCompositor(t *testing.T) {
	c, b, p, root := newAttachedCompositor(t)
	w := &fakeWidget{proxy: p, layer: root}

	session := c.BeginResize(false, []Widget{w})
	c.EndResize(session.ID())

	assert.Eventually(t, func() bool {
		return b.DrawCount > 0
	}, time.Second, 10*time.Millisecond)
}

func TestShutdownReleasesStoreAndScheduler(t *testing.T) {
	c, _, _, _ := newAttachedCompositor(t)
	c.Shutdown()
}
