// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compositor wires the layer tree, canvas/frame model, client
// proxies, the scheduler, the backend render-target store, the
// animation runtime, and the resize coordinator into the single
// top-level Compositor a host embeds.
package compositor

import (
	"sync"

	"github.com/omegawtk/compositor/anim"
	"github.com/omegawtk/compositor/backend"
	"github.com/omegawtk/compositor/base/logx"
	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/proxy"
	"github.com/omegawtk/compositor/queue"
	"github.com/omegawtk/compositor/resize"
)

// PaintReason and its constants are re-exported from resize so a host
// only needs to import compositor for the full Widget contract.
type PaintReason = resize.PaintReason

const (
	ReasonInitial      = resize.ReasonInitial
	ReasonStateChanged = resize.ReasonStateChanged
	ReasonThemeChanged = resize.ReasonThemeChanged
	ReasonResize       = resize.ReasonResize
)

// PaintMode selects whether a paint is queued through the scheduler
// (Deferred) or expected to apply synchronously (Immediate), mirroring
// the Widget.invalidate/invalidateNow split.
type PaintMode int

const (
	PaintDeferred PaintMode = iota
	PaintImmediate
)

// PaintOptions bundles the reason and mode a Widget's paint request
// carries.
type PaintOptions struct {
	Reason PaintReason
	Mode   PaintMode
}

// PaintContext is what a Widget's Paint method draws into: a Canvas
// already bound to the widget's Layer.
type PaintContext struct {
	Canvas *canvas.Canvas
	Reason PaintReason
}

// Widget is the external contract a host tree node implements to
// participate in compositor painting. Paint draws into ctx.Canvas and
// calls ctx.Canvas.SendFrame itself; it also satisfies
// resize.Repainter via widgetRepainter.
type Widget interface {
	Proxy() *proxy.ClientProxy
	Layer() layer.LayerHandle
	Paint(ctx PaintContext)
}

// widgetRepainter adapts a Widget to resize.Repainter without
// widgets needing to implement Repaint(reason) themselves.
type widgetRepainter struct{ w Widget }

func (r widgetRepainter) Proxy() *proxy.ClientProxy { return r.w.Proxy() }

func (r widgetRepainter) Repaint(reason resize.PaintReason) {
	cv := canvas.New(r.w.Layer(), r.w.Proxy(), nil)
	r.w.Paint(PaintContext{Canvas: cv, Reason: reason})
}

// Compositor is the top-level object a host constructs once: it owns
// the scheduler's dispatch goroutine, the backend render-target
// store, and the resize coordinator, and hands out ClientProxy/
// LayerAnimator/ViewAnimator/ResizeSession instances scoped to each
// render target a host attaches.
type Compositor struct {
	Settings config.Settings

	mu      sync.Mutex
	backend backend.Backend
	store   *backend.RenderTargetStore
	dispatcher *backend.CommandDispatcher
	scheduler  *queue.Scheduler
	resize     *resize.ResizeCoordinator

	proxies map[proxy.RenderTargetHandle]*proxy.ClientProxy
}

// New constructs a Compositor backed by b (backend.NewMockBackend for
// tests, backend.NewWebGPUBackend for production) with settings
// governing the sanitizer and scheduler behavior.
func New(b backend.Backend, settings config.Settings) *Compositor {
	store := backend.NewRenderTargetStore(b, settings)
	dispatcher := backend.NewCommandDispatcher(store, b)

	var executor queue.MainThreadExecutor = queue.InlineExecutor{}
	if settings.MainThreadHopEnabled {
		executor = queue.NewSerialExecutor()
	}
	scheduler := queue.NewScheduler(executor, dispatcher)

	return &Compositor{
		Settings:   settings,
		backend:    b,
		store:      store,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		resize:     resize.NewResizeCoordinator(),
		proxies:    make(map[proxy.RenderTargetHandle]*proxy.ClientProxy),
	}
}

// AttachTarget binds a new render target's native surface and layer
// tree to the compositor and returns the ClientProxy a widget tree on
// that target submits commands through.
func (c *Compositor) AttachTarget(native backend.NativeSurface, tree *layer.LayerTree) *proxy.ClientProxy {
	target := proxy.NewRenderTargetHandle()
	c.dispatcher.BindTarget(target, native, tree)

	p := proxy.NewClientProxy(target)
	p.SetFrontend(c.scheduler)

	c.mu.Lock()
	c.proxies[target] = p
	c.mu.Unlock()

	logx.PrintfDebug("compositor: attached target %v", target)
	return p
}

// NewLayerAnimator returns a LayerAnimator bound to p and target.
func (c *Compositor) NewLayerAnimator(p *proxy.ClientProxy, target layer.LayerHandle) *anim.LayerAnimator {
	return anim.NewLayerAnimator(p, target)
}

// NewViewAnimator returns a ViewAnimator bound to p/target, holding
// the given LayerAnimators (see ViewAnimator.Layers).
func (c *Compositor) NewViewAnimator(p *proxy.ClientProxy, target proxy.RenderTargetHandle, layers ...*anim.LayerAnimator) *anim.ViewAnimator {
	return anim.NewViewAnimator(p, target, layers...)
}

// BeginResize starts a resize session over widgets, suspending their
// paints unless animatedTree is true (at least one running animation
// in the sub-tree at session-begin).
func (c *Compositor) BeginResize(animatedTree bool, widgets []Widget) *resize.ResizeSession {
	members := make([]resize.Repainter, len(widgets))
	for i, w := range widgets {
		members[i] = widgetRepainter{w: w}
	}
	return c.resize.Begin(animatedTree, members)
}

// EndResize completes session id, issuing the authoritative flush per
// resize.ResizeSession.End's contract.
func (c *Compositor) EndResize(id resize.SessionID) { c.resize.End(id) }

// Shutdown drains the scheduler and releases every render target's
// backend resources.
func (c *Compositor) Shutdown() {
	c.scheduler.Shutdown()
	c.store.Release()
}
