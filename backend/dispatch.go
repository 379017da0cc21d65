// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"sync"

	"github.com/omegawtk/compositor/base/errors"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/proxy"
)

// targetBinding is what CommandDispatcher needs to resolve a
// CompositorCommand's layer handles back to the LayerTree that owns
// them, and to the native surface a never-before-seen target should
// bind to.
type targetBinding struct {
	native NativeSurface
	tree   *layer.LayerTree
}

// CommandDispatcher implements queue.Dispatcher (structurally — this
// package does not import queue, to keep backend dependency-free of
// scheduling concerns) by translating each CompositorCommand variant
// into RenderTargetStore/Backend calls.
type CommandDispatcher struct {
	mu       sync.Mutex
	store    *RenderTargetStore
	backend  Backend
	bindings map[proxy.RenderTargetHandle]targetBinding
}

// NewCommandDispatcher returns a dispatcher driving store/backend.
func NewCommandDispatcher(store *RenderTargetStore, backend Backend) *CommandDispatcher {
	return &CommandDispatcher{
		store:    store,
		backend:  backend,
		bindings: make(map[proxy.RenderTargetHandle]targetBinding),
	}
}

// BindTarget registers the native surface and LayerTree backing
// target, so Dispatch can resolve that target's future commands. Must
// be called before any command referencing target is submitted.
func (d *CommandDispatcher) BindTarget(target proxy.RenderTargetHandle, native NativeSurface, tree *layer.LayerTree) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bindings[target] = targetBinding{native: native, tree: tree}
}

func (d *CommandDispatcher) binding(target proxy.RenderTargetHandle) (targetBinding, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bindings[target]
	return b, ok
}

// Dispatch executes cmd (or, for a Packet, every inner command in
// order) and returns the aggregate status: Ok if every inner command
// succeeded, otherwise the first failure's status/reason.
func (d *CommandDispatcher) Dispatch(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason) {
	if cmd.Kind == proxy.KindPacket {
		for _, inner := range cmd.Inner {
			status, reason := d.dispatchOne(inner)
			inner.Handle.Resolve(status, reason)
			if status != proxy.StatusOk {
				return status, reason
			}
		}
		return proxy.StatusOk, proxy.ReasonNone
	}
	return d.dispatchOne(cmd)
}

func (d *CommandDispatcher) dispatchOne(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason) {
	switch cmd.Kind {
	case proxy.KindRender:
		return d.dispatchRender(cmd)
	case proxy.KindLayerResize:
		return d.dispatchLayerResize(cmd)
	case proxy.KindLayerEffect:
		return d.dispatchLayerEffect(cmd)
	case proxy.KindViewResize:
		return d.dispatchViewResize(cmd)
	default:
		return proxy.StatusFailed, proxy.ReasonSubmissionFailed
	}
}

func (d *CommandDispatcher) dispatchRender(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason) {
	if cmd.Frame == nil {
		return proxy.StatusFailed, proxy.ReasonSubmissionFailed
	}
	if cmd.Frame.IsNoOpTransparent() {
		// §4.5 "No-op frame policy": never clear/draw/present; resolve
		// Ok without touching the backend at all.
		return proxy.StatusOk, proxy.ReasonNoOpTransparent
	}

	ctx, err := d.resolveContext(cmd.Frame.Target)
	if err != nil {
		return proxy.StatusDelayed, proxy.ReasonMissingSurface
	}

	dropped, err := d.backend.Dispatch(ctx, cmd.Frame)
	if err != nil {
		errors.Log(err)
		return proxy.StatusFailed, proxy.ReasonBackendRebuildFailed
	}
	if dropped {
		return proxy.StatusOk, proxy.ReasonNoOpTransparent
	}
	return proxy.StatusOk, proxy.ReasonNone
}

func (d *CommandDispatcher) dispatchLayerResize(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason) {
	ctx, err := d.resolveContext(cmd.ResizeTarget)
	if err != nil {
		return proxy.StatusDelayed, proxy.ReasonMissingSurface
	}
	if !cmd.ResizeRect.IsFinite() || !cmd.ResizeRect.Positive() {
		return proxy.StatusFailed, proxy.ReasonInvalidGeometry
	}
	if err := d.backend.Resize(ctx, cmd.ResizeRect); err != nil {
		errors.Log(err)
		return proxy.StatusFailed, proxy.ReasonBackendRebuildFailed
	}
	return proxy.StatusOk, proxy.ReasonNone
}

func (d *CommandDispatcher) dispatchLayerEffect(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason) {
	ctx, err := d.resolveContext(cmd.Effect.Target)
	if err != nil {
		return proxy.StatusDelayed, proxy.ReasonMissingSurface
	}
	if err := d.backend.ApplyLayerEffect(ctx, cmd.Effect.Shadow, cmd.Effect.Transform); err != nil {
		errors.Log(err)
		return proxy.StatusFailed, proxy.ReasonBackendRebuildFailed
	}
	return proxy.StatusOk, proxy.ReasonNone
}

func (d *CommandDispatcher) dispatchViewResize(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason) {
	b, ok := d.binding(cmd.RenderTarget)
	if !ok {
		return proxy.StatusDelayed, proxy.ReasonMissingSurface
	}
	entry, err := d.store.EnsureTarget(cmd.RenderTarget, b.native, cmd.ViewResizeRect)
	if err != nil {
		errors.Log(err)
		return proxy.StatusFailed, proxy.ReasonBackendRebuildFailed
	}
	for _, v := range entry.byLayer {
		if v.isRoot {
			v.context.SetSize(cmd.ViewResizeRect)
		}
	}
	return proxy.StatusOk, proxy.ReasonNone
}

// resolveContext resolves the RenderTargetContext backing a Layer,
// looking up the owning target's binding to find its LayerTree and
// native surface.
func (d *CommandDispatcher) resolveContext(l layer.LayerHandle) (*RenderTargetContext, error) {
	for target, b := range d.snapshotBindings() {
		if _, err := b.tree.Limb(l); err == nil {
			return d.store.EnsureLayerContext(target, b.native, b.tree, l)
		}
	}
	return nil, ErrUnknownLayer
}

func (d *CommandDispatcher) snapshotBindings() map[proxy.RenderTargetHandle]targetBinding {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[proxy.RenderTargetHandle]targetBinding, len(d.bindings))
	for k, v := range d.bindings {
		out[k] = v
	}
	return out
}
