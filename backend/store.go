// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"sync"

	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

// VisualTreeHandle identifies one VisualTree within a RenderTargetStore.
type VisualTreeHandle int

// visualNode is a Visual's arena-resident bookkeeping: which layer it
// mirrors and its backend context.
type visualNode struct {
	layer   layer.LayerHandle
	isRoot  bool
	context *RenderTargetContext
}

// visualTreeEntry is the store's per-render-target record: the
// backend's native VisualTree plus the layer->context cache the spec
// calls `surfaceTargets`.
type visualTreeEntry struct {
	handle  VisualTreeHandle
	byLayer map[layer.LayerHandle]*visualNode
}

// RenderTargetStore maps client render-target handles to
// BackendCompRenderTarget records (spec §4.5), creating VisualTrees
// and Visuals lazily on first reference.
type RenderTargetStore struct {
	mu       sync.Mutex
	backend  Backend
	settings config.Settings

	targets map[proxy.RenderTargetHandle]*visualTreeEntry
}

// NewRenderTargetStore returns an empty store driving backend.
func NewRenderTargetStore(backend Backend, settings config.Settings) *RenderTargetStore {
	return &RenderTargetStore{
		backend:  backend,
		settings: settings,
		targets:  make(map[proxy.RenderTargetHandle]*visualTreeEntry),
	}
}

// EnsureTarget returns the store's record for target, creating a
// VisualTree bound to native on first reference.
func (s *RenderTargetStore) EnsureTarget(target proxy.RenderTargetHandle, native NativeSurface, rootRect math32.Rect) (*visualTreeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.targets[target]; ok {
		return entry, nil
	}

	vt, err := s.backend.CreateVisualTree(native, rootRect)
	if err != nil {
		return nil, err
	}
	entry := &visualTreeEntry{handle: vt, byLayer: make(map[layer.LayerHandle]*visualNode)}
	s.targets[target] = entry
	return entry, nil
}

// EnsureLayerContext resolves the RenderTargetContext backing l under
// target, creating the root Visual, a child Visual, or reusing the
// existing root context, per spec §4.5's three on-demand-creation
// cases. tree is the LayerTree l belongs to, used to tell a root layer
// from a child and to read its current bounds.
func (s *RenderTargetStore) EnsureLayerContext(target proxy.RenderTargetHandle, native NativeSurface, tree *layer.LayerTree, l layer.LayerHandle) (*RenderTargetContext, error) {
	limb, err := tree.Limb(l)
	if err != nil {
		return nil, err
	}
	rootLayer, err := tree.RootLayer(limb)
	if err != nil {
		return nil, err
	}
	rect, err := tree.Bounds(l)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	entry, ok := s.targets[target]
	s.mu.Unlock()
	if !ok {
		var err error
		entry, err = s.EnsureTarget(target, native, rect)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := entry.byLayer[l]; ok {
		if l == rootLayer {
			// Case 3: tree root with an existing root visual — cache
			// and resize to the current layer rect.
			existing.context.SetSize(rect)
		}
		return existing.context, nil
	}

	isRoot := l == rootLayer
	var rootExists bool
	for _, v := range entry.byLayer {
		if v.isRoot {
			rootExists = true
			break
		}
	}

	var ctx *RenderTargetContext
	if isRoot && !rootExists {
		// Case 1: limb has no root visual yet.
		ctx, err = s.backend.CreateRootContext(entry.handle, rect)
	} else {
		// Case 2: a child layer (or a limb's root layer when another
		// limb's root visual already exists) gets its own Visual.
		ctx, err = s.backend.CreateChildContext(entry.handle, rect)
	}
	if err != nil {
		return nil, err
	}
	entry.byLayer[l] = &visualNode{layer: l, isRoot: isRoot, context: ctx}
	return ctx, nil
}

// Release tears down every VisualTree the store owns.
func (s *RenderTargetStore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for target, entry := range s.targets {
		s.backend.Release(entry.handle)
		delete(s.targets, target)
	}
}
