// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layer

import (
	"sync"

	"github.com/omegawtk/compositor/math32"
)

// limbNode is the arena-resident representation of a Limb.
type limbNode struct {
	alive      bool
	rootLayer  int  // index into tree.layers
	attachedTo int  // index into tree.layers this limb hangs under, -1 for the tree's root limb
	hasAttach  bool
}

// LayerTree owns one root Limb and, optionally, further Limbs attached
// under layers of the tree (nested per-view subtrees, e.g. an embedded
// child viewport). All nodes live in arena slices; handles are the only
// way to reference a node from outside the tree.
type LayerTree struct {
	mu     sync.Mutex
	limbs  []limbNode
	layers []layerNode
	root   int // index into limbs
}

// New creates a LayerTree with one root Limb containing one root Layer
// of the given initial bounds.
func New(rootBounds math32.Rect) *LayerTree {
	t := &LayerTree{}
	t.layers = append(t.layers, layerNode{
		alive:     true,
		limb:      0,
		parent:    -1,
		bounds:    rootBounds,
		visible:   true,
		transform: DefaultTransform(),
	})
	t.limbs = append(t.limbs, limbNode{alive: true, rootLayer: 0, attachedTo: -1})
	t.root = 0
	return t
}

// RootLimb returns the handle of the tree's root Limb.
func (t *LayerTree) RootLimb() LimbHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return LimbHandle{tree: t, index: t.root}
}

// RootLayer returns the handle of the given Limb's root Layer.
func (t *LayerTree) RootLayer(h LimbHandle) (LayerHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.limbNode(h)
	if err != nil {
		return LayerHandle{}, err
	}
	return LayerHandle{tree: t, index: n.rootLayer}, nil
}

func (t *LayerTree) limbNode(h LimbHandle) (*limbNode, error) {
	if h.tree != t || h.index < 0 || h.index >= len(t.limbs) || !t.limbs[h.index].alive {
		return nil, ErrUnknownHandle
	}
	return &t.limbs[h.index], nil
}

func (t *LayerTree) node(h LayerHandle) (*layerNode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodeLocked(h)
}

func (t *LayerTree) nodeLocked(h LayerHandle) (*layerNode, error) {
	if h.tree != t || h.index < 0 || h.index >= len(t.layers) || !t.layers[h.index].alive {
		return nil, ErrUnknownHandle
	}
	return &t.layers[h.index], nil
}

// NewChildLayer creates a new Layer under parent's limb, as a child of
// parent. The new layer's bounds are independent of the parent's
// bounds (resizing parent never implicitly reshapes it).
func (t *LayerTree) NewChildLayer(parent LayerHandle, bounds math32.Rect) (LayerHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pn, err := t.nodeLocked(parent)
	if err != nil {
		return LayerHandle{}, err
	}
	idx := len(t.layers)
	t.layers = append(t.layers, layerNode{
		alive:     true,
		limb:      pn.limb,
		parent:    parent.index,
		bounds:    bounds,
		visible:   true,
		transform: DefaultTransform(),
	})
	// re-fetch pn: append may have reallocated the backing array
	t.layers[parent.index].children = append(t.layers[parent.index].children, idx)
	return LayerHandle{tree: t, index: idx}, nil
}

// NewLimb creates a new Limb whose root Layer is attached under
// attachPoint (a Layer in this same tree). The new limb's layers are
// NOT reparented into attachPoint's limb; attachPoint only records
// where the new subtree logically hangs for tree-walk purposes.
func (t *LayerTree) NewLimb(attachPoint LayerHandle, rootBounds math32.Rect) (LimbHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.nodeLocked(attachPoint); err != nil {
		return LimbHandle{}, err
	}
	if attachPoint.tree != t {
		return LimbHandle{}, ErrInvalidParent
	}
	layerIdx := len(t.layers)
	t.layers = append(t.layers, layerNode{
		alive:     true,
		limb:      len(t.limbs),
		parent:    -1,
		bounds:    rootBounds,
		visible:   true,
		transform: DefaultTransform(),
	})
	limbIdx := len(t.limbs)
	t.limbs = append(t.limbs, limbNode{
		alive: true, rootLayer: layerIdx, attachedTo: attachPoint.index, hasAttach: true,
	})
	return LimbHandle{tree: t, index: limbIdx}, nil
}

// Reparent moves limb to attach under newAttachPoint. It fails with
// ErrInvalidParent if newAttachPoint belongs to a different tree than
// limb (reparenting across trees is never allowed).
func (t *LayerTree) Reparent(limb LimbHandle, newAttachPoint LayerHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limb.tree != t || newAttachPoint.tree != t {
		return ErrInvalidParent
	}
	ln, err := t.limbNode(limb)
	if err != nil {
		return err
	}
	if _, err := t.nodeLocked(newAttachPoint); err != nil {
		return err
	}
	ln.attachedTo = newAttachPoint.index
	ln.hasAttach = true
	return nil
}

// ResizeLayer sets h's bounds in its parent's coordinate space.
// Non-finite or non-positive dimensions are rejected outright
// (ErrInvalidGeometry); this never reshapes children. Observers are
// notified of the rect change unless the new bounds are identical to
// the current ones.
func (t *LayerTree) ResizeLayer(h LayerHandle, bounds math32.Rect) error {
	t.mu.Lock()
	n, err := t.nodeLocked(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if !bounds.IsFinite() || !bounds.Positive() {
		t.mu.Unlock()
		return ErrInvalidGeometry
	}
	if n.bounds.Equal(bounds) {
		t.mu.Unlock()
		return nil
	}
	n.bounds = bounds
	observers := append([]Observer(nil), n.observers...)
	t.mu.Unlock()
	for _, o := range observers {
		o.OnRectChange(bounds)
	}
	return nil
}

// SetVisible toggles h's visibility and notifies observers if it
// changed.
func (t *LayerTree) SetVisible(h LayerHandle, visible bool) error {
	t.mu.Lock()
	n, err := t.nodeLocked(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if n.visible == visible {
		t.mu.Unlock()
		return nil
	}
	n.visible = visible
	observers := append([]Observer(nil), n.observers...)
	t.mu.Unlock()
	for _, o := range observers {
		o.OnVisibilityChange(visible)
	}
	return nil
}

// SetTransform replaces h's TransformEffect.
func (t *LayerTree) SetTransform(h LayerHandle, tr TransformEffect) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.nodeLocked(h)
	if err != nil {
		return err
	}
	n.transform = tr
	return nil
}

// SetShadow replaces h's ShadowEffect.
func (t *LayerTree) SetShadow(h LayerHandle, s ShadowEffect) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.nodeLocked(h)
	if err != nil {
		return err
	}
	n.shadow = s
	return nil
}

// AttachObserver registers obs on h, returning an unsubscribe func.
func (t *LayerTree) AttachObserver(h LayerHandle, obs Observer) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.nodeLocked(h)
	if err != nil {
		return nil, err
	}
	n.observers = append(n.observers, obs)
	idx := len(n.observers) - 1
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if idx < len(n.observers) {
			n.observers[idx] = nil
		}
	}, nil
}

// DetachLayer removes h from the tree, notifying its observers (and
// recursively its children's observers) of detach.
func (t *LayerTree) DetachLayer(h LayerHandle) error {
	t.mu.Lock()
	n, err := t.nodeLocked(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	var toNotify []*layerNode
	t.collectSubtree(n, &toNotify)
	for _, c := range toNotify {
		c.alive = false
	}
	if n.parent >= 0 {
		parent := &t.layers[n.parent]
		for i, c := range parent.children {
			if c == h.index {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	t.mu.Unlock()
	for _, c := range toNotify {
		for _, o := range c.observers {
			if o != nil {
				o.OnDetach()
			}
		}
	}
	return nil
}

func (t *LayerTree) collectSubtree(n *layerNode, out *[]*layerNode) {
	*out = append(*out, n)
	for _, ci := range n.children {
		t.collectSubtree(&t.layers[ci], out)
	}
}

// Children returns the direct child layers of h, in creation order.
func (t *LayerTree) Children(h LayerHandle) ([]LayerHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.nodeLocked(h)
	if err != nil {
		return nil, err
	}
	out := make([]LayerHandle, len(n.children))
	for i, ci := range n.children {
		out[i] = LayerHandle{tree: t, index: ci}
	}
	return out, nil
}
