// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layer implements the retained scene graph: Layer nodes
// arranged in per-view Limb subtrees owned by a LayerTree. Nodes are
// stored in arena slices and referenced by integer handles so that a
// Layer's back-reference to its owning Limb is a lookup, not an
// owning pointer (spec Design Notes §9).
package layer

import "github.com/omegawtk/compositor/math32"

// LayerHandle identifies a Layer within the LayerTree that created it.
// Handles from different trees are never interchangeable.
type LayerHandle struct {
	tree  *LayerTree
	index int
}

// LimbHandle identifies a Limb within the LayerTree that created it.
type LimbHandle struct {
	tree  *LayerTree
	index int
}

func (h LayerHandle) valid() bool { return h.tree != nil && h.index >= 0 }
func (h LimbHandle) valid() bool  { return h.tree != nil && h.index >= 0 }

// ShadowEffect is a drop-shadow applied to a Layer's owning Visual.
type ShadowEffect struct {
	Enabled bool
	Offset  math32.Vector2
	Radius  float32
	Opacity float32
	Color   [4]float32 // RGBA, componentwise-lerpable
}

// TransformEffect is the translate/rotate/scale applied to a Layer's
// owning Visual, composed as T*Rz*Ry*Rx*S (see math32.ComposeTRS).
type TransformEffect struct {
	Translate math32.Vector3
	Rotate    math32.Vector3 // radians per axis
	Scale     math32.Vector3
}

// DefaultTransform is the identity transform: no translation, no
// rotation, unit scale.
func DefaultTransform() TransformEffect {
	return TransformEffect{Scale: math32.Vec3(1, 1, 1)}
}

// Slice flattens e to the 9-element float64 form (translate, rotate,
// scale triples) the anim package's keyframe lerp operates on.
func (e TransformEffect) Slice() []float64 {
	return []float64{
		float64(e.Translate.X), float64(e.Translate.Y), float64(e.Translate.Z),
		float64(e.Rotate.X), float64(e.Rotate.Y), float64(e.Rotate.Z),
		float64(e.Scale.X), float64(e.Scale.Y), float64(e.Scale.Z),
	}
}

// TransformEffectFromSlice is the inverse of TransformEffect.Slice.
func TransformEffectFromSlice(s []float64) TransformEffect {
	return TransformEffect{
		Translate: math32.Vec3(float32(s[0]), float32(s[1]), float32(s[2])),
		Rotate:    math32.Vec3(float32(s[3]), float32(s[4]), float32(s[5])),
		Scale:     math32.Vec3(float32(s[6]), float32(s[7]), float32(s[8])),
	}
}

// Slice flattens e's continuously-lerpable fields (offset, radius,
// opacity, color) to an 8-element float64 form; Enabled is not
// lerpable and is carried separately by the caller.
func (e ShadowEffect) Slice() []float64 {
	return []float64{
		float64(e.Offset.X), float64(e.Offset.Y),
		float64(e.Radius), float64(e.Opacity),
		float64(e.Color[0]), float64(e.Color[1]), float64(e.Color[2]), float64(e.Color[3]),
	}
}

// ShadowEffectFromSlice is the inverse of ShadowEffect.Slice; Enabled
// must be set by the caller.
func ShadowEffectFromSlice(s []float64) ShadowEffect {
	return ShadowEffect{
		Offset:  math32.Vec2(float32(s[0]), float32(s[1])),
		Radius:  float32(s[2]),
		Opacity: float32(s[3]),
		Color:   [4]float32{float32(s[4]), float32(s[5]), float32(s[6]), float32(s[7])},
	}
}

// Observer receives notifications about a Layer's lifecycle. Observers
// are notified synchronously from whichever goroutine performed the
// mutating call.
type Observer interface {
	OnRectChange(math32.Rect)
	OnVisibilityChange(visible bool)
	OnDetach()
}

// layerNode is the arena-resident representation of a Layer.
type layerNode struct {
	alive     bool
	limb      int // index into tree.limbs
	parent    int // index into tree.layers, -1 if limb root
	children  []int
	bounds    math32.Rect
	visible   bool
	shadow    ShadowEffect
	transform TransformEffect
	observers []Observer
}

// Bounds returns the layer's current rect in its parent's coordinate
// space.
func (t *LayerTree) Bounds(h LayerHandle) (math32.Rect, error) {
	n, err := t.node(h)
	if err != nil {
		return math32.Rect{}, err
	}
	return n.bounds, nil
}

// Visible reports the layer's current visibility flag.
func (t *LayerTree) Visible(h LayerHandle) (bool, error) {
	n, err := t.node(h)
	if err != nil {
		return false, err
	}
	return n.visible, nil
}

// Transform returns the layer's current transform effect.
func (t *LayerTree) Transform(h LayerHandle) (TransformEffect, error) {
	n, err := t.node(h)
	if err != nil {
		return TransformEffect{}, err
	}
	return n.transform, nil
}

// Shadow returns the layer's current shadow effect.
func (t *LayerTree) Shadow(h LayerHandle) (ShadowEffect, error) {
	n, err := t.node(h)
	if err != nil {
		return ShadowEffect{}, err
	}
	return n.shadow, nil
}

// Limb returns the handle of the limb that owns h.
func (t *LayerTree) Limb(h LayerHandle) (LimbHandle, error) {
	n, err := t.node(h)
	if err != nil {
		return LimbHandle{}, err
	}
	return LimbHandle{tree: t, index: n.limb}, nil
}
