// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

func TestEnsureLayerContextCreatesRootOnFirstReference(t *testing.T) {
	mock := NewMockBackend(config.Default())
	store := NewRenderTargetStore(mock, config.Default())
	tree := layer.New(math32.NewRect(0, 0, 100, 100))
	root, err := tree.RootLayer(tree.RootLimb())
	require.NoError(t, err)

	target := proxy.NewRenderTargetHandle()
	ctx, err := store.EnsureLayerContext(target, nil, tree, root)
	require.NoError(t, err)
	require.NotNil(t, ctx)

	w, h := ctx.BackingSize()
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)
}

func TestEnsureLayerContextReusesRootOnRevisit(t *testing.T) {
	mock := NewMockBackend(config.Default())
	store := NewRenderTargetStore(mock, config.Default())
	tree := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tree.RootLayer(tree.RootLimb())
	target := proxy.NewRenderTargetHandle()

	first, err := store.EnsureLayerContext(target, nil, tree, root)
	require.NoError(t, err)

	require.NoError(t, tree.ResizeLayer(root, math32.NewRect(0, 0, 200, 150)))
	second, err := store.EnsureLayerContext(target, nil, tree, root)
	require.NoError(t, err)

	assert.Same(t, first, second)
	w, h := second.BackingSize()
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
}

func TestEnsureLayerContextChildGetsOwnVisual(t *testing.T) {
	mock := NewMockBackend(config.Default())
	store := NewRenderTargetStore(mock, config.Default())
	tree := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tree.RootLayer(tree.RootLimb())
	child, err := tree.NewChildLayer(root, math32.NewRect(0, 0, 40, 40))
	require.NoError(t, err)

	target := proxy.NewRenderTargetHandle()
	rootCtx, err := store.EnsureLayerContext(target, nil, tree, root)
	require.NoError(t, err)
	childCtx, err := store.EnsureLayerContext(target, nil, tree, child)
	require.NoError(t, err)

	assert.NotSame(t, rootCtx, childCtx)
	w, h := childCtx.BackingSize()
	assert.Equal(t, 40, w)
	assert.Equal(t, 40, h)
}

func TestEnsureLayerContextSecondLimbRootGetsOwnVisual(t *testing.T) {
	mock := NewMockBackend(config.Default())
	store := NewRenderTargetStore(mock, config.Default())
	tree := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tree.RootLayer(tree.RootLimb())
	target := proxy.NewRenderTargetHandle()

	rootCtx, err := store.EnsureLayerContext(target, nil, tree, root)
	require.NoError(t, err)

	limb2, err := tree.NewLimb(root, math32.NewRect(0, 0, 50, 50))
	require.NoError(t, err)
	root2, err := tree.RootLayer(limb2)
	require.NoError(t, err)

	// root2 is its own limb's root layer, but the target already has a
	// root visual (from root's limb) — it must fall to the "own
	// Visual" case rather than being mistaken for the same root.
	root2Ctx, err := store.EnsureLayerContext(target, nil, tree, root2)
	require.NoError(t, err)

	assert.NotSame(t, rootCtx, root2Ctx)
	w, h := root2Ctx.BackingSize()
	assert.Equal(t, 50, w)
	assert.Equal(t, 50, h)

	// rootCtx is still reachable and untouched by root2's creation.
	again, err := store.EnsureLayerContext(target, nil, tree, root)
	require.NoError(t, err)
	assert.Same(t, rootCtx, again)
}

func TestReleaseTearsDownEveryVisualTree(t *testing.T) {
	mock := NewMockBackend(config.Default())
	store := NewRenderTargetStore(mock, config.Default())
	tree := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tree.RootLayer(tree.RootLimb())
	target := proxy.NewRenderTargetHandle()
	_, err := store.EnsureLayerContext(target, nil, tree, root)
	require.NoError(t, err)

	store.Release()
	assert.Len(t, mock.ReleasedTrees, 1)
}
