// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"sync"

	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
)

// MockBackend is the recording, introspectable Backend implementation
// the test suite drives instead of a live GPU (spec §8's "mock backend
// that records submissions"). It never touches real GPU resources; it
// only tracks what would have happened.
type MockBackend struct {
	mu sync.Mutex

	settings config.Settings

	nextVT VisualTreeHandle

	ClearCount     int
	DrawCount      int
	PresentCount   int
	ResizeCount    int
	EffectCalls    []layer.ShadowEffect
	TransformCalls []layer.TransformEffect
	ReleasedTrees  []VisualTreeHandle
}

// NewMockBackend returns a MockBackend using settings for sanitizer
// thresholds.
func NewMockBackend(settings config.Settings) *MockBackend {
	return &MockBackend{settings: settings}
}

func (m *MockBackend) CreateVisualTree(native NativeSurface, rootRect math32.Rect) (VisualTreeHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextVT++
	return m.nextVT, nil
}

func (m *MockBackend) CreateRootContext(vt VisualTreeHandle, rect math32.Rect) (*RenderTargetContext, error) {
	return newRenderTargetContext(vt, rect, m.settings), nil
}

func (m *MockBackend) CreateChildContext(vt VisualTreeHandle, rect math32.Rect) (*RenderTargetContext, error) {
	return newRenderTargetContext(vt, rect, m.settings), nil
}

func (m *MockBackend) Resize(ctx *RenderTargetContext, rect math32.Rect) error {
	changed, _ := ctx.SetSize(rect)
	m.mu.Lock()
	if changed {
		m.ResizeCount++
	}
	m.mu.Unlock()
	return nil
}

// Dispatch records the frame. Callers route no-op-transparent frames
// around Dispatch entirely (CommandDispatcher.dispatchRender), so
// every frame reaching here is a genuine clear+draw+present.
func (m *MockBackend) Dispatch(ctx *RenderTargetContext, frame *canvas.Frame) (bool, error) {
	m.mu.Lock()
	m.ClearCount++
	m.DrawCount += len(frame.Commands)
	m.PresentCount++
	m.mu.Unlock()
	return false, nil
}

func (m *MockBackend) ApplyLayerEffect(ctx *RenderTargetContext, shadow *layer.ShadowEffect, transform *layer.TransformEffect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shadow != nil {
		m.EffectCalls = append(m.EffectCalls, *shadow)
	}
	if transform != nil {
		m.TransformCalls = append(m.TransformCalls, *transform)
		ctx.SetTransform(math32.ComposeTRS(transform.Translate, transform.Rotate, transform.Scale))
	}
	return nil
}

func (m *MockBackend) Release(vt VisualTreeHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleasedTrees = append(m.ReleasedTrees, vt)
}
