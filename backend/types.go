// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend implements the GPU-facing half of the compositor:
// RenderTargetStore/VisualTree map client render targets and layers to
// backend Visuals, and RenderTargetContext owns the per-surface
// texture lifecycle, resize sanitizer, draw dispatch, and present
// (spec §4.5). MockBackend is the recording/introspectable
// implementation the test suite exercises; WebGPUBackend is the
// production implementation over github.com/cogentcore/webgpu.
package backend

import (
	"errors"
	"time"

	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

// NativeSurface is the opaque platform surface handle the backend
// consumes (HWND/CAMetalLayer/Wayland surface in the source; here,
// whatever the host passes through at EnsureTarget time). The
// compositor core never inspects it.
type NativeSurface interface{}

// SubmissionTelemetry is a completion record for a packet's GPU work.
// No Backend in this package produces one, and the compositor does not
// consume it.
type SubmissionTelemetry struct {
	LaneID      proxy.LaneID
	PacketID    proxy.PacketID
	SubmitCPU   time.Time
	CompleteCPU time.Time
	PresentCPU  time.Time
	Status      proxy.CommandStatus
	Dropped     bool
	DropReason  proxy.FailureReason
}

var (
	ErrUnknownTarget = errors.New("backend: unknown render target")
	ErrUnknownLayer  = errors.New("backend: unknown layer context")
)

// Backend is the GPU-facing surface RenderTargetStore drives. One
// implementation (MockBackend) records calls for tests; the other
// (WebGPUBackend) issues real wgpu work.
type Backend interface {
	// CreateVisualTree allocates the native resources for a brand new
	// render target bound to native, sized to the limb's root rect.
	CreateVisualTree(native NativeSurface, rootRect math32.Rect) (VisualTreeHandle, error)

	// CreateRootContext creates the RenderTargetContext for a
	// VisualTree's root layer.
	CreateRootContext(vt VisualTreeHandle, rect math32.Rect) (*RenderTargetContext, error)

	// CreateChildContext creates a RenderTargetContext for a non-root
	// Visual under vt.
	CreateChildContext(vt VisualTreeHandle, rect math32.Rect) (*RenderTargetContext, error)

	// Resize rebuilds ctx's GPU-backed resources if sanitized backing
	// dimensions changed.
	Resize(ctx *RenderTargetContext, rect math32.Rect) error

	// Dispatch draws frame's commands into ctx and presents, or — for
	// a no-op transparent frame — does neither. It returns whether the
	// frame was dropped as a no-op.
	Dispatch(ctx *RenderTargetContext, frame *canvas.Frame) (dropped bool, err error)

	// ApplyLayerEffect applies a shadow and/or transform update to
	// ctx's owning Visual.
	ApplyLayerEffect(ctx *RenderTargetContext, shadow *layer.ShadowEffect, transform *layer.TransformEffect) error

	// Release destroys a VisualTree's native resources.
	Release(vt VisualTreeHandle)
}
