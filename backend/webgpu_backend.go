// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backend

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	baseerrors "github.com/omegawtk/compositor/base/errors"
	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/config"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
)

// webgpuNative bundles the per-VisualTree wgpu resources: the
// instance-owned device/queue and the swap chain bound to the host's
// native surface. Modeled directly on the teacher's gpu.Surface (one
// device per surface, lock-until-present). The swap chain is
// configured once when the visual tree is created; Resize rebuilds the
// attachment textures, not the swap chain.
type webgpuNative struct {
	mu sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue
	surf   *wgpu.Surface

	swapChainConfig *wgpu.SwapChainDescriptor
	swapChain       *wgpu.SwapChain

	curTexture *wgpu.TextureView
}

// webgpuContext is the attachment bundle a RenderTargetContext's
// native field holds when backed by WebGPUBackend: color/effect
// attachment textures sized to the context's clamped backing
// dimensions.
type webgpuContext struct {
	colorAttachment  *wgpu.Texture
	effectAttachment *wgpu.Texture
}

// WebGPUBackend is the production Backend implementation, issuing
// real GPU work through github.com/cogentcore/webgpu — the module the
// teacher itself binds its own GPU layer to (gpu/surface.go,
// gpu/gpu.go). One WebGPUBackend instance serves every render target
// in a Compositor; per-target state lives in webgpuNative.
type WebGPUBackend struct {
	mu       sync.Mutex
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	settings config.Settings

	trees map[VisualTreeHandle]*webgpuNative
	next  VisualTreeHandle
}

// NewWebGPUBackend creates a wgpu instance and selects an adapter,
// mirroring gpu.GPU.Config's construction sequence: enumerate every
// adapter the instance exposes, then score and pick one, rather than
// delegating selection to the driver via RequestAdapter.
func NewWebGPUBackend(settings config.Settings) (*WebGPUBackend, error) {
	inst := wgpu.CreateInstance(nil)
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrUnknownTarget
	}
	adapter := adapters[selectAdapter(adapters)]
	return &WebGPUBackend{
		instance: inst,
		adapter:  adapter,
		settings: settings,
		trees:    make(map[VisualTreeHandle]*webgpuNative),
	}, nil
}

// selectAdapter scores adapters the way gpu.GPU.SelectGPU does: prefer
// a discrete GPU on a non-OpenGL backend, skipping undefined/null
// backends entirely.
func selectAdapter(adapters []*wgpu.Adapter) int {
	hiscore, best := -1, 0
	for i, a := range adapters {
		info := a.GetInfo()
		if info.BackendType == wgpu.BackendTypeUndefined || info.BackendType == wgpu.BackendTypeNull {
			continue
		}
		score := 0
		if info.AdapterType == wgpu.AdapterTypeDiscreteGPU {
			score++
		}
		if info.BackendType != wgpu.BackendTypeOpenGL && info.BackendType != wgpu.BackendTypeOpenGLES {
			score++
		}
		if score > hiscore {
			hiscore, best = score, i
		}
	}
	return best
}

func (b *WebGPUBackend) CreateVisualTree(native NativeSurface, rootRect math32.Rect) (VisualTreeHandle, error) {
	wsurf, ok := native.(*wgpu.Surface)
	if !ok {
		return 0, ErrUnknownTarget
	}

	device, err := b.adapter.RequestDevice(nil)
	if baseerrors.Log(err) != nil {
		return 0, err
	}

	n := &webgpuNative{
		device: device,
		queue:  device.GetQueue(),
		surf:   wsurf,
	}
	if err := b.configureSwapChain(n, rootRect); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.trees[b.next] = n
	return b.next, nil
}

func (b *WebGPUBackend) configureSwapChain(n *webgpuNative, rect math32.Rect) error {
	caps := n.surf.GetCapabilities(b.adapter)
	if len(caps.Formats) == 0 {
		return ErrUnknownTarget
	}
	format := caps.Formats[0]

	n.swapChainConfig = &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(clampInt(round32(rect.W), 1, b.settings.BackingDimensionClamp)),
		Height:      uint32(clampInt(round32(rect.H), 1, b.settings.BackingDimensionClamp)),
		PresentMode: wgpu.PresentModeFifo,
	}
	if len(caps.AlphaModes) > 0 {
		n.swapChainConfig.AlphaMode = caps.AlphaModes[0]
	}

	sc, err := n.device.CreateSwapChain(n.surf, n.swapChainConfig)
	if baseerrors.Log(err) != nil {
		return err
	}
	n.swapChain = sc
	return nil
}

func (b *WebGPUBackend) native(vt VisualTreeHandle) (*webgpuNative, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.trees[vt]
	if !ok {
		return nil, ErrUnknownTarget
	}
	return n, nil
}

func (b *WebGPUBackend) CreateRootContext(vt VisualTreeHandle, rect math32.Rect) (*RenderTargetContext, error) {
	ctx := newRenderTargetContext(vt, rect, b.settings)
	if err := b.attachTextures(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (b *WebGPUBackend) CreateChildContext(vt VisualTreeHandle, rect math32.Rect) (*RenderTargetContext, error) {
	ctx := newRenderTargetContext(vt, rect, b.settings)
	if err := b.attachTextures(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (b *WebGPUBackend) attachTextures(ctx *RenderTargetContext) error {
	n, err := b.native(ctx.vt)
	if err != nil {
		return err
	}
	w, h := ctx.BackingSize()

	color := n.device.CreateTexture(&wgpu.TextureDescriptor{
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		Format: wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:  wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	effect := n.device.CreateTexture(&wgpu.TextureDescriptor{
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		Format: wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:  wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})

	ctx.mu.Lock()
	ctx.native = &webgpuContext{colorAttachment: color, effectAttachment: effect}
	ctx.mu.Unlock()
	return nil
}

// Resize rebuilds ctx's attachment textures only when the sanitized
// backing dimensions actually change (§4.5's resize contract).
func (b *WebGPUBackend) Resize(ctx *RenderTargetContext, rect math32.Rect) error {
	changed, _ := ctx.SetSize(rect)
	if !changed {
		return nil
	}
	return b.attachTextures(ctx)
}

// Dispatch runs one render pass that clears the swap chain's current
// texture to the frame's background color, submits it, and presents.
// The frame's VisualCommands are not drawn: no per-command
// tessellation or draw call is issued.
func (b *WebGPUBackend) Dispatch(ctx *RenderTargetContext, frame *canvas.Frame) (bool, error) {
	if frame.IsNoOpTransparent() {
		return true, nil
	}

	n, err := b.native(ctx.vt)
	if err != nil {
		return false, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	view, err := n.swapChain.GetCurrentTextureView()
	if baseerrors.Log(err) != nil {
		return false, err
	}
	n.curTexture = view

	encoder := n.device.CreateCommandEncoder(nil)
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: backgroundClearValue(frame),
			},
		},
	})
	pass.End()

	cmdBuf := encoder.Finish(nil)
	n.queue.Submit(cmdBuf)
	n.swapChain.Present()

	if n.curTexture != nil {
		n.curTexture.Release()
		n.curTexture = nil
	}
	return false, nil
}

func backgroundClearValue(frame *canvas.Frame) wgpu.Color {
	r, g, bl, a := frame.Background.R, frame.Background.G, frame.Background.B, frame.Background.A
	return wgpu.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(bl) / 255,
		A: float64(a) / 255,
	}
}

func (b *WebGPUBackend) ApplyLayerEffect(ctx *RenderTargetContext, shadow *layer.ShadowEffect, transform *layer.TransformEffect) error {
	// The transform is composed and stored on ctx via SetTransform;
	// Dispatch does not read it. The shadow is not applied.
	if transform != nil {
		ctx.SetTransform(math32.ComposeTRS(transform.Translate, transform.Rotate, transform.Scale))
	}
	return nil
}

func (b *WebGPUBackend) Release(vt VisualTreeHandle) {
	b.mu.Lock()
	n, ok := b.trees[vt]
	if ok {
		delete(b.trees, vt)
	}
	b.mu.Unlock()
	if !ok {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.swapChain != nil {
		n.swapChain.Release()
	}
	if n.device != nil {
		n.device.Release()
	}
}
