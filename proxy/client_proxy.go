// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proxy

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
)

// globalLaneSeed is the monotonic seed new ClientProxy instances draw
// their lane id from (spec §3 "Sync lane"; "monotonic global seed").
var globalLaneSeed atomic.Int64

// SchedulerFrontend is the scheduler-side acceptor a ClientProxy
// submits packets to. Defined here, implemented by queue.Scheduler
// from the other side, so proxy never imports queue.
type SchedulerFrontend interface {
	Submit(cmd *CompositorCommand)
}

// ClientProxy is the per-view record/submit surface: one per render
// target. beginRecord/endRecord bracket a recording scope; queue*
// calls append to the in-progress list; endRecord wraps and submits
// that list as a single unit.
type ClientProxy struct {
	mu sync.Mutex

	clientID ClientID
	target   RenderTargetHandle
	laneID   LaneID
	frontend SchedulerFrontend

	depth   int
	pending []*CompositorCommand

	nextCommandID CommandID
	nextPacketID  PacketID
	hasReserved   bool
	reservedID    PacketID
}

// NewClientProxy returns a ClientProxy bound to target. frontend may
// be nil initially and set later via SetFrontend; commands queued
// before a frontend is attached resolve Failed at submit time.
func NewClientProxy(target RenderTargetHandle) *ClientProxy {
	return &ClientProxy{
		clientID:     newClientID(),
		target:       target,
		laneID:       LaneID(globalLaneSeed.Add(1)),
		nextPacketID: 1,
	}
}

// NewClientProxyWithLane returns a ClientProxy bound to target with an
// explicit lane id, bypassing the global seed. Exposed for tests and
// for hosts that need to correlate a proxy's lane with an externally
// chosen id.
func NewClientProxyWithLane(target RenderTargetHandle, lane LaneID) *ClientProxy {
	return &ClientProxy{
		clientID:     newClientID(),
		target:       target,
		laneID:       lane,
		nextPacketID: 1,
	}
}

// SetFrontend attaches (or replaces) the scheduler this proxy submits
// to. Safe to call concurrently with record/submit activity.
func (p *ClientProxy) SetFrontend(frontend SchedulerFrontend) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frontend = frontend
}

// LaneID returns the proxy's fixed sync-lane id.
func (p *ClientProxy) LaneID() LaneID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.laneID
}

// Target returns the render target this proxy is bound to.
func (p *ClientProxy) Target() RenderTargetHandle { return p.target }

// BeginRecord opens (or re-enters) a recording scope. Nesting is
// reference-counted; only the outermost EndRecord submits.
func (p *ClientProxy) BeginRecord() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.depth++
}

// EndRecord closes one level of recording scope. When the outermost
// scope closes, the accumulated commands are submitted: zero commands
// is a no-op, one command submits unwrapped, more than one is wrapped
// in a Packet whose header inherits the first command's priority,
// deadline, and client reference.
func (p *ClientProxy) EndRecord() {
	p.mu.Lock()
	if p.depth == 0 {
		p.mu.Unlock()
		return
	}
	p.depth--
	if p.depth > 0 {
		p.mu.Unlock()
		return
	}

	pending := p.pending
	p.pending = nil
	if len(pending) == 0 {
		p.mu.Unlock()
		return
	}

	packetID := p.consumeReservedLocked()
	for _, cmd := range pending {
		cmd.PacketID = packetID
	}

	var submission *CompositorCommand
	if len(pending) == 1 {
		submission = pending[0]
	} else {
		first := pending[0]
		submission = &CompositorCommand{
			Kind:        KindPacket,
			ID:          first.ID,
			ClientID:    first.ClientID,
			LaneID:      p.laneID,
			PacketID:    packetID,
			Timestamp:   first.Timestamp,
			HasDeadline: first.HasDeadline,
			Deadline:    first.Deadline,
			Priority:    first.Priority,
			Handle:      NewCommandHandle(),
			Inner:       pending,
		}
	}

	frontend := p.frontend
	p.mu.Unlock()

	if frontend == nil {
		submission.ResolveAll(StatusFailed, ReasonSubmissionFailed)
		return
	}
	frontend.Submit(submission)
}

// PeekNextPacketID returns the id that will be assigned by the next
// non-empty EndRecord. The id is reserved, not consumed: repeated
// calls (and any call before the next submit actually happens) return
// the same value, so an animation can label intent ahead of building
// the packet it corresponds to.
func (p *ClientProxy) PeekNextPacketID() PacketID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasReserved {
		p.reservedID = p.nextPacketID
		p.hasReserved = true
	}
	return p.reservedID
}

// consumeReservedLocked returns the packet id for the submission
// currently being built, consuming any outstanding reservation and
// advancing the counter. Must be called with p.mu held.
func (p *ClientProxy) consumeReservedLocked() PacketID {
	var id PacketID
	if p.hasReserved {
		id = p.reservedID
		p.hasReserved = false
	} else {
		id = p.nextPacketID
	}
	p.nextPacketID = id + 1
	return id
}

func (p *ClientProxy) enqueueLocked(cmd *CompositorCommand) *CommandHandle {
	cmd.ID = p.nextCommandID
	p.nextCommandID++
	cmd.ClientID = p.clientID
	cmd.LaneID = p.laneID
	cmd.Handle = NewCommandHandle()
	p.pending = append(p.pending, cmd)
	return cmd.Handle
}

// QueueFrame implements canvas.FrameSink: it queues a Render command
// wrapping f, priced at priority inferred from f's deadline presence.
func (p *ClientProxy) QueueFrame(f *canvas.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := &CompositorCommand{
		Kind:      KindRender,
		Timestamp: f.Timestamp,
		Priority:  PriorityHigh,
		Frame:     f,
	}
	if f.Deadline != nil {
		cmd.HasDeadline = true
		cmd.Deadline = *f.Deadline
	}
	p.enqueueLocked(cmd)
}

// QueueLayerResize appends a LayerResize command to the in-progress
// record and returns its completion handle.
func (p *ClientProxy) QueueLayerResize(target layer.LayerHandle, rect math32.Rect, deadline *time.Time) *CommandHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := &CompositorCommand{
		Kind:         KindLayerResize,
		Timestamp:    time.Now(),
		Priority:     PriorityHigh,
		ResizeTarget: target,
		ResizeRect:   rect,
	}
	if deadline != nil {
		cmd.HasDeadline = true
		cmd.Deadline = *deadline
	}
	return p.enqueueLocked(cmd)
}

// QueueLayerEffect appends a LayerEffect command.
func (p *ClientProxy) QueueLayerEffect(target layer.LayerHandle, shadow *layer.ShadowEffect, transform *layer.TransformEffect, deadline *time.Time) *CommandHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := &CompositorCommand{
		Kind:      KindLayerEffect,
		Timestamp: time.Now(),
		Priority:  PriorityHigh,
		Effect: LayerEffectPayload{
			Target:    target,
			Shadow:    shadow,
			Transform: transform,
		},
	}
	if deadline != nil {
		cmd.HasDeadline = true
		cmd.Deadline = *deadline
	}
	return p.enqueueLocked(cmd)
}

// QueueViewResize appends a ViewResize command.
func (p *ClientProxy) QueueViewResize(target RenderTargetHandle, rect math32.Rect) *CommandHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := &CompositorCommand{
		Kind:           KindViewResize,
		Timestamp:      time.Now(),
		Priority:       PriorityHigh,
		RenderTarget:   target,
		ViewResizeRect: rect,
	}
	return p.enqueueLocked(cmd)
}

// QueueCancel appends a Cancel command covering the inclusive command
// id range scope, within this client.
func (p *ClientProxy) QueueCancel(scope CancelRange) *CommandHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd := &CompositorCommand{
		Kind:        KindCancel,
		Timestamp:   time.Now(),
		Priority:    PriorityHigh,
		CancelScope: scope,
	}
	return p.enqueueLocked(cmd)
}
