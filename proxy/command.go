// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proxy

import (
	"time"

	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
)

// CommandKind tags the variant carried by a CompositorCommand.
type CommandKind int

const (
	KindRender CommandKind = iota
	KindLayerResize
	KindLayerEffect
	KindViewResize
	KindCancel
	KindPacket
)

func (k CommandKind) String() string {
	switch k {
	case KindRender:
		return "Render"
	case KindLayerResize:
		return "LayerResize"
	case KindLayerEffect:
		return "LayerEffect"
	case KindViewResize:
		return "ViewResize"
	case KindCancel:
		return "Cancel"
	case KindPacket:
		return "Packet"
	default:
		return "Unknown"
	}
}

// LayerEffectPayload carries the shadow and/or transform update a
// LayerEffect command applies to a layer's owning Visual.
type LayerEffectPayload struct {
	Target    layer.LayerHandle
	Shadow    *layer.ShadowEffect
	Transform *layer.TransformEffect
}

// CancelRange is the inclusive [Start, End] id range a Cancel command
// scopes its removal to, within its issuing client.
type CancelRange struct {
	Start CommandID
	End   CommandID
}

// Contains reports whether id falls within the inclusive range.
func (r CancelRange) Contains(id CommandID) bool { return id >= r.Start && id <= r.End }

// CompositorCommand is the tagged union over
// {Render, LayerResize, LayerEffect, ViewResize, Cancel, Packet}. Every
// command carries an id monotonic within its issuing client, a sync
// lane id, a sync packet id, an optional (timestamp, deadline) pair, a
// priority, and a completion handle.
type CompositorCommand struct {
	Kind     CommandKind
	ID       CommandID
	ClientID ClientID
	LaneID   LaneID
	PacketID PacketID

	Timestamp   time.Time
	HasDeadline bool
	Deadline    time.Time

	Priority Priority
	Handle   *CommandHandle

	// Render
	Frame *canvas.Frame

	// LayerResize
	ResizeTarget layer.LayerHandle
	ResizeRect   math32.Rect

	// LayerEffect
	Effect LayerEffectPayload

	// ViewResize
	RenderTarget   RenderTargetHandle
	ViewResizeRect math32.Rect

	// Cancel
	CancelScope CancelRange

	// Packet: an ordered list of commands produced during one record
	// window, dispatched atomically.
	Inner []*CompositorCommand
}

// HasDeadlineBefore reports whether c has a deadline and it is
// strictly before t.
func (c *CompositorCommand) HasDeadlineBefore(t time.Time) bool {
	return c.HasDeadline && c.Deadline.Before(t)
}

// ResolveAll resolves c's own handle and, if c is a Packet, every
// inner command's handle, to the same status/reason. Used for
// shutdown-drain and submission-failed paths where a whole packet
// fails uniformly.
func (c *CompositorCommand) ResolveAll(status CommandStatus, reason FailureReason) {
	if c.Handle != nil {
		c.Handle.Resolve(status, reason)
	}
	for _, inner := range c.Inner {
		inner.ResolveAll(status, reason)
	}
}
