// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proxy implements the per-view ClientProxy: record/submit
// bracketing, sync-lane and packet-id assignment, and the
// CompositorCommand variants dispatched through the scheduler to the
// backend.
package proxy

import "github.com/google/uuid"

// ClientID identifies one ClientProxy (and therefore one sync lane)
// for the lifetime of the compositor.
type ClientID uuid.UUID

func newClientID() ClientID { return ClientID(uuid.New()) }

func (c ClientID) String() string { return uuid.UUID(c).String() }

// RenderTargetHandle identifies a client render-target (the backend's
// unit of GPU surface ownership) across ViewResize commands and the
// backend's RenderTargetStore lookup.
type RenderTargetHandle uuid.UUID

func NewRenderTargetHandle() RenderTargetHandle { return RenderTargetHandle(uuid.New()) }

func (h RenderTargetHandle) String() string { return uuid.UUID(h).String() }

// LaneID is the per-proxy integer chosen at construction from a
// monotonic global seed (spec §3 "Sync lane").
type LaneID int64

// PacketID is the per-proxy monotonic counter assigned at submit time.
type PacketID int64

// CommandID is monotonically assigned within its issuing client.
type CommandID int64

// Priority is a CompositorCommand's scheduling priority.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityHigh
)

// CommandStatus is the terminal state a CommandHandle resolves to.
type CommandStatus int

const (
	StatusPending CommandStatus = iota
	StatusOk
	StatusFailed
	StatusDelayed
)

func (s CommandStatus) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusFailed:
		return "Failed"
	case StatusDelayed:
		return "Delayed"
	default:
		return "Pending"
	}
}

// FailureReason records *why* a command resolved Failed/Delayed, or
// (for Ok) why it was dropped without doing backend work. This is the
// design-level error taxonomy of spec §7, represented as data rather
// than as Go errors so it can cross the scheduler/backend boundary as
// part of a command's terminal state.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonSubmissionFailed
	ReasonInvalidGeometry
	ReasonBackendRebuildFailed
	ReasonMissingSurface
	ReasonNoOpTransparent
	ReasonCancelled
)

func (r FailureReason) String() string {
	switch r {
	case ReasonSubmissionFailed:
		return "SubmissionFailed"
	case ReasonInvalidGeometry:
		return "InvalidGeometry"
	case ReasonBackendRebuildFailed:
		return "BackendRebuildFailed"
	case ReasonMissingSurface:
		return "MissingSurface"
	case ReasonNoOpTransparent:
		return "NoOpTransparent"
	case ReasonCancelled:
		return "Cancelled"
	default:
		return "None"
	}
}
