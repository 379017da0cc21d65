// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resize implements the widget-tree host's ResizeCoordinator:
// paint suspension for a static sub-tree during a live resize, and the
// single authoritative flush that repaints it once the resize settles.
package resize

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

// Phase is a ResizeSession's lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseSettling
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "Active"
	case PhaseSettling:
		return "Settling"
	case PhaseCompleted:
		return "Completed"
	default:
		return "Idle"
	}
}

// PaintReason tags why a widget is being invalidated.
type PaintReason int

const (
	ReasonInitial PaintReason = iota
	ReasonStateChanged
	ReasonThemeChanged
	ReasonResize
)

// DynamicsSample is one (t, w, h) observation plus the velocity and
// acceleration of the size change derived from the previous sample:
// velocity = |Δsize|/Δt, acceleration = Δvelocity/Δt.
type DynamicsSample struct {
	T            time.Time
	W, H         float32
	Velocity     float32
	Acceleration float32
}

// Counters is the suspension/flush telemetry a ResizeSession keeps,
// per spec: resizeUpdates, deferredPaints, deferredResizePaints,
// deferredImmediatePaints, authoritativeFlushes.
type Counters struct {
	ResizeUpdates           int
	DeferredPaints          int
	DeferredResizePaints    int
	DeferredImmediatePaints int
	AuthoritativeFlushes    int
}

// Repainter is one widget-tree member a ResizeSession can ask to
// produce a synchronous repaint during the authoritative flush.
// Repaint is expected to deliver its frame to Proxy() itself (the way
// canvas.Canvas.SendFrame hands a completed frame to its FrameSink),
// not return one, so a session only needs to bracket
// BeginRecord/EndRecord around it. The compositor package's Widget
// satisfies this; defined here so resize doesn't need to import
// compositor.
type Repainter interface {
	Proxy() *proxy.ClientProxy
	Repaint(reason PaintReason)
}

// SessionID identifies one ResizeSession.
type SessionID uint64

var nextSessionID atomic.Uint64

// ResizeSession tracks one live-resize episode over a sub-tree of
// Repainters. All paint invalidations raised while the session
// suspends (phase Active/Settling, no running animation in the
// sub-tree) are deferred; End() issues the single authoritative flush.
type ResizeSession struct {
	id           SessionID
	animatedTree bool
	members      []Repainter

	mu            sync.Mutex
	phase         Phase
	lastSample    *DynamicsSample
	lastReason    PaintReason
	hasDeferred   bool
	counters      Counters
}

// NewResizeSession constructs a session over members. animatedTree
// must be true if the sub-tree has at least one running animation at
// session-begin (spec's "animated sub-tree exception" disables
// suspension entirely for the life of the session).
func NewResizeSession(animatedTree bool, members []Repainter) *ResizeSession {
	return &ResizeSession{
		id:           SessionID(nextSessionID.Add(1)),
		animatedTree: animatedTree,
		members:      members,
		phase:        PhaseIdle,
	}
}

func (s *ResizeSession) ID() SessionID { return s.id }

// Begin transitions Idle -> Active.
func (s *ResizeSession) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseActive
}

// Update records a new (t, w, h) dynamics sample and returns it.
func (s *ResizeSession) Update(t time.Time, w, h float32) DynamicsSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := DynamicsSample{T: t, W: w, H: h}
	if s.lastSample != nil {
		dt := float32(t.Sub(s.lastSample.T).Seconds())
		if dt > 0 {
			dw, dh := w-s.lastSample.W, h-s.lastSample.H
			sample.Velocity = math32.Sqrt(dw*dw+dh*dh) / dt
			sample.Acceleration = (sample.Velocity - s.lastSample.Velocity) / dt
		}
	}
	s.lastSample = &sample
	s.counters.ResizeUpdates++
	return sample
}

// Settle transitions Active -> Settling.
func (s *ResizeSession) Settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseActive {
		s.phase = PhaseSettling
	}
}

// Phase returns the session's current phase.
func (s *ResizeSession) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Counters returns a snapshot of the session's telemetry.
func (s *ResizeSession) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// LastDeferredReason returns the reason of the most recently deferred
// invalidation, and whether any invalidation has been deferred yet.
func (s *ResizeSession) LastDeferredReason() (PaintReason, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReason, s.hasDeferred
}

// suspends reports whether the session currently defers paints:
// Active/Settling phase and no running animation in the sub-tree.
func (s *ResizeSession) suspends() bool {
	return !s.animatedTree && (s.phase == PhaseActive || s.phase == PhaseSettling)
}

// Invalidate is the normal (non-immediate) paint-invalidation entry
// point a widget's invalidate(reason) call routes through. While the
// session suspends, the repaint is deferred (member is not touched);
// otherwise member is repainted immediately on its own proxy.
func (s *ResizeSession) Invalidate(member Repainter, reason PaintReason) {
	s.mu.Lock()
	if s.suspends() {
		s.counters.DeferredPaints++
		if reason == ReasonResize {
			s.counters.DeferredResizePaints++
		}
		s.lastReason, s.hasDeferred = reason, true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.propagateOne(member, reason)
}

// InvalidateNow is the immediate paint-invalidation entry point (a
// widget's invalidateNow(reason) call, which would otherwise bypass
// the scheduler and paint synchronously); still deferred while the
// session suspends.
func (s *ResizeSession) InvalidateNow(member Repainter, reason PaintReason) {
	s.mu.Lock()
	if s.suspends() {
		s.counters.DeferredImmediatePaints++
		s.lastReason, s.hasDeferred = reason, true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.propagateOne(member, reason)
}

// propagateOne repaints a single member on its own proxy, wrapped in
// its own record/submit bracket.
func (s *ResizeSession) propagateOne(member Repainter, reason PaintReason) {
	p := member.Proxy()
	p.BeginRecord()
	member.Repaint(reason)
	p.EndRecord()
}

// End transitions to Completed. If the session suspended paints
// (static sub-tree), it issues exactly one authoritative flush:
// every member is repainted synchronously in the order given to
// NewResizeSession, and the flush submits exactly one packet per
// affected ClientProxy.
func (s *ResizeSession) End() {
	s.mu.Lock()
	s.phase = PhaseCompleted
	animated := s.animatedTree
	hadDeferred := s.hasDeferred
	s.mu.Unlock()

	if animated || !hadDeferred {
		return
	}

	s.flushReason(ReasonResize)
	s.mu.Lock()
	s.counters.AuthoritativeFlushes++
	s.mu.Unlock()
}

// flushReason groups members by owning proxy and submits one packet
// per proxy, each packet containing that proxy's members' repainted
// frames in order.
func (s *ResizeSession) flushReason(reason PaintReason) {
	order := make([]*proxy.ClientProxy, 0, len(s.members))
	byProxy := make(map[*proxy.ClientProxy][]Repainter)
	for _, m := range s.members {
		p := m.Proxy()
		if _, ok := byProxy[p]; !ok {
			order = append(order, p)
		}
		byProxy[p] = append(byProxy[p], m)
	}

	for _, p := range order {
		p.BeginRecord()
		for _, m := range byProxy[p] {
			m.Repaint(reason)
		}
		p.EndRecord()
	}
}
