// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resize

import "sync"

// ResizeCoordinator is the widget-tree host's entry point for
// starting and tracking live-resize sessions, one per sub-tree root
// actively being resized.
type ResizeCoordinator struct {
	mu       sync.Mutex
	sessions map[SessionID]*ResizeSession
}

// NewResizeCoordinator returns an empty coordinator.
func NewResizeCoordinator() *ResizeCoordinator {
	return &ResizeCoordinator{sessions: make(map[SessionID]*ResizeSession)}
}

// Begin starts a new session over members and returns it already
// transitioned to Active.
func (c *ResizeCoordinator) Begin(animatedTree bool, members []Repainter) *ResizeSession {
	s := NewResizeSession(animatedTree, members)
	s.Begin()

	c.mu.Lock()
	c.sessions[s.id] = s
	c.mu.Unlock()
	return s
}

// Session looks up a tracked session by id.
func (c *ResizeCoordinator) Session(id SessionID) (*ResizeSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}

// End completes and forgets session id, forwarding to
// ResizeSession.End for the authoritative flush.
func (c *ResizeCoordinator) End(id SessionID) {
	c.mu.Lock()
	s, ok := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()

	if ok {
		s.End()
	}
}

// Active reports how many sessions the coordinator is currently
// tracking.
func (c *ResizeCoordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
