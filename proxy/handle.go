// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proxy

import (
	"context"
	"sync"
)

// CommandHandle is the async result-channel-per-command that replaces
// the source's promise/async pair (spec Design Notes §9). Consumers
// either Wait on it or peek its Status; resolution is idempotent and
// safe to call from any goroutine (the scheduler resolves it exactly
// once, but double-resolution from a racing cancel+execute is
// tolerated by keeping only the first result).
type CommandHandle struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	status   CommandStatus
	reason   FailureReason
}

// NewCommandHandle returns an unresolved handle.
func NewCommandHandle() *CommandHandle {
	return &CommandHandle{done: make(chan struct{})}
}

// Resolve sets the handle's terminal status and reason. Only the
// first call has effect; subsequent calls are no-ops.
func (h *CommandHandle) Resolve(status CommandStatus, reason FailureReason) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved {
		return
	}
	h.resolved = true
	h.status = status
	h.reason = reason
	close(h.done)
}

// Status returns the handle's status and reason without blocking. The
// bool reports whether it has resolved yet.
func (h *CommandHandle) Status() (CommandStatus, FailureReason, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, h.reason, h.resolved
}

// Wait blocks until the handle resolves or ctx is cancelled.
func (h *CommandHandle) Wait(ctx context.Context) (CommandStatus, FailureReason, error) {
	select {
	case <-h.done:
		status, reason, _ := h.Status()
		return status, reason, nil
	case <-ctx.Done():
		return StatusPending, ReasonNone, ctx.Err()
	}
}

// Done returns the channel closed on resolution, for select-based
// callers (e.g. an animator waiting on several handles at once).
func (h *CommandHandle) Done() <-chan struct{} { return h.done }
