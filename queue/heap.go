// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package queue implements the global CommandQueue (a priority heap
// over CompositorCommands) and the Scheduler dispatch loop that drains
// it on a single goroutine, per spec §4.4.
package queue

import (
	"container/heap"
	"time"

	"github.com/omegawtk/compositor/proxy"
)

// rank classifies a command's scheduling class. Lower ranks dequeue
// first. Cancel always preempts everything else — this is the
// behavior spec scenario S4 exercises directly, and it is what
// resolves the literal tension in spec §4.4 between rule 1 ("View
// commands sort before Cancel") and rule 2 ("Cancel sorts before all
// others"): Cancel is rank 0 unconditionally, View-class commands are
// rank 1, and Render/Packet-of-Render is rank 2. See DESIGN.md's Open
// Question decisions for the full reasoning.
type rank int

const (
	rankCancel rank = iota
	rankView
	rankRender
)

func classify(kind proxy.CommandKind) rank {
	switch kind {
	case proxy.KindCancel:
		return rankCancel
	case proxy.KindLayerResize, proxy.KindLayerEffect, proxy.KindViewResize:
		return rankView
	default:
		return rankRender
	}
}

func rankOf(cmd *proxy.CompositorCommand) rank {
	if cmd.Kind == proxy.KindPacket && len(cmd.Inner) > 0 {
		return classify(cmd.Inner[0].Kind)
	}
	return classify(cmd.Kind)
}

// queuedCommand is the value-typed heap element: value-typed so
// container/heap's Swap/Pop never shares backing arrays across
// entries the way the source's hand-rolled heap did (spec Open
// Question #3 — "QueueHeap... memory-copy bugs").
type queuedCommand struct {
	cmd *proxy.CompositorCommand
	seq uint64
}

// less implements the total order of spec §4.4: Cancel first, then
// View-class, then Render; within Render, earlier deadline wins, then
// earlier timestamp, then commands without a deadline sort after ones
// with one; ties (including the no-deadline case) fall back to
// submission sequence, which is strictly monotonic and therefore
// total.
func less(a, b queuedCommand) bool {
	ra, rb := rankOf(a.cmd), rankOf(b.cmd)
	if ra != rb {
		return ra < rb
	}
	if ra == rankRender {
		ad, bd := a.cmd.HasDeadline, b.cmd.HasDeadline
		if ad != bd {
			return ad // has-deadline sorts before no-deadline
		}
		if ad && bd {
			if !a.cmd.Deadline.Equal(b.cmd.Deadline) {
				return a.cmd.Deadline.Before(b.cmd.Deadline)
			}
			if !a.cmd.Timestamp.Equal(b.cmd.Timestamp) {
				return a.cmd.Timestamp.Before(b.cmd.Timestamp)
			}
		}
	}
	return a.seq < b.seq
}

// commandHeap is the container/heap.Interface implementation. All
// mutation goes through container/heap's exported functions so the
// invariant is maintained by the standard library, not by hand-rolled
// index arithmetic.
type commandHeap []queuedCommand

func (h commandHeap) Len() int            { return len(h) }
func (h commandHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h commandHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *commandHeap) Push(x interface{}) { *h = append(*h, x.(queuedCommand)) }
func (h *commandHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// CommandQueue is the global, lane-agnostic priority queue of pending
// CompositorCommands.
type CommandQueue struct {
	h       commandHeap
	nextSeq uint64
}

// NewCommandQueue returns an empty queue.
func NewCommandQueue() *CommandQueue {
	q := &CommandQueue{}
	heap.Init(&q.h)
	return q
}

// Push enqueues cmd, assigning it the next submission sequence number
// for FIFO tie-breaking.
func (q *CommandQueue) Push(cmd *proxy.CompositorCommand) {
	seq := q.nextSeq
	q.nextSeq++
	heap.Push(&q.h, queuedCommand{cmd: cmd, seq: seq})
}

// Len reports the number of pending commands.
func (q *CommandQueue) Len() int { return q.h.Len() }

// Peek returns the highest-priority command without removing it, and
// whether the queue was non-empty.
func (q *CommandQueue) Peek() (*proxy.CompositorCommand, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return q.h[0].cmd, true
}

// Pop removes and returns the highest-priority command.
func (q *CommandQueue) Pop() (*proxy.CompositorCommand, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.h).(queuedCommand).cmd, true
}

// RemoveMatching removes every queued command (by client id and
// command id range, inclusive) and returns them, for Cancel execution
// (spec §4.4 "Cancel semantics"). Packets are matched/removed as a
// whole by their own id, mirroring that in-flight commands — and
// already-submitted packets — are never split apart.
func (q *CommandQueue) RemoveMatching(client proxy.ClientID, scope proxy.CancelRange) []*proxy.CompositorCommand {
	var removed []*proxy.CompositorCommand
	kept := q.h[:0:0]
	for _, qc := range q.h {
		if qc.cmd.ClientID == client && scope.Contains(qc.cmd.ID) {
			removed = append(removed, qc.cmd)
			continue
		}
		kept = append(kept, qc)
	}
	q.h = kept
	heap.Init(&q.h)
	return removed
}

// NextDeadline reports the deadline of the head command (the one Pop
// would return next) and whether it has one.
func (q *CommandQueue) NextDeadline() (time.Time, bool) {
	head, ok := q.Peek()
	if !ok || !head.HasDeadline {
		return time.Time{}, false
	}
	return head.Deadline, true
}

// DrainAll removes every pending command, for shutdown.
func (q *CommandQueue) DrainAll() []*proxy.CompositorCommand {
	all := make([]*proxy.CompositorCommand, 0, q.h.Len())
	for q.h.Len() > 0 {
		cmd, _ := q.Pop()
		all = append(all, cmd)
	}
	return all
}
