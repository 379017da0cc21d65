// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue

import (
	"testing"
	"time"

	"github.com/omegawtk/compositor/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(id proxy.CommandID, deadline time.Time, hasDeadline bool) *proxy.CompositorCommand {
	return &proxy.CompositorCommand{
		Kind:        proxy.KindRender,
		ID:          id,
		HasDeadline: hasDeadline,
		Deadline:    deadline,
		Handle:      proxy.NewCommandHandle(),
	}
}

func cancelCmd(client proxy.ClientID, start, end proxy.CommandID) *proxy.CompositorCommand {
	return &proxy.CompositorCommand{
		Kind:        proxy.KindCancel,
		ClientID:    client,
		CancelScope: proxy.CancelRange{Start: start, End: end},
		Handle:      proxy.NewCommandHandle(),
	}
}

// TestDeadlineTieBreakOrder is spec scenario S3: three Render commands
// enqueued with deadlines t+30ms, t+10ms, t+20ms (in that order) must
// dequeue in the order t+10ms, t+20ms, t+30ms.
func TestDeadlineTieBreakOrder(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := NewCommandQueue()

	first := render(1, base.Add(30*time.Millisecond), true)
	second := render(2, base.Add(10*time.Millisecond), true)
	third := render(3, base.Add(20*time.Millisecond), true)

	q.Push(first)
	q.Push(second)
	q.Push(third)

	var order []proxy.CommandID
	for q.Len() > 0 {
		cmd, _ := q.Pop()
		order = append(order, cmd.ID)
	}
	assert.Equal(t, []proxy.CommandID{2, 3, 1}, order)
}

func TestCommandsWithDeadlineSortBeforeCommandsWithout(t *testing.T) {
	base := time.Now()
	q := NewCommandQueue()

	noDeadline := render(1, time.Time{}, false)
	withDeadline := render(2, base.Add(time.Hour), true)

	q.Push(noDeadline)
	q.Push(withDeadline)

	first, _ := q.Pop()
	assert.Equal(t, proxy.CommandID(2), first.ID)
}

func TestNoDeadlineCommandsPreserveSubmissionOrder(t *testing.T) {
	q := NewCommandQueue()
	a := render(1, time.Time{}, false)
	b := render(2, time.Time{}, false)
	c := render(3, time.Time{}, false)
	q.Push(a)
	q.Push(b)
	q.Push(c)

	var order []proxy.CommandID
	for q.Len() > 0 {
		cmd, _ := q.Pop()
		order = append(order, cmd.ID)
	}
	assert.Equal(t, []proxy.CommandID{1, 2, 3}, order)
}

func TestCancelAlwaysDequeuesFirst(t *testing.T) {
	q := NewCommandQueue()
	q.Push(render(1, time.Time{}, false))
	q.Push(render(2, time.Now().Add(time.Millisecond), true))
	cancel := cancelCmd(proxy.ClientID{}, 1, 1)
	q.Push(cancel)

	head, _ := q.Peek()
	assert.Equal(t, proxy.KindCancel, head.Kind)
}

// TestCancelInRangeRemovesOnlyScopedCommands is spec scenario S4: Render commands with ids
// 1..5 enqueued, then a Cancel[2,4]. Commands 1 and 5 survive; 2..4
// are removed and resolve Failed; the Cancel itself is handled by the
// caller (Scheduler), not CommandQueue, so this test only checks the
// removal half of the contract.
func TestCancelInRangeRemovesOnlyScopedCommands(t *testing.T) {
	var client proxy.ClientID
	q := NewCommandQueue()
	for id := proxy.CommandID(1); id <= 5; id++ {
		cmd := render(id, time.Time{}, false)
		cmd.ClientID = client
		q.Push(cmd)
	}

	removed := q.RemoveMatching(client, proxy.CancelRange{Start: 2, End: 4})
	require.Len(t, removed, 3)
	for _, r := range removed {
		assert.True(t, r.ID >= 2 && r.ID <= 4)
	}

	var remaining []proxy.CommandID
	for q.Len() > 0 {
		cmd, _ := q.Pop()
		remaining = append(remaining, cmd.ID)
	}
	assert.ElementsMatch(t, []proxy.CommandID{1, 5}, remaining)
}

func TestViewClassSortsBeforeRender(t *testing.T) {
	q := NewCommandQueue()
	r := render(1, time.Time{}, false)
	v := &proxy.CompositorCommand{Kind: proxy.KindLayerResize, ID: 2, Handle: proxy.NewCommandHandle()}
	q.Push(r)
	q.Push(v)

	head, _ := q.Peek()
	assert.Equal(t, proxy.CommandID(2), head.ID)
}

func TestDrainAllEmptiesQueue(t *testing.T) {
	q := NewCommandQueue()
	q.Push(render(1, time.Time{}, false))
	q.Push(render(2, time.Time{}, false))

	drained := q.DrainAll()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, q.Len())
}
