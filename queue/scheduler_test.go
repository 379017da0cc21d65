// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/omegawtk/compositor/proxy"
	"github.com/omegawtk/compositor/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	seen []*proxy.CompositorCommand
}

func (d *recordingDispatcher) Dispatch(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason) {
	d.mu.Lock()
	d.seen = append(d.seen, cmd)
	d.mu.Unlock()
	return proxy.StatusOk, proxy.ReasonNone
}

func waitHandle(t *testing.T, h *proxy.CommandHandle) (proxy.CommandStatus, proxy.FailureReason) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, reason, err := h.Wait(ctx)
	require.NoError(t, err)
	return status, reason
}

func newRender(id proxy.CommandID, client proxy.ClientID) *proxy.CompositorCommand {
	return &proxy.CompositorCommand{
		Kind:     proxy.KindRender,
		ID:       id,
		ClientID: client,
		Handle:   proxy.NewCommandHandle(),
	}
}

func TestSchedulerDispatchesSubmittedCommand(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	s := queue.NewScheduler(queue.InlineExecutor{}, dispatcher)
	defer s.Shutdown()

	cmd := newRender(1, proxy.ClientID{})
	s.Submit(cmd)

	status, _ := waitHandle(t, cmd.Handle)
	assert.Equal(t, proxy.StatusOk, status)
}

// TestSchedulerCancelInRange is spec scenario S4 end to end through
// the Scheduler: commands 1..5 submitted, then Cancel[2,4]. 1 and 5
// execute; 2..4 resolve Failed/Cancelled; the Cancel resolves Ok.
func TestSchedulerCancelInRange(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	s := queue.NewScheduler(queue.InlineExecutor{}, dispatcher)
	defer s.Shutdown()

	var client proxy.ClientID
	cmds := make([]*proxy.CompositorCommand, 5)
	for i := range cmds {
		cmds[i] = newRender(proxy.CommandID(i+1), client)
	}

	// Hold everything with a future deadline so the Cancel, pushed
	// last, is guaranteed to be seen by the dispatch loop before any
	// of 1..5 execute.
	future := time.Now().Add(200 * time.Millisecond)
	for _, c := range cmds {
		c.HasDeadline = true
		c.Deadline = future
		s.Submit(c)
	}

	cancel := &proxy.CompositorCommand{
		Kind:        proxy.KindCancel,
		ClientID:    client,
		CancelScope: proxy.CancelRange{Start: 2, End: 4},
		Handle:      proxy.NewCommandHandle(),
	}
	s.Submit(cancel)

	cancelStatus, _ := waitHandle(t, cancel.Handle)
	assert.Equal(t, proxy.StatusOk, cancelStatus)

	for i, c := range cmds {
		id := i + 1
		if id >= 2 && id <= 4 {
			status, reason, err := func() (proxy.CommandStatus, proxy.FailureReason, error) {
				ctx, cancelFn := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancelFn()
				return c.Handle.Wait(ctx)
			}()
			require.NoError(t, err)
			assert.Equal(t, proxy.StatusFailed, status)
			assert.Equal(t, proxy.ReasonCancelled, reason)
		} else {
			status, _ := waitHandle(t, c.Handle)
			assert.Equal(t, proxy.StatusOk, status)
		}
	}
}

func TestSchedulerShutdownDrainsAsFailed(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	blockDone := make(chan struct{})
	blockingExecutor := queue.MainThreadExecutorFunc(func(fn func()) {
		<-blockDone
		fn()
	})
	s := queue.NewScheduler(blockingExecutor, dispatcher)

	holder := newRender(1, proxy.ClientID{})
	holder.HasDeadline = false
	s.Submit(holder)

	// Give the dispatch loop a moment to pick up `holder` and start
	// blocking on the executor before we enqueue the command that
	// should never get a chance to run.
	time.Sleep(20 * time.Millisecond)

	pending := newRender(2, proxy.ClientID{})
	s.Submit(pending)

	shutdownDone := make(chan struct{})
	go func() {
		s.Shutdown()
		close(shutdownDone)
	}()
	close(blockDone)
	<-shutdownDone

	status, reason := waitHandle(t, pending.Handle)
	assert.Equal(t, proxy.StatusFailed, status)
	assert.Equal(t, proxy.ReasonSubmissionFailed, reason)
}

func TestSchedulerNoDispatcherFailsCommands(t *testing.T) {
	s := queue.NewScheduler(queue.InlineExecutor{}, nil)
	defer s.Shutdown()

	cmd := newRender(1, proxy.ClientID{})
	s.Submit(cmd)

	status, reason := waitHandle(t, cmd.Handle)
	assert.Equal(t, proxy.StatusFailed, status)
	assert.Equal(t, proxy.ReasonSubmissionFailed, reason)
}
