// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue

import (
	"errors"
	"sync"
	"time"

	baseerrors "github.com/omegawtk/compositor/base/errors"
	"github.com/omegawtk/compositor/proxy"
)

var errSchedulerNoDispatcher = errors.New("queue: scheduler has no dispatcher attached")

// Dispatcher executes one (possibly Packet-wrapped) command against
// the backend and reports its terminal status. Implemented by the
// backend/compositor glue layer; the scheduler only knows how to pop,
// order, and time commands, never how to execute them.
type Dispatcher interface {
	Dispatch(cmd *proxy.CompositorCommand) (proxy.CommandStatus, proxy.FailureReason)
}

// Scheduler is the single global dispatch thread described in spec
// §4.4: one goroutine pops the highest-priority command from the
// CommandQueue, waits out its deadline if it has one, and executes it
// via a MainThreadExecutor.
type Scheduler struct {
	mu       sync.Mutex
	queue    *CommandQueue
	wake     chan struct{}
	shutdown bool
	done     chan struct{}

	executor   MainThreadExecutor
	dispatcher Dispatcher
}

// NewScheduler starts the dispatch goroutine immediately and returns
// the running Scheduler. dispatcher may be set later via
// SetDispatcher if the backend isn't constructed yet; commands
// dispatched before one is set execute as SubmissionFailed.
func NewScheduler(executor MainThreadExecutor, dispatcher Dispatcher) *Scheduler {
	s := &Scheduler{
		queue:      NewCommandQueue(),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		executor:   executor,
		dispatcher: dispatcher,
	}
	go s.run()
	return s
}

// SetDispatcher attaches (or replaces) the backend dispatcher.
func (s *Scheduler) SetDispatcher(d Dispatcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatcher = d
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Submit implements proxy.SchedulerFrontend: it enqueues cmd and wakes
// the dispatch goroutine.
func (s *Scheduler) Submit(cmd *proxy.CompositorCommand) {
	s.mu.Lock()
	s.queue.Push(cmd)
	s.mu.Unlock()
	s.signal()
}

// Len reports the number of commands currently queued, for tests and
// diagnostics.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Shutdown stops the dispatch goroutine after draining every pending
// command as Failed, and blocks until the goroutine has exited. Safe
// to call from any goroutine other than the dispatch loop itself.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.signal()
	<-s.done
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		if s.shutdown {
			drained := s.queue.DrainAll()
			s.mu.Unlock()
			for _, cmd := range drained {
				cmd.ResolveAll(proxy.StatusFailed, proxy.ReasonSubmissionFailed)
			}
			close(s.done)
			return
		}

		if s.queue.Len() == 0 {
			s.mu.Unlock()
			<-s.wake
			continue
		}

		head, _ := s.queue.Peek()
		if head.Kind == proxy.KindCancel {
			s.queue.Pop()
			removed := s.queue.RemoveMatching(head.ClientID, head.CancelScope)
			s.mu.Unlock()
			for _, r := range removed {
				r.ResolveAll(proxy.StatusFailed, proxy.ReasonCancelled)
			}
			head.Handle.Resolve(proxy.StatusOk, proxy.ReasonNone)
			continue
		}

		if head.HasDeadline {
			now := time.Now()
			if head.Deadline.After(now) {
				wait := head.Deadline.Sub(now)
				s.mu.Unlock()
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-s.wake:
					timer.Stop()
				}
				continue
			}
		}

		cmd, _ := s.queue.Pop()
		s.mu.Unlock()
		s.dispatch(cmd)
	}
}

func (s *Scheduler) dispatch(cmd *proxy.CompositorCommand) {
	s.mu.Lock()
	dispatcher := s.dispatcher
	s.mu.Unlock()

	if dispatcher == nil {
		cmd.ResolveAll(proxy.StatusFailed, proxy.ReasonSubmissionFailed)
		baseerrors.Ignore(errSchedulerNoDispatcher)
		return
	}

	s.executor.Execute(func() {
		status, reason := dispatcher.Dispatch(cmd)
		cmd.ResolveAll(status, reason)
	})
}
