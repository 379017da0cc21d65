// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue

import "sync"

// MainThreadExecutor runs a command's backend work. Implementations
// decide whether that happens inline on the scheduler goroutine or
// hopped to a platform main thread (spec §4.4 "Platform constraint").
type MainThreadExecutor interface {
	Execute(fn func())
}

// MainThreadExecutorFunc adapts a plain function to a
// MainThreadExecutor, mirroring the stdlib http.HandlerFunc idiom.
// Primarily useful for tests that need a custom executor without
// declaring a named type.
type MainThreadExecutorFunc func(fn func())

func (f MainThreadExecutorFunc) Execute(fn func()) { f(fn) }

// InlineExecutor runs fn synchronously on the calling (scheduler)
// goroutine. Used on platforms without a main-thread GPU submission
// constraint.
type InlineExecutor struct{}

func (InlineExecutor) Execute(fn func()) { fn() }

// SerialExecutor hops execution to a single dedicated goroutine
// (standing in for the platform main thread, c.f. the source's
// App.RunOnMain(func(){...}) call sites) and blocks until fn
// completes. Used on platforms that require backend submission to
// happen on a specific OS thread.
type SerialExecutor struct {
	once sync.Once
	work chan func()
}

// NewSerialExecutor starts the dedicated goroutine and returns an
// executor bound to it.
func NewSerialExecutor() *SerialExecutor {
	e := &SerialExecutor{work: make(chan func())}
	go e.loop()
	return e
}

func (e *SerialExecutor) loop() {
	for fn := range e.work {
		fn()
	}
}

// Execute submits fn to the dedicated goroutine and blocks until it
// has run.
func (e *SerialExecutor) Execute(fn func()) {
	done := make(chan struct{})
	e.work <- func() {
		fn()
		close(done)
	}
	<-done
}

// Close stops the dedicated goroutine. Safe to call once; further
// calls are no-ops.
func (e *SerialExecutor) Close() {
	e.once.Do(func() { close(e.work) })
}
