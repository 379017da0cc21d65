// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anim

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
)

// AnimationState is an AnimationHandle's lifecycle state.
type AnimationState int

const (
	StatePending AnimationState = iota
	StateRunning
	StatePaused
	StateCompleted
	StateCancelled
	StateFailed
)

func (s AnimationState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	case StateFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// FillMode controls whether an animation's last sampled value is held
// once it completes.
type FillMode int

const (
	FillNone FillMode = iota
	FillForwards
	FillBackwards
	FillBoth
)

// Direction controls playback direction across iterations.
type Direction int

const (
	DirectionNormal Direction = iota
	DirectionReverse
	DirectionAlternate
	DirectionAlternateReverse
)

// totalIterations derives the whole-lap count a loop runs before
// iterations exhaust; Iterations <= 0 behaves as a single lap.
func totalIterations(timing TimingOptions) int {
	if timing.Iterations <= 0 {
		return 1
	}
	n := int(math.Ceil(float64(timing.Iterations)))
	if n < 1 {
		n = 1
	}
	return n
}

// lapSampleProgress maps a lap's raw (always-forward) clock progress
// to the track-sample progress for that lap, per direction: Reverse
// always flips; Alternate/AlternateReverse flip on alternating laps
// (lap is 0-indexed), matching spec §4.6's "Alternate variants flip
// direction each lap."
func lapSampleProgress(direction Direction, lap int, raw float32) float32 {
	reverse := direction == DirectionReverse
	if direction == DirectionAlternate && lap%2 == 1 {
		reverse = true
	}
	if direction == DirectionAlternateReverse && lap%2 == 0 {
		reverse = true
	}
	if reverse {
		return 1 - raw
	}
	return raw
}

// ClockMode selects which of WallClock/PresentedClock/Hybrid a
// LayerAnimator/ViewAnimator ticks its tracks with.
type ClockMode int

const (
	ClockWall ClockMode = iota
	ClockPresented
	ClockHybrid
)

// TimingOptions configures one animate() call.
type TimingOptions struct {
	Duration   time.Duration
	Delay      time.Duration
	PlaybackRate float32
	Iterations   float32
	FrameRateHint uint16

	FillMode  FillMode
	Direction Direction
	ClockMode ClockMode

	MaxCatchupSteps        int
	PreferResizeSafeBudget bool
}

// DefaultTimingOptions returns the spec's defaults: 300ms duration, no
// delay, rate 1, one iteration, 60fps hint, FillForwards, Normal
// direction, Hybrid clock, one catch-up step, resize-safe budget on.
func DefaultTimingOptions() TimingOptions {
	return TimingOptions{
		Duration:               300 * time.Millisecond,
		PlaybackRate:           1,
		Iterations:             1,
		FrameRateHint:          60,
		FillMode:               FillForwards,
		Direction:              DirectionNormal,
		ClockMode:              ClockHybrid,
		MaxCatchupSteps:        1,
		PreferResizeSafeBudget: true,
	}
}

// AnimationHandle is the shared, atomically-accessed state block
// returned by animate()/animateOnLane(). Mutators are unexported;
// LayerAnimator/ViewAnimator and the clock tick loop are the only
// writers, the caller reads through the exported accessors and the
// Pause/Resume/Cancel/Seek/SetPlaybackRate control surface.
type AnimationHandle struct {
	id AnimationID

	mu sync.Mutex

	state        AnimationState
	progress     float32
	playbackRate float32

	lastSubmittedPacketID proxy.PacketID
	lastPresentedPacketID proxy.PacketID
	droppedCount          uint32
	failureReason         string

	seekTo  *float32
	cancelC chan struct{}
}

// AnimationID identifies one AnimationHandle; ids are drawn from a
// process-wide counter.
type AnimationID uint64

var nextAnimationID atomic.Uint64

func newAnimationHandle(rate float32) *AnimationHandle {
	return &AnimationHandle{
		id:           AnimationID(nextAnimationID.Add(1)),
		state:        StatePending,
		playbackRate: rate,
		cancelC:      make(chan struct{}),
	}
}

func (h *AnimationHandle) ID() AnimationID { return h.id }

func (h *AnimationHandle) State() AnimationState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *AnimationHandle) Progress() float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

func (h *AnimationHandle) PlaybackRate() float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playbackRate
}

func (h *AnimationHandle) LastSubmittedPacketID() proxy.PacketID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastSubmittedPacketID
}

func (h *AnimationHandle) LastPresentedPacketID() proxy.PacketID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastPresentedPacketID
}

func (h *AnimationHandle) DroppedCount() uint32 {
	return atomic.LoadUint32(&h.droppedCount)
}

func (h *AnimationHandle) FailureReason() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failureReason, h.failureReason != ""
}

// Valid reports whether the handle is non-nil (always true for handles
// returned from animate(), kept for symmetry with the source API).
func (h *AnimationHandle) Valid() bool { return h != nil }

// Pause transitions a Running handle to Paused; a no-op otherwise.
func (h *AnimationHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateRunning {
		h.state = StatePaused
	}
}

// Resume transitions a Paused handle back to Running; a no-op otherwise.
func (h *AnimationHandle) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StatePaused {
		h.state = StateRunning
	}
}

// Cancel transitions the handle to Cancelled and signals its tick
// loop to stop and issue the cancelling Cancel command.
func (h *AnimationHandle) Cancel() {
	h.mu.Lock()
	if h.state == StateCancelled || h.state == StateCompleted || h.state == StateFailed {
		h.mu.Unlock()
		return
	}
	h.state = StateCancelled
	h.mu.Unlock()
	close(h.cancelC)
}

// Cancelled returns the channel closed when Cancel is called.
func (h *AnimationHandle) Cancelled() <-chan struct{} { return h.cancelC }

// Seek requests the next tick sample at normalized progress; consumed
// (and cleared) by the next tick.
func (h *AnimationHandle) Seek(normalized float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := math32.Clamp01(normalized)
	h.seekTo = &v
}

// SetPlaybackRate changes the handle's playback rate; must be > 0.
func (h *AnimationHandle) SetPlaybackRate(rate float32) {
	if rate <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playbackRate = rate
}

func (h *AnimationHandle) setState(s AnimationState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
}

func (h *AnimationHandle) setProgress(p float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = p
}

func (h *AnimationHandle) takeSeek() (float32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seekTo == nil {
		return 0, false
	}
	v := *h.seekTo
	h.seekTo = nil
	return v, true
}

func (h *AnimationHandle) setSubmittedPacketID(id proxy.PacketID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSubmittedPacketID = id
}

func (h *AnimationHandle) setPresentedPacketID(id proxy.PacketID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastPresentedPacketID = id
}

func (h *AnimationHandle) incrementDropped() {
	atomic.AddUint32(&h.droppedCount, 1)
}

func (h *AnimationHandle) setFailureReason(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failureReason = reason
}
