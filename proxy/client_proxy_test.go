// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proxy_test

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/omegawtk/compositor/canvas"
	"github.com/omegawtk/compositor/layer"
	"github.com/omegawtk/compositor/math32"
	"github.com/omegawtk/compositor/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFrontend struct {
	submitted []*proxy.CompositorCommand
}

func (f *recordingFrontend) Submit(cmd *proxy.CompositorCommand) {
	f.submitted = append(f.submitted, cmd)
}

func testLayerHandle() layer.LayerHandle {
	tr := layer.New(math32.NewRect(0, 0, 100, 100))
	root, _ := tr.RootLayer(tr.RootLimb())
	return root
}

func TestLaneAndPacketIDStability(t *testing.T) {
	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 7)
	frontend := &recordingFrontend{}
	p.SetFrontend(frontend)

	handle := testLayerHandle()
	rect := math32.NewRect(0, 0, 10, 10)

	p.BeginRecord()
	p.QueueLayerResize(handle, rect, nil)
	p.QueueLayerResize(handle, rect, nil)
	p.EndRecord()

	require.Len(t, frontend.submitted, 1)
	packet := frontend.submitted[0]
	assert.Equal(t, proxy.KindPacket, packet.Kind)
	assert.EqualValues(t, 7, packet.LaneID)
	assert.EqualValues(t, 1, packet.PacketID)
	require.Len(t, packet.Inner, 2)
	assert.EqualValues(t, 7, packet.Inner[0].LaneID)
	assert.EqualValues(t, 1, packet.Inner[0].PacketID)
	assert.EqualValues(t, 7, packet.Inner[1].LaneID)
	assert.EqualValues(t, 1, packet.Inner[1].PacketID)
	assert.Less(t, packet.Inner[0].ID, packet.Inner[1].ID, "insertion order preserved")
}

func TestEndRecordSingleCommandIsUnwrapped(t *testing.T) {
	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 1)
	frontend := &recordingFrontend{}
	p.SetFrontend(frontend)

	p.BeginRecord()
	p.QueueLayerResize(testLayerHandle(), math32.NewRect(0, 0, 1, 1), nil)
	p.EndRecord()

	require.Len(t, frontend.submitted, 1)
	assert.Equal(t, proxy.KindLayerResize, frontend.submitted[0].Kind)
}

func TestEndRecordZeroCommandsIsNoOp(t *testing.T) {
	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 1)
	frontend := &recordingFrontend{}
	p.SetFrontend(frontend)

	p.BeginRecord()
	p.EndRecord()

	assert.Empty(t, frontend.submitted)
}

func TestNestedRecordOnlyOutermostSubmits(t *testing.T) {
	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 1)
	frontend := &recordingFrontend{}
	p.SetFrontend(frontend)

	p.BeginRecord()
	p.BeginRecord()
	p.QueueLayerResize(testLayerHandle(), math32.NewRect(0, 0, 1, 1), nil)
	p.EndRecord()
	assert.Empty(t, frontend.submitted, "inner EndRecord must not submit")
	p.EndRecord()
	assert.Len(t, frontend.submitted, 1)
}

func TestPeekNextPacketIDIsReservedNotIncrementing(t *testing.T) {
	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 1)
	frontend := &recordingFrontend{}
	p.SetFrontend(frontend)

	first := p.PeekNextPacketID()
	second := p.PeekNextPacketID()
	assert.Equal(t, first, second, "peeking repeatedly must not advance the counter")

	p.BeginRecord()
	p.QueueLayerResize(testLayerHandle(), math32.NewRect(0, 0, 1, 1), nil)
	p.EndRecord()

	require.Len(t, frontend.submitted, 1)
	assert.Equal(t, first, frontend.submitted[0].PacketID, "the reserved id must be consumed by the next submit")

	next := p.PeekNextPacketID()
	assert.Equal(t, first+1, next)
}

func TestQueuedCommandsFailWhenFrontendUnset(t *testing.T) {
	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 1)

	p.BeginRecord()
	h := p.QueueLayerResize(testLayerHandle(), math32.NewRect(0, 0, 1, 1), nil)
	p.EndRecord()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	status, reason, err := h.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, proxy.StatusFailed, status)
	assert.Equal(t, proxy.ReasonSubmissionFailed, reason)
}

func TestQueueCancelRangeContainment(t *testing.T) {
	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 1)
	frontend := &recordingFrontend{}
	p.SetFrontend(frontend)

	p.BeginRecord()
	p.QueueCancel(proxy.CancelRange{Start: 2, End: 4})
	p.EndRecord()

	require.Len(t, frontend.submitted, 1)
	assert.Equal(t, proxy.KindCancel, frontend.submitted[0].Kind)
	assert.True(t, frontend.submitted[0].CancelScope.Contains(2))
	assert.True(t, frontend.submitted[0].CancelScope.Contains(4))
	assert.False(t, frontend.submitted[0].CancelScope.Contains(5))
}

func TestClientProxyImplementsFrameSink(t *testing.T) {
	var _ canvas.FrameSink = (*proxy.ClientProxy)(nil)

	target := proxy.NewRenderTargetHandle()
	p := proxy.NewClientProxyWithLane(target, 1)
	frontend := &recordingFrontend{}
	p.SetFrontend(frontend)

	c := canvas.New(testLayerHandle(), p, nil)
	c.DrawRect(math32.NewRect(0, 0, 5, 5), canvas.SolidBrush(color.RGBA{A: 255}), nil)
	c.SendFrame()

	require.Len(t, frontend.submitted, 1)
	cmd := frontend.submitted[0]
	assert.Equal(t, proxy.KindRender, cmd.Kind)
	require.NotNil(t, cmd.Frame)
	assert.Len(t, cmd.Frame.Commands, 1)
}
