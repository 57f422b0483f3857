package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/directory"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

func TestFanOut_Targets(t *testing.T) {
	f := newFixture(t)
	f.loadSite()

	fanOut := NewFanOut(f.registry, f.dir, f.notifier, FanOutConfig{})
	var euis []string
	for _, d := range fanOut.Targets() {
		euis = append(euis, d.DevEUI)
	}
	assert.Equal(t, []string{euiSiren, euiRanger, euiBadge}, euis)

	sirensOnly := NewFanOut(f.registry, f.dir, f.notifier, FanOutConfig{Classes: []device.Class{device.ClassAudibleAlert}})
	require.Len(t, sirensOnly.Targets(), 1)
	assert.Equal(t, euiSiren, sirensOnly.Targets()[0].DevEUI)
}

func TestFanOut_DispatchAttemptsEveryTarget(t *testing.T) {
	f := newFixture(t)
	f.loadSite()
	fanOut := NewFanOut(f.registry, f.dir, f.notifier, FanOutConfig{Confirmed: false, FPort: 12})

	refused := errors.New("directory: unavailable")
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiSiren, []byte{0xFF}, false, uint32(12)).Return("", refused)
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiRanger, []byte{0xFF}, false, uint32(12)).Return("q-ranger", nil)
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiBadge, []byte{0xFF}, false, uint32(12)).Return("q-badge", nil)

	source, _ := f.registry.Get(euiBadge)
	results := fanOut.Dispatch(context.Background(), *source)

	require.Len(t, results, 3)
	assert.Equal(t, euiSiren, results[0].DevEUI)
	assert.ErrorIs(t, results[0].Err, refused)
	assert.Equal(t, DispatchResult{DevEUI: euiRanger, Name: "Ranger", QueueItemID: "q-ranger"}, results[1])
	assert.Equal(t, DispatchResult{DevEUI: euiBadge, Name: "Badge", QueueItemID: "q-badge"}, results[2])

	events := f.rec.texts(observer.KindEvent)
	assert.Len(t, events, 3)
	assert.Contains(t, events, "Downlink to device Siren - a000000000000001 failed, [0xFF] - Alert Response: directory: unavailable")
	assert.Contains(t, events, "Downlink sent to device Ranger - b000000000000002, [0xFF] - Alert Response")
}

func TestFanOut_PanickingDownlinkDoesNotStopOthers(t *testing.T) {
	f := newFixture(t)
	f.loadSite()
	fanOut := NewFanOut(f.registry, f.dir, f.notifier, FanOutConfig{Concurrency: 1})

	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiSiren, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, []byte, bool, uint32) (string, error) {
			panic("transport bug")
		})
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiRanger, gomock.Any(), gomock.Any(), gomock.Any()).Return("q-ranger", nil)
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiBadge, gomock.Any(), gomock.Any(), gomock.Any()).Return("q-badge", nil)

	source, _ := f.registry.Get(euiBadge)
	fanOut.Trigger(*source)
	fanOut.Wait()

	events := f.rec.texts(observer.KindEvent)
	require.Len(t, events, 3)
	assert.Contains(t, events, "Downlink to device Siren - a000000000000001 failed, [0xFF] - Alert Response: monitor: event handler panic: transport bug")
	assert.Contains(t, events, "Downlink sent to device Ranger - b000000000000002, [0xFF] - Alert Response")
	assert.Contains(t, events, "Downlink sent to device Badge - d000000000000004, [0xFF] - Alert Response")

	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiSiren, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, []byte, bool, uint32) (string, error) {
			panic("transport bug")
		})
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("q", nil).Times(2)

	results := fanOut.Dispatch(context.Background(), *source)
	require.Len(t, results, 3)
	assert.ErrorIs(t, results[0].Err, ErrHandlerPanic)
	assert.Empty(t, results[0].QueueItemID)
	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestFanOut_RespectsConcurrencyLimit(t *testing.T) {
	f := newFixture(t)
	f.loadSite()
	fanOut := NewFanOut(f.registry, f.dir, f.notifier, FanOutConfig{Concurrency: 1})

	var inFlight, peak atomic.Int32
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, []byte, bool, uint32) (string, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return "q", nil
		}).Times(3)

	source, _ := f.registry.Get(euiSiren)
	fanOut.Dispatch(context.Background(), *source)

	assert.Equal(t, int32(1), peak.Load())
}

func TestFanOut_NoTargets(t *testing.T) {
	f := newFixture(t)
	f.registry.LoadAll([]device.Descriptor{{DevEUI: euiGateway, Name: "Relay"}})
	fanOut := NewFanOut(f.registry, f.dir, f.notifier, FanOutConfig{})

	source, _ := f.registry.Get(euiGateway)
	assert.Empty(t, fanOut.Dispatch(context.Background(), *source))
	assert.Zero(t, f.rec.count())
}

func TestFanOut_TriggerRunsInBackground(t *testing.T) {
	f := newFixture(t)
	f.registry.LoadAll([]device.Descriptor{{DevEUI: euiSiren, Name: "Siren", Description: "Sound Unit"}})
	fanOut := NewFanOut(f.registry, f.dir, f.notifier, FanOutConfig{})

	release := make(chan struct{})
	f.dir.EXPECT().EnqueueDownlink(gomock.Any(), euiSiren, []byte{0xFF}, false, uint32(DefaultDownlinkFPort)).
		DoAndReturn(func(context.Context, string, []byte, bool, uint32) (string, error) {
			<-release
			return "", directory.ErrUnavailable
		})

	source, _ := f.registry.Get(euiSiren)
	fanOut.Trigger(*source)
	assert.Empty(t, f.rec.texts(observer.KindEvent))

	close(release)
	fanOut.Wait()
	assert.Len(t, f.rec.texts(observer.KindEvent), 1)
}
