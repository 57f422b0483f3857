package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

type publishedMessage struct {
	topic    string
	value    any
	payload  []byte
	retained bool
}

type fakeBus struct {
	mu   sync.Mutex
	msgs []publishedMessage
}

func (b *fakeBus) PublishJSON(topic string, v any, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, publishedMessage{topic: topic, value: v, retained: retained})
	return nil
}

func (b *fakeBus) PublishRetained(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, publishedMessage{topic: topic, payload: payload, retained: true})
	return nil
}

func (b *fakeBus) messages() []publishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publishedMessage(nil), b.msgs...)
}

func TestStatePublisher_MirrorsNotifications(t *testing.T) {
	bus := &fakeBus{}
	p := NewStatePublisher(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	notifier := observer.New()
	notifier.Register(p)

	snapshot := &device.Device{DevEUI: euiSiren, Name: "Siren", Status: device.StatusAlert}
	notifier.DeviceChanged(snapshot)
	notifier.Event(euiSiren, "ignored")
	notifier.Alert(euiSiren, "Alert triggered by device Siren - Alert: tamper")
	notifier.DeviceRemoved(euiSiren)

	require.Eventually(t, func() bool { return len(bus.messages()) == 3 }, time.Second, 5*time.Millisecond)
	msgs := bus.messages()

	assert.Equal(t, "lorawatch/device/a000000000000001/state", msgs[0].topic)
	assert.True(t, msgs[0].retained)
	assert.Equal(t, snapshot, msgs[0].value)

	assert.Equal(t, "lorawatch/alert", msgs[1].topic)
	assert.False(t, msgs[1].retained)
	note, ok := msgs[1].value.(observer.Notification)
	require.True(t, ok)
	assert.Equal(t, "Alert triggered by device Siren - Alert: tamper", note.Text)

	assert.Equal(t, "lorawatch/device/a000000000000001/state", msgs[2].topic)
	assert.True(t, msgs[2].retained)
	assert.Empty(t, msgs[2].payload)
}

func TestStatePublisher_DropsWhenQueueFull(t *testing.T) {
	p := NewStatePublisher(&fakeBus{})

	for i := 0; i < defaultPublishBuffer+3; i++ {
		p.Notify(observer.Notification{Kind: observer.KindAlert, Text: "x"})
	}
	assert.Equal(t, uint64(3), p.Dropped())
}
