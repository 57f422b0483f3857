package monitor

import (
	"context"
	"sync/atomic"

	"github.com/nerrad567/lorawatch-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

// defaultPublishBuffer is the queue depth between the notifier and the broker.
const defaultPublishBuffer = 256

// StatePublisher mirrors notifications onto MQTT: a retained snapshot per
// device, a cleared retained topic on removal and a plain message per
// alert line.
//
// Notify only queues. Publishing happens on the Run goroutine, so an MQTT
// handler that triggers a notification never waits on the broker. When
// the queue is full the notification is dropped and counted.
type StatePublisher struct {
	bus    Bus
	topics mqtt.Topics
	queue  chan observer.Notification
	logger Logger

	dropped atomic.Uint64
}

// NewStatePublisher creates a publisher writing to bus.
func NewStatePublisher(bus Bus) *StatePublisher {
	return &StatePublisher{
		bus:    bus,
		queue:  make(chan observer.Notification, defaultPublishBuffer),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the publisher.
func (p *StatePublisher) SetLogger(logger Logger) {
	p.logger = logger
}

// Notify implements observer.Listener.
func (p *StatePublisher) Notify(n observer.Notification) {
	switch n.Kind {
	case observer.KindDeviceChanged, observer.KindDeviceRemoved, observer.KindAlert:
	default:
		return
	}

	select {
	case p.queue <- n:
	default:
		if p.dropped.Add(1) == 1 {
			p.logger.Warn("state publisher queue full, dropping notifications")
		}
	}
}

// Dropped returns how many notifications were discarded on a full queue.
func (p *StatePublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Run publishes queued notifications until ctx is cancelled.
func (p *StatePublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-p.queue:
			if err := p.publish(n); err != nil {
				p.logger.Warn("state publish failed",
					"kind", string(n.Kind),
					"dev_eui", n.DevEUI,
					"error", err,
				)
			}
		}
	}
}

func (p *StatePublisher) publish(n observer.Notification) error {
	switch n.Kind {
	case observer.KindDeviceChanged:
		if n.Device == nil {
			return nil
		}
		return p.bus.PublishJSON(p.topics.DeviceState(n.DevEUI), n.Device, true)
	case observer.KindDeviceRemoved:
		return p.bus.PublishRetained(p.topics.DeviceState(n.DevEUI), nil)
	case observer.KindAlert:
		return p.bus.PublishJSON(p.topics.Alert(), n, false)
	}
	return nil
}
