package monitor

import (
	"fmt"
	"strings"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/lorawatch-core/internal/observer"
	"github.com/nerrad567/lorawatch-core/internal/telemetry"
)

// DefaultAlertKeyword marks an uplink message as an alert.
const DefaultAlertKeyword = "Alert"

// Dispatcher turns ChirpStack integration events into registry updates
// and notifications. HandleMessage is registered as the MQTT handler for
// the event topic.
//
// Events are handled synchronously in arrival order. Alert fan-out is
// handed to the FanOut and runs in the background.
type Dispatcher struct {
	registry *device.Registry
	notifier *observer.Notifier
	fanOut   *FanOut
	keyword  string
	logger   Logger
}

// NewDispatcher creates a dispatcher. fanOut may be nil, in which case
// alerts are recorded but no downlinks are sent.
func NewDispatcher(registry *device.Registry, notifier *observer.Notifier, fanOut *FanOut, keyword string) *Dispatcher {
	if keyword == "" {
		keyword = DefaultAlertKeyword
	}
	return &Dispatcher{
		registry: registry,
		notifier: notifier,
		fanOut:   fanOut,
		keyword:  keyword,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// HandleMessage processes one event. The event type is the final topic
// segment. Unknown types, undecodable payloads and unregistered devices
// are returned as errors for the MQTT layer to log; a panic in a handler
// is recovered and returned as ErrHandlerPanic.
func (d *Dispatcher) HandleMessage(topic string, payload []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("event handler panic recovered", "topic", topic, "panic", rec)
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
		}
	}()

	eventType := telemetry.EventType(mqtt.EventType(topic))
	switch eventType {
	case telemetry.EventUplink:
		return d.handleUplink(payload)
	case telemetry.EventJoin:
		return summarize(d, telemetry.DecodeJoin, payload)
	case telemetry.EventStatus:
		return summarize(d, telemetry.DecodeStatus, payload)
	case telemetry.EventAck:
		return summarize(d, telemetry.DecodeAck, payload)
	case telemetry.EventTxAck:
		return summarize(d, telemetry.DecodeTxAck, payload)
	case telemetry.EventLog:
		return summarize(d, telemetry.DecodeLog, payload)
	default:
		return fmt.Errorf("%w: %q on %s", ErrUnknownEvent, eventType, topic)
	}
}

// summarizer is an event that renders a log line.
type summarizer interface {
	EUI() string
	Summary() string
}

// summarize decodes a non-uplink event and emits its summary line.
func summarize[T summarizer](d *Dispatcher, decode func([]byte) (T, error), payload []byte) error {
	ev, err := decode(payload)
	if err != nil {
		return err
	}
	d.notifier.Event(ev.EUI(), ev.Summary())
	return nil
}

func (d *Dispatcher) handleUplink(payload []byte) error {
	up, err := telemetry.DecodeUplink(payload)
	if err != nil {
		return err
	}

	if _, ok := d.registry.Get(up.DevEUI); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, up.DevEUI)
	}

	seen, err := d.registry.MarkSeenNow(up.DevEUI)
	if err != nil {
		// Removed between lookup and update.
		return fmt.Errorf("%w: %s", ErrUnknownDevice, up.DevEUI)
	}
	name := displayName(seen, up.Name)

	latest := seen
	if strings.Contains(up.Message, d.keyword) {
		if alerted := d.raiseAlert(seen.DevEUI, name, up.Message); alerted != nil {
			latest = alerted
		}
	} else if !seen.HasActiveAlert() {
		now := d.registry.Now()
		updated, err := d.registry.ApplyTelemetry(up.DevEUI, device.Telemetry{
			Status:     device.StatusOnline,
			ObservedAt: &now,
			RSSI:       up.RSSI,
			SNR:        up.SNR,
		})
		if err == nil {
			latest = updated
		}
		d.notifier.Event(up.DevEUI, fmt.Sprintf("Uplink received from device %s - %s", name, up.Message))
	}

	d.notifier.DeviceChanged(latest)
	d.notifier.Event(up.DevEUI, up.Summary())
	return nil
}

// raiseAlert latches the alert, announces it and starts the fan-out.
func (d *Dispatcher) raiseAlert(devEUI, name, message string) *device.Device {
	alerted, err := d.registry.SetAlert(devEUI)
	if err != nil {
		return nil
	}

	d.logger.Warn("alert raised", "dev_eui", devEUI, "name", name)
	d.notifier.Alert(devEUI, fmt.Sprintf("Alert triggered by device %s - %s", name, message))

	if d.fanOut != nil {
		d.fanOut.Trigger(*alerted)
	}
	return alerted
}

// displayName prefers the registered name, then the name in the event.
func displayName(d *device.Device, eventName string) string {
	if d != nil && d.Name != "" {
		return d.Name
	}
	if eventName != "" {
		return eventName
	}
	return telemetry.UnknownDevice
}
