package telemetry

import "time"

// EventType is the final segment of a ChirpStack event topic.
type EventType string

// ChirpStack integration event types handled by the monitor.
const (
	EventUplink EventType = "up"
	EventJoin   EventType = "join"
	EventStatus EventType = "status"
	EventAck    EventType = "ack"
	EventTxAck  EventType = "txack"
	EventLog    EventType = "log"
)

// Placeholders used when an optional field is absent.
const (
	NoMessage     = "No message"
	UnknownDevice = "Unknown device"
	NotAvailable  = "N/A"
)

// Device identifies the end-device an event belongs to.
type Device struct {
	DevEUI string
	Name   string
}

// EUI returns the device EUI.
func (d Device) EUI() string { return d.DevEUI }

// Uplink is a decoded "up" event.
type Uplink struct {
	Device
	Time    *time.Time
	FPort   uint32
	Message string

	// Radio metrics from the first receiving gateway. Nil when no
	// gateway metadata was attached.
	RSSI *int
	SNR  *float64
}

// Join is a decoded "join" event.
type Join struct {
	Device
	DevAddr string
}

// Status is a decoded "status" event (DevStatusAns).
type Status struct {
	Device
	Time          *time.Time
	Margin        int
	ExternalPower bool

	// BatteryLevel is a percentage; nil when the device cannot measure it.
	BatteryLevel *float64
}

// Ack is a decoded "ack" event for a confirmed downlink.
type Ack struct {
	Device
	QueueItemID  string
	Acknowledged bool
}

// TxAck is a decoded "txack" event: a gateway transmitted a downlink.
type TxAck struct {
	Device
	QueueItemID string
	GatewayID   string
}

// Log is a decoded "log" event.
type Log struct {
	Device
	Level       string
	Code        string
	Description string
}
