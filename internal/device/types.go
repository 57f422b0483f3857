package device

import (
	"encoding/json"
	"strings"
	"time"
)

// Device is the monitor's view of one LoRaWAN end-device.
//
// Records held by the Registry are never modified after they are stored;
// every mutation builds a new record and swaps it in. Callers only ever
// see deep copies.
type Device struct {
	// Identity
	DevEUI string `json:"dev_eui"`
	Name   string `json:"name"`
	Class  Class  `json:"class"`

	// State
	Status     Status     `json:"status"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`

	// Radio metrics from the most recent uplink. Nil means not available.
	RSSI *int     `json:"rssi,omitempty"`
	SNR  *float64 `json:"snr,omitempty"`
}

// HasActiveAlert reports whether the device is latched in the Alert state.
func (d *Device) HasActiveAlert() bool {
	return d.Status == StatusAlert
}

// MarshalJSON adds the derived has_active_alert field.
func (d Device) MarshalJSON() ([]byte, error) {
	type plain Device
	return json.Marshal(struct {
		plain
		HasActiveAlert bool `json:"has_active_alert"`
	}{plain: plain(d), HasActiveAlert: d.HasActiveAlert()})
}

// DeepCopy creates a complete independent copy of the Device.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d

	if d.LastSeenAt != nil {
		t := *d.LastSeenAt
		cpy.LastSeenAt = &t
	}
	if d.RSSI != nil {
		v := *d.RSSI
		cpy.RSSI = &v
	}
	if d.SNR != nil {
		v := *d.SNR
		cpy.SNR = &v
	}

	return &cpy
}

// Class is the device's role in the fleet. The set is open: any
// description stored in the directory becomes a class.
type Class string

// Known device classes. The string values match the descriptions stored
// on devices in ChirpStack.
const (
	ClassRangingUnit  Class = "LiDAR unit"
	ClassAudibleAlert Class = "Sound Unit"
	ClassWearable     Class = "Wearable Alert Unit"
	ClassUnknown      Class = "Unknown"
)

// AlertTargetClasses returns the classes that receive the alert-response
// downlink by default.
func AlertTargetClasses() []Class {
	return []Class{ClassRangingUnit, ClassAudibleAlert, ClassWearable}
}

// ParseClass maps a directory description to a Class.
// Blank descriptions map to ClassUnknown.
func ParseClass(description string) Class {
	s := strings.TrimSpace(description)
	if s == "" {
		return ClassUnknown
	}
	return Class(s)
}

// Descriptor is a device as listed by the device directory.
type Descriptor struct {
	DevEUI      string
	Name        string
	Description string
	LastSeenAt  *time.Time
}

// Telemetry is a status observation carried by an uplink.
type Telemetry struct {
	Status     Status
	ObservedAt *time.Time
	RSSI       *int
	SNR        *float64
}

// Stats summarises the registry contents.
type Stats struct {
	Total        int            `json:"total"`
	ActiveAlerts int            `json:"active_alerts"`
	ByStatus     map[Status]int `json:"by_status"`
	ByClass      map[Class]int  `json:"by_class"`
}
