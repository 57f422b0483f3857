package telemetry

import "errors"

var (
	// ErrDecode is returned when a payload is not valid ChirpStack protobuf JSON.
	ErrDecode = errors.New("telemetry: decode failed")

	// ErrNoDevice is returned when an event carries no DevEUI.
	ErrNoDevice = errors.New("telemetry: event has no device")
)
