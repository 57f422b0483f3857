package device

import "errors"

// Domain errors for the device package.
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a DevEUI is not in the registry.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when adding a DevEUI that is already registered.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when a record or descriptor lacks its identity.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidDevEUI is returned when a DevEUI is not 16 hex characters.
	ErrInvalidDevEUI = errors.New("device: invalid DevEUI")

	// ErrInvalidNwkKey is returned when a network key is not 32 hex characters.
	ErrInvalidNwkKey = errors.New("device: invalid network key")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidStatus is returned when telemetry carries a status it may not set.
	ErrInvalidStatus = errors.New("device: invalid status")
)
