package directory

import "errors"

// Errors returned by the ChirpStack client. The wrapped message carries
// ChirpStack's own status text.
var (
	// ErrAlreadyExists is returned when creating a device whose DevEUI is taken.
	ErrAlreadyExists = errors.New("directory: already exists")

	// ErrNotFound is returned when a DevEUI or profile is unknown to ChirpStack.
	ErrNotFound = errors.New("directory: not found")

	// ErrUnavailable is returned when ChirpStack cannot be reached in time.
	ErrUnavailable = errors.New("directory: unavailable")

	// ErrRequestFailed is returned for every other RPC failure.
	ErrRequestFailed = errors.New("directory: request failed")

	// ErrInvalidRequest is returned before any RPC when arguments are unusable.
	ErrInvalidRequest = errors.New("directory: invalid request")
)
