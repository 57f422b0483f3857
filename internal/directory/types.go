package directory

import "github.com/nerrad567/lorawatch-core/internal/device"

// Profile is a ChirpStack device profile.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// NewDevice describes a device to provision in ChirpStack.
type NewDevice struct {
	DevEUI        string
	Name          string
	ProfileID     string
	ApplicationID string

	// NwkKey is the LoRaWAN 1.1 network root key (OTAA), 32 hex characters.
	NwkKey string

	// Class is stored as the ChirpStack description so it survives reloads.
	Class device.Class
}
