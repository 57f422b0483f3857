package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes.
//
// ChirpStack owns the application/... tree; LoRaWatch publishes its own
// state under lorawatch/...
const (
	// TopicPrefixChirpStack is the root of ChirpStack's MQTT integration.
	TopicPrefixChirpStack = "application"

	// TopicPrefixCore is the base for everything LoRaWatch publishes.
	TopicPrefixCore = "lorawatch"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "lorawatch/system"
)

// Topics provides builders for the topics LoRaWatch subscribes and publishes to.
//
//	topics := mqtt.Topics{}
//	topics.DeviceState("0102030405060708")
//	// Returns: "lorawatch/device/0102030405060708/state"
type Topics struct{}

// =============================================================================
// ChirpStack integration topics
// =============================================================================

// ChirpStackEvents returns the pattern matching every event of every
// device in every application.
//
// Pattern: application/+/device/+/event/#
func (Topics) ChirpStackEvents() string {
	return fmt.Sprintf("%s/+/device/+/event/#", TopicPrefixChirpStack)
}

// ChirpStackEvent returns the topic ChirpStack publishes one event type on.
//
// Example: application/8f1c.../device/0102030405060708/event/up
func (Topics) ChirpStackEvent(applicationID, devEUI, event string) string {
	return fmt.Sprintf("%s/%s/device/%s/event/%s", TopicPrefixChirpStack, applicationID, devEUI, event)
}

// =============================================================================
// Core topics
// =============================================================================

// DeviceState returns the retained snapshot topic for one device.
//
// Example: lorawatch/device/0102030405060708/state
func (Topics) DeviceState(devEUI string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixCore, devEUI)
}

// AllDeviceStates returns a pattern matching every device snapshot.
//
// Pattern: lorawatch/device/+/state
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/device/+/state", TopicPrefixCore)
}

// Alert returns the topic alert lines are published on.
//
// Example: lorawatch/alert
func (Topics) Alert() string {
	return TopicPrefixCore + "/alert"
}

// Event returns the topic event lines are published on.
//
// Example: lorawatch/event
func (Topics) Event() string {
	return TopicPrefixCore + "/event"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: lorawatch/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// =============================================================================
// Parsing
// =============================================================================

// EventTopic is a parsed ChirpStack integration topic.
type EventTopic struct {
	ApplicationID string
	DevEUI        string
	Event         string
}

// ParseEventTopic splits application/{app}/device/{devEUI}/event/{type}.
// The event type is the final path segment.
func ParseEventTopic(topic string) (EventTopic, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 6 ||
		parts[0] != TopicPrefixChirpStack ||
		parts[2] != "device" ||
		parts[4] != "event" {
		return EventTopic{}, fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}

	et := EventTopic{
		ApplicationID: parts[1],
		DevEUI:        parts[3],
		Event:         parts[len(parts)-1],
	}
	if et.Event == "" {
		return EventTopic{}, fmt.Errorf("%w: %q has no event type", ErrMalformedTopic, topic)
	}
	return et, nil
}

// EventType returns the final segment of topic.
func EventType(topic string) string {
	if i := strings.LastIndexByte(topic, '/'); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
