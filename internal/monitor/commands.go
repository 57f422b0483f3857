package monitor

import (
	"fmt"
	"strings"
)

// Command is a single-byte downlink understood by the end-devices.
// The bytes are opaque to the monitor.
type Command string

// Known commands.
const (
	CommandStatusRequest  Command = "status_request"
	CommandResetRequest   Command = "reset_request"
	CommandDataCollection Command = "data_collection"
	CommandAlertResponse  Command = "alert_response"
)

var commandCodes = map[Command]byte{
	CommandStatusRequest:  0x01,
	CommandResetRequest:   0x02,
	CommandDataCollection: 0x03,
	CommandAlertResponse:  0xFF,
}

var commandLabels = map[Command]string{
	CommandStatusRequest:  "Status Request",
	CommandResetRequest:   "Reset Request",
	CommandDataCollection: "Data Collection",
	CommandAlertResponse:  "Alert Response",
}

// AllCommands returns every known command.
func AllCommands() []Command {
	return []Command{CommandStatusRequest, CommandResetRequest, CommandDataCollection, CommandAlertResponse}
}

// ParseCommand accepts a command name in any case.
func ParseCommand(name string) (Command, error) {
	c := Command(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := commandCodes[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return c, nil
}

// Payload returns the downlink bytes for c.
func (c Command) Payload() []byte {
	return []byte{commandCodes[c]}
}

// Label returns the operator-facing name, e.g. "Alert Response".
func (c Command) Label() string {
	return commandLabels[c]
}

// sentLine renders the event-log line for a queued downlink.
func (c Command) sentLine(name, devEUI string) string {
	return fmt.Sprintf("Downlink sent to device %s - %s, [0x%02X] - %s", name, devEUI, commandCodes[c], c.Label())
}

// failedLine renders the event-log line for a downlink ChirpStack refused.
func (c Command) failedLine(name, devEUI string, err error) string {
	return fmt.Sprintf("Downlink to device %s - %s failed, [0x%02X] - %s: %v", name, devEUI, commandCodes[c], c.Label(), err)
}
