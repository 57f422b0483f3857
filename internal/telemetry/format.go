package telemetry

import (
	"fmt"
	"strconv"
	"time"
)

// The Summary methods render the human-readable event lines shown in the
// operator's event log.

// Summary renders "Uplink - Device: X, RSSI: r, SNR: s, Message: m".
func (u *Uplink) Summary() string {
	return fmt.Sprintf("Uplink - Device: %s, RSSI: %s, SNR: %s, Message: %s",
		u.Name, formatInt(u.RSSI), formatFloat(u.SNR), u.Message)
}

// Summary renders "Join - Device: X, DevEUI: e".
func (j *Join) Summary() string {
	return fmt.Sprintf("Join - Device: %s, DevEUI: %s", j.Name, j.DevEUI)
}

// Summary renders the margin, battery, power source and report time.
func (s *Status) Summary() string {
	battery := NotAvailable
	if s.BatteryLevel != nil {
		battery = strconv.FormatFloat(*s.BatteryLevel, 'f', -1, 64) + "%"
	}
	lastSeen := NotAvailable
	if s.Time != nil {
		lastSeen = s.Time.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("Status - Device: %s, Margin: %d, Battery: %s, External Power: %t, Last Seen: %s",
		s.Name, s.Margin, battery, s.ExternalPower, lastSeen)
}

// Summary renders "ACK - Device: X, Acknowledged: b".
func (a *Ack) Summary() string {
	return fmt.Sprintf("ACK - Device: %s, Acknowledged: %t", a.Name, a.Acknowledged)
}

// Summary renders "TXACK - Device: X".
func (t *TxAck) Summary() string {
	return fmt.Sprintf("TXACK - Device: %s", t.Name)
}

// Summary renders "Log - Device: X, Level: l, Message: m".
func (l *Log) Summary() string {
	return fmt.Sprintf("Log - Device: %s, Level: %s, Message: %s", l.Name, l.Level, l.Description)
}

func formatInt(v *int) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
