package device

import "time"

// Status is the single tagged state of a device.
type Status string

// Device states.
const (
	StatusUnknown   Status = "unknown"
	StatusNeverSeen Status = "never_seen"
	StatusOnline    Status = "online"
	StatusOffline   Status = "offline"
	StatusAlert     Status = "alert"
)

// AllStatuses returns every device state.
func AllStatuses() []Status {
	return []Status{StatusUnknown, StatusNeverSeen, StatusOnline, StatusOffline, StatusAlert}
}

// Label returns the operator-facing name of the state.
func (s Status) Label() string {
	switch s {
	case StatusNeverSeen:
		return "Never Seen"
	case StatusOnline:
		return "Online"
	case StatusOffline:
		return "Offline"
	case StatusAlert:
		return "Alert"
	default:
		return "Unknown"
	}
}

// The functions below are the only way a record's Status changes.
// Each takes the current status and returns the next one. Alert is
// latched: nothing but clearAlert leaves it.

// deriveStatus computes the status implied by a last-seen timestamp.
func deriveStatus(lastSeen *time.Time, now time.Time, window time.Duration) Status {
	switch {
	case lastSeen == nil:
		return StatusNeverSeen
	case fresh(*lastSeen, now, window):
		return StatusOnline
	default:
		return StatusOffline
	}
}

// observe moves to an observed status unless an alert is latched.
// An Online observation with a missing or stale timestamp becomes Offline.
func observe(current, observed Status, lastSeen *time.Time, now time.Time, window time.Duration) Status {
	if current == StatusAlert {
		return StatusAlert
	}
	if observed == StatusAlert {
		// Alerts are raised only through raiseAlert.
		return current
	}
	if observed == StatusOnline && (lastSeen == nil || !fresh(*lastSeen, now, window)) {
		return StatusOffline
	}
	return observed
}

// raiseAlert latches the alert. Idempotent.
func raiseAlert(Status) Status {
	return StatusAlert
}

// clearAlert unlatches the alert and recomputes Online or Offline.
func clearAlert(lastSeen *time.Time, now time.Time, window time.Duration) Status {
	if lastSeen != nil && fresh(*lastSeen, now, window) {
		return StatusOnline
	}
	return StatusOffline
}

// fresh reports whether seen lies inside the staleness window ending at now.
func fresh(seen, now time.Time, window time.Duration) bool {
	return now.Sub(seen) < window
}
