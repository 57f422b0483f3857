// Package device holds the Device Record and the Device Registry for
// LoRaWatch Core.
//
// The Registry is the single source of truth for the state of every
// LoRaWAN end-device the monitor knows about. Telemetry handlers, the
// staleness sweeper and operator actions all change state through it;
// everything else receives read-only snapshots.
//
// # State machine
//
// A device carries one tagged Status:
//
//	Unknown ──┐
//	NeverSeen ─┼─ telemetry ──▶ Online ◀──▶ Offline
//	           │                  │            │
//	           └──── SetAlert ────┴──▶ Alert ◀─┘
//	                                   │
//	                  ClearAlert ──────┴──▶ Online | Offline
//
// Alert is latched. ApplyTelemetry, MarkSeenNow and MarkOffline leave it
// in place; only ClearAlert leaves it, recomputing Online or Offline from
// LastSeenAt and the staleness window (10 minutes by default).
//
// # Usage
//
//	registry := device.NewRegistry(device.WithStalenessWindow(cfg.Monitor.StalenessWindow))
//	registry.SetLogger(log)
//	registry.LoadAll(descriptors)
//
//	if d, ok := registry.Get(devEUI); ok {
//	    fmt.Println(d.Status.Label())
//	}
package device
