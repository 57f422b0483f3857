// Package monitor drives device state from ChirpStack events.
//
// The pieces, and who calls them:
//
//   - Dispatcher: MQTT handler for application/+/device/+/event/#. Uplinks
//     mark the device seen, update radio metrics and detect alerts.
//   - FanOut: on an alert, queues the Alert Response command (0xFF) to
//     every LiDAR unit, Sound Unit and Wearable Alert Unit.
//   - Sweeper: every sweep interval, moves devices that have been silent
//     for longer than the staleness window to Offline.
//   - Manager: operator actions from the API (add, remove, clear alert,
//     send command, refresh).
//   - StatePublisher: mirrors device snapshots and alerts back onto MQTT.
//
// All state lives in the device.Registry; every change is announced
// through the observer.Notifier.
//
// # Alert flow
//
//	uplink "Alert: fall detected" from W1
//	  -> registry.SetAlert(W1)
//	  -> notifier.Alert("Alert triggered by device W1 - ...")
//	  -> FanOut.Trigger: EnqueueDownlink(target, 0xFF) for each target
//	  -> one event line per downlink, success or failure
//
// An alert stays latched until an operator clears it.
package monitor
