// Package observer tells interested parties when device state changes.
//
// The core never depends on a presentation technology: the WebSocket hub,
// the SQLite journal and the MQTT state publisher all register as plain
// Listeners. Notifications are never delivered while the registry lock
// is held.
package observer
