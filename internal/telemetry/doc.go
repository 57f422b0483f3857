// Package telemetry decodes ChirpStack v4 MQTT integration events.
//
// ChirpStack publishes one protobuf message per event, JSON-encoded, on
// application/{application_id}/device/{dev_eui}/event/{type}. This
// package turns those payloads into small domain structs carrying only
// what the monitor uses, with explicit "not available" handling for
// optional fields, and renders the event-log summary lines.
package telemetry
