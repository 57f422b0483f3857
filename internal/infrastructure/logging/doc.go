// Package logging provides structured logging for LoRaWatch Core.
//
// It wraps log/slog so every component logs the same way: JSON in
// production, text when a human is watching, and the service and version
// attached to every entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("uplink handled", "dev_eui", devEUI)
//
// Never log the ChirpStack API token, the MQTT password or JWT secrets.
package logging
