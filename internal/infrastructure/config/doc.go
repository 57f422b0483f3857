// Package config handles loading and validating LoRaWatch Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with LORAWATCH_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The ChirpStack API token and MQTT password should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - An empty security.jwt.secret disables API authentication; never ship that
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Monitor.StalenessWindow)
package config
