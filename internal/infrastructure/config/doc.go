// Package config handles loading and validating MiLight hub configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (MILIGHT_*)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - MQTT passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/milight.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Radio.Backend)
package config
