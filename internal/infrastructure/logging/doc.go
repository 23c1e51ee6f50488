// Package logging provides structured logging for the MiLight hub.
//
// It wraps Go's standard log/slog package so every component logs with the
// same default fields (service, version) and a per-component attribute.
//
// Logging is configured via the logging section of the config file:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	radioLog := logger.Component("radio")
//	radioLog.Info("radio open", "device_type", "rgb_cct")
//
// Never log MQTT passwords or InfluxDB tokens.
package logging
