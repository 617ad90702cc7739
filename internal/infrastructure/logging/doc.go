// Package logging provides structured logging for the Gray Logic node.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting node", "entities", len(cfg.Entities))
//	node := ha.NewNode(transport, device, ha.WithLogger(logger.Component("ha")))
//
// # Security
//
// Attributes keyed password, token or secret are written as [REDACTED].
// Other fields are logged verbatim, so never put credentials under
// another key.
package logging
