// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and carries the audit session ID on every record.
//
// # Session Awareness
//
// Reconciliation runs in batches: one driver invocation may audit many listing
// snapshots in a tight loop. The WithSession helper attaches the per-run session
// ID to the logger so that the (very chatty) comparison debug logs can be
// correlated after the fact.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "debug"})
//	log = logger.WithSession(log, sessionID)
//	log.Debug("comparing key", zap.String("key", "cpu_model"))
package logger
