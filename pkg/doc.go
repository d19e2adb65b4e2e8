// Package pkg provides shared utilities for the OTG_HS device driver.
//
// It contains:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel errors and the [Fault] type for unrecoverable conditions
//   - Component identifiers for log filtering
//
// # Logging
//
// Logging is quiet (warn level) by default so that interrupt paths do not
// pay for formatting:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogDebug(pkg.ComponentRx, "fragment queued", "kind", kind)
//
// # Errors
//
// Hardware-state violations are wrapped in a [Fault]:
//
//	if errors.Is(err, pkg.ErrUnrecognizedFragment) {
//	    // receive FIFO delivered something the engine cannot classify
//	}
package pkg
