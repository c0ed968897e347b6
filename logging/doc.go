// Package logging provides a minimal logging interface and adapters for the
// trading floor's process logs.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that schedulers, traders and agents use. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping an existing *slog.Logger
//   - FloorLogger, a configurable slog logger with contextual cloning and
//     domain helpers for tool calls, model calls and trading cycles
//   - NoOpLogger for silent operation (tests, minimal setups)
//
// Process logs are distinct from the per-trader Log Records persisted by the
// logstore package; the latter feed the UI and are part of the domain.
package logging
