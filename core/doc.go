// Package core provides the foundational domain types and interfaces shared by
// the trading floor. It defines the small contracts every other package is
// wired through:
//
//   - Agent (anything invocable with a message that yields a Result)
//   - Content / Part (role based conversation segments exchanged with models)
//   - ToolContext (scoped execution surface handed to tools)
//   - Hook (lifecycle observer for invocations, model calls and tool calls)
//   - MemoryStore (per-trader long term memory used by researchers)
//
// Implementation concerns (model vendors, persistence, scheduling) live in
// their own packages so that this one has no third-party dependencies.
package core
