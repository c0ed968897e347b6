// Package agent contains the model-backed agent used by traders and
// researchers, plus the plumbing around it:
//
//  1. BaseAgent: identity shared by agent implementations
//  2. ModelAgent: the model -> tool calls -> model loop with a turn budget
//  3. AsTool: exposes any core.Agent as a tool.Tool for nesting
//
// Tool calls requested in one model turn run in parallel with a concurrency
// limit and their responses are fed back in call order. Lifecycle hooks fire
// around the invocation, every model call and every tool call; the log sink
// hooks build on that.
package agent
