// Package memory contains the researcher's long term memory stores. The
// store interface and SearchResult type reside in the core package.
//
// Every trader gets its own store: an Opener maps a trader name to a store
// that shares nothing with the stores of other names. SQLStore keeps one
// SQLite file per trader; InMemoryStore is the process-local variant used in
// tests and dry runs.
package memory
