// Package identity decides which vector collection answers for a given
// source (a file, directory, or URL).
//
// It provides deterministic collection naming and a persistent store that
// maps each source key to exactly one collection. The mapping is created
// on first encounter and never regenerated, so re-indexing a source always
// reuses the same collection. The store persists as a single JSON document
// rewritten in full after every mutation.
package identity
