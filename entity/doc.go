// Package entity defines the snapshot models the cache stores.
//
// Models are plain values. Slices inside a model are owned by whoever holds the
// value, so every model exposes Clone for callers that need to hand a copy to
// another owner (the cache clones on both write and read).
package entity
