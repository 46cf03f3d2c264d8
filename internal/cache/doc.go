// Package cache provides an LRU cache for corpus content.
//
// Every row reads all members of the corpus, so a run touches each member
// once per row. The LRU keeps recently read members in memory up to a byte
// capacity. Values are shared with callers and must be treated as read-only.
package cache
