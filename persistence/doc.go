// Package persistence provides crash-safe file replacement.
//
// Every write goes to a temporary file in the destination directory, is fsynced,
// and is then renamed over the target. Readers observe either the previous
// complete file or the new complete file, never a partial one.
package persistence
