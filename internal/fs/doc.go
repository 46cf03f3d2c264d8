// Package fs provides the filesystem seam used by atomic saves and the local
// blob store, so tests can inject I/O faults.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: open, remove, rename, stat and list operations
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that fails writes, syncs, closes or renames
//
// # Usage
//
// Production code uses fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_RDONLY, 0)
//
// Tests inject [FaultyFS] to simulate a crash mid-save:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 10})
//
// Operations take no context.Context: local filesystem calls are not
// interruptible at the syscall level. Remote storage goes through blobstore,
// which is context-aware.
package fs
