//go:build !unix

package lock

import (
	"os"
	"sync"
)

// Without flock(2) the lock is only exclusive within this process.
var (
	mu   sync.Mutex
	held = map[string]bool{}
)

func lockFile(f *os.File) error {
	mu.Lock()
	defer mu.Unlock()
	if held[f.Name()] {
		return ErrLocked
	}
	held[f.Name()] = true
	return nil
}

func unlockFile(f *os.File) error {
	mu.Lock()
	defer mu.Unlock()
	delete(held, f.Name())
	return nil
}
