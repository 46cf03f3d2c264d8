package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// DNA is the nucleotide alphabet.
const DNA = "ACGT"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes returns n uniformly random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Sequence returns n symbols drawn uniformly from alphabet.
func (r *RNG) Sequence(n int, alphabet string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return b
}

// Mutate returns a copy of src in which each byte is replaced with
// probability rate by a byte drawn from src itself, so the alphabet is kept.
func (r *RNG) Mutate(src []byte, rate float64) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, len(src))
	copy(out, src)
	if len(src) == 0 {
		return out
	}
	for i := range out {
		if r.rand.Float64() < rate {
			out[i] = src[r.rand.Intn(len(src))]
		}
	}
	return out
}

// Family returns n variants of ancestor, each mutated independently.
func (r *RNG) Family(ancestor []byte, n int, rate float64) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = r.Mutate(ancestor, rate)
	}
	return out
}

// Corpus returns n unrelated members of the given size named m00, m01, ...
// An empty alphabet yields random bytes.
func (r *RNG) Corpus(n, size int, alphabet string) map[string][]byte {
	out := make(map[string][]byte, n)
	for i := range n {
		var content []byte
		if alphabet == "" {
			content = r.Bytes(size)
		} else {
			content = r.Sequence(size, alphabet)
		}
		out[Name(i)] = content
	}
	return out
}

// Name returns the identifier Corpus uses for member i.
func Name(i int) string {
	return fmt.Sprintf("m%02d", i)
}

// WriteCorpus writes files into a fresh temporary directory and returns it.
func WriteCorpus(t testing.TB, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
