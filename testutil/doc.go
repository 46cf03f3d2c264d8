// Package testutil provides testing utilities for ncd.
//
// This package is intended for use in tests and benchmarks only.
// It generates deterministic corpora: random bytes, sequences over a small
// alphabet, and families of related members derived from one ancestor.
//
// # Random Content
//
//	rng := testutil.NewRNG(seed)
//	noise := rng.Bytes(4096)           // incompressible
//	seq := rng.Sequence(4096, DNA)     // ACGT text
//
// # Related Members
//
//	ancestor := rng.Sequence(4096, testutil.DNA)
//	variant := rng.Mutate(ancestor, 0.01) // ~1% point mutations
//
// # Corpora on Disk
//
//	dir := testutil.WriteCorpus(t, rng.Corpus(8, 1024, testutil.DNA))
package testutil
