// Package ncd builds a pairwise Normalized Compression Distance matrix over a
// file corpus, resumably and crash-safely.
//
// # Quick Start
//
//	ctx := context.Background()
//	src := corpus.NewDirSource("./genomes").Exclude("distances.json")
//	store := matrix.NewStore(blobstore.NewLocalStore("./genomes"), "distances.json")
//
//	b, _ := ncd.New(src, store, ncd.WithWorkers(4))
//	report, err := b.Run(ctx)
//
// # Resumability
//
// Every run captures the corpus once, loads the existing matrix, and only
// computes rows for identifiers that have no row yet. Each row is complete
// for the corpus snapshot of the run that produced it. Completed rows are
// merged by a single writer and saved with an atomic replace, by default after
// every row, so an interrupted run loses at most the rows in flight. A rerun
// with an unchanged corpus performs no compression at all.
//
// # Failure Semantics
//
//   - A read or compression failure aborts only that row. The identifier stays
//     pending for a later run and the failure is collected in Report.Errors.
//   - A load error (corrupt matrix, compressor mismatch) or a save error is
//     fatal and returned from Run.
//   - Context cancellation stops workers at the next column; completed rows
//     are still saved before Run returns.
//
// # Distances
//
// Row i column j holds NCD(content(i), content(j)) with concatenation order i
// then j. Both directions are always computed; real compressors are slightly
// asymmetric and values may exceed 1.
package ncd
