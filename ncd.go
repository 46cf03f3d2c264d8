package ncd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ncd/compressor"
	"github.com/hupe1980/ncd/corpus"
	"github.com/hupe1980/ncd/distance"
	"github.com/hupe1980/ncd/matrix"
)

// Report summarizes one Run.
type Report struct {
	// RunID identifies the run in logs.
	RunID string
	// Total is the number of identifiers in the corpus snapshot.
	Total int
	// Pending is the number of identifiers without a row at the start.
	Pending int
	// Completed is the number of rows computed and merged.
	Completed int
	// Failed is the number of rows aborted by read or compression errors.
	Failed int
	// Saves is the number of successful matrix saves.
	Saves int
	// Duration is the wall time of the run.
	Duration time.Duration
	// Errors aggregates row failures. Nil when every row succeeded.
	Errors error
}

// Remaining returns the identifiers still without a row after the run.
func (r *Report) Remaining() int {
	return r.Pending - r.Completed
}

// Builder computes the missing rows of a distance matrix.
type Builder struct {
	src   corpus.Source
	store *matrix.Store
	dist  distance.Func
	opts  options
}

// New returns a Builder over src that persists through store.
func New(src corpus.Source, store *matrix.Store, optFns ...Option) (*Builder, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if store == nil {
		return nil, ErrNilStore
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.compressor == nil {
		c, err := compressor.New(compressor.DefaultConfig())
		if err != nil {
			return nil, err
		}
		opts.compressor = c
	}
	opts.workers = max(opts.workers, 1)
	opts.saveEvery = max(opts.saveEvery, 1)
	opts.saveInterval = max(opts.saveInterval, 0)

	return &Builder{
		src:   src,
		store: store,
		dist:  distance.Bind(opts.compressor),
		opts:  opts,
	}, nil
}

// Compressor returns the compressor used for distances.
func (b *Builder) Compressor() compressor.Compressor {
	return b.opts.compressor
}

type rowResult struct {
	id       string
	row      matrix.Row
	duration time.Duration
	err      error
}

// Run computes every pending row and persists the matrix. Row failures are
// reported in Report.Errors; the returned error is non-nil only for fatal
// conditions (corpus listing, load, save) or cancellation.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	runID := b.opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := b.opts.logger.WithRunID(runID)
	rep := &Report{RunID: runID}

	finish := func(err error) (*Report, error) {
		rep.Duration = time.Since(start)
		log.LogRunDone(ctx, rep, err)
		return rep, err
	}

	snap, err := corpus.Capture(ctx, b.src)
	if err != nil {
		return finish(fmt.Errorf("ncd: capture corpus: %w", err))
	}
	rep.Total = snap.Len()

	m, err := b.store.Load(ctx)
	if err != nil {
		return finish(err)
	}

	pending := snap.Pending(m.Keys())
	rep.Pending = len(pending)

	log.LogRunStart(ctx, snap.Len(), m.Len(), b.opts.compressor.Config().String())
	log.LogPending(ctx, len(pending))
	b.opts.metricsCollector.RecordPending(len(pending))

	if len(pending) == 0 {
		return finish(nil)
	}

	workCtx, cancelWork := context.WithCancel(ctx)
	defer cancelWork()

	results := b.startWorkers(workCtx, snap, pending)

	// Saves run to completion even when ctx is canceled.
	saveCtx := context.WithoutCancel(ctx)

	var (
		unsaved  int
		lastSave = time.Now()
		fatal    error
		rowErrs  *multierror.Error
	)

	save := func() {
		t := time.Now()
		err := b.store.Save(saveCtx, m)
		b.opts.metricsCollector.RecordSave(m.Len(), time.Since(t), err)
		log.LogSave(ctx, b.store.Name(), m.Len(), err)
		if err != nil {
			fatal = &SaveError{Name: b.store.Name(), Rows: m.Len(), cause: err}
			cancelWork()
			return
		}
		rep.Saves++
		unsaved = 0
		lastSave = time.Now()
	}

	intervalElapsed := func() bool {
		return b.opts.saveInterval > 0 && time.Since(lastSave) >= b.opts.saveInterval
	}

	var tick <-chan time.Time
	if b.opts.saveInterval > 0 {
		ticker := time.NewTicker(b.opts.saveInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	// Single writer: the only goroutine that touches m and calls Save.
loop:
	for {
		select {
		case res, ok := <-results:
			if !ok {
				break loop
			}
			if fatal != nil {
				// Drain so workers can exit.
				continue
			}

			if res.err != nil {
				if workCtx.Err() != nil && isCancellation(res.err) {
					log.DebugContext(ctx, "row interrupted", "id", res.id)
					continue
				}
				rep.Failed++
				rowErrs = multierror.Append(rowErrs, res.err)
				b.opts.metricsCollector.RecordRow(0, res.duration, res.err)
				log.LogRow(ctx, res.id, 0, res.duration, res.err)
			} else {
				m.Set(res.id, res.row)
				unsaved++
				rep.Completed++
				b.opts.metricsCollector.RecordRow(len(res.row), res.duration, nil)
				log.LogRow(ctx, res.id, len(res.row), res.duration, nil)

				if unsaved >= b.opts.saveEvery || intervalElapsed() {
					save()
				}
			}

			left := rep.Pending - rep.Completed - rep.Failed
			log.LogPending(ctx, left)
			b.opts.metricsCollector.RecordPending(left)

		case <-tick:
			if fatal == nil && unsaved > 0 && intervalElapsed() {
				save()
			}
		}
	}

	if fatal == nil && unsaved > 0 {
		save()
	}

	rep.Errors = rowErrs.ErrorOrNil()

	if fatal != nil {
		return finish(fatal)
	}
	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	return finish(nil)
}

// startWorkers computes the pending rows on a bounded pool and returns the
// channel of results. The channel is closed once every worker has exited.
// Workers always deliver a finished row; the writer must drain the channel.
func (b *Builder) startWorkers(ctx context.Context, snap *corpus.Snapshot, pending []string) <-chan rowResult {
	jobs := make(chan string)
	results := make(chan rowResult, b.opts.workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, id := range pending {
			select {
			case jobs <- id:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for range min(b.opts.workers, len(pending)) {
		g.Go(func() error {
			for id := range jobs {
				t := time.Now()
				row, err := b.computeRow(gctx, snap, id)
				results <- rowResult{id: id, row: row, duration: time.Since(t), err: err}
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	return results
}

// computeRow reads content(id) once and measures its distance to every
// member of the snapshot, itself included. Partial rows are never returned.
func (b *Builder) computeRow(ctx context.Context, snap *corpus.Snapshot, id string) (matrix.Row, error) {
	x, err := b.read(ctx, snap, id)
	if err != nil {
		return nil, &RowError{ID: id, cause: err}
	}

	row := make(matrix.Row, snap.Len())
	for j := range snap.Len() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		col := snap.ID(j)
		y := x
		if col != id {
			y, err = b.read(ctx, snap, col)
			if err != nil {
				return nil, &RowError{ID: id, Column: col, cause: err}
			}
		}

		d, err := b.measure(ctx, x, y)
		if err != nil {
			return nil, &RowError{ID: id, Column: col, cause: err}
		}
		row[col] = d
	}
	return row, nil
}

// read fetches one member within the read concurrency limit.
func (b *Builder) read(ctx context.Context, snap *corpus.Snapshot, id string) ([]byte, error) {
	rc := b.opts.resource
	if err := rc.AcquireRead(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseRead()
	return snap.Read(ctx, id)
}

// measure computes one distance while holding a memory reservation for the
// working set: both inputs plus their concatenation.
func (b *Builder) measure(ctx context.Context, x, y []byte) (float64, error) {
	rc := b.opts.resource
	held, err := rc.AcquireMemory(ctx, 2*int64(len(x)+len(y)))
	if err != nil {
		return 0, err
	}
	defer rc.ReleaseMemory(held)
	return b.dist(x, y)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
