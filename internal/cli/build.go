package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/ncd"
	"github.com/hupe1980/ncd/codec"
	"github.com/hupe1980/ncd/compressor"
	"github.com/hupe1980/ncd/corpus"
	"github.com/hupe1980/ncd/internal/lock"
	"github.com/hupe1980/ncd/matrix"
	ncdprom "github.com/hupe1980/ncd/metrics/prometheus"
	"github.com/hupe1980/ncd/persistence"
	"github.com/hupe1980/ncd/resource"
)

const buildLongDesc string = `Compute every missing row of the distance matrix of a corpus.

The corpus is a local directory, s3://bucket/prefix or
minio://endpoint/bucket/prefix; every object in it is one member. Rows
already present in the output are kept, so rerunning after an interruption
or after adding files only computes what is missing.

Row failures (an unreadable file) are logged and the row stays pending for the
next run. Failures to load or save the matrix stop the build.

Examples:
  ncd build ./genomes -o distances.json
  ncd build ./genomes -w 8 --save-every 16 --save-interval 1m
  ncd build s3://corpus/genomes -o s3://results/ncd/distances.json --ddb-table ncd-commits`

const buildShortDesc string = "Compute the missing rows of the matrix"

// lockSuffix names the lock file held next to local outputs.
const lockSuffix = ".lock"

// metricsShutdownTimeout bounds the metrics listener shutdown.
const metricsShutdownTimeout = 5 * time.Second

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <corpus>",
		Short: buildShortDesc,
		Long:  buildLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runBuild(ctx, cmd, args[0])
		},
	}

	addFlags(cmd,
		FlagOutput, FlagCompressor, FlagDelta, FlagWorkers, FlagSaveEvery, FlagSaveInterval,
		FlagCodec, FlagIOLimit, FlagMemoryLimit, FlagCacheSize, FlagMetricsAddr, FlagDDBTable,
	)

	return cmd
}

func (a *app) runBuild(ctx context.Context, cmd *cobra.Command, corpusArg string) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	corpusLoc, err := ParseLocation(corpusArg)
	if err != nil {
		return err
	}
	outLoc, err := ParseLocation(cfg.Output)
	if err != nil {
		return err
	}

	comp, err := newCompressor(cfg)
	if err != nil {
		return err
	}

	rc := newController(cfg)

	if outLoc.IsLocal() {
		l, err := lock.Acquire(outLoc.Path + lockSuffix)
		if err != nil {
			return fmt.Errorf("locking %s: %w", outLoc.Path, err)
		}
		defer func() { _ = l.Release() }()

		removed, err := persistence.CleanupTemp(outLoc.Path)
		if err != nil {
			return fmt.Errorf("removing stale temporary files: %w", err)
		}
		if removed > 0 {
			a.logger.InfoContext(ctx, "removed stale temporary files", "count", removed)
		}
	}

	store, err := a.openMatrix(ctx, outLoc, comp.Config().String())
	if err != nil {
		return err
	}

	src, err := a.openSource(ctx, corpusLoc, outLoc, rc)
	if err != nil {
		return err
	}

	mc, stopMetrics, err := a.startMetrics(cfg.MetricsAddr)
	if err != nil {
		return err
	}
	defer stopMetrics()

	b, err := ncd.New(src, store,
		ncd.WithCompressor(comp),
		ncd.WithWorkers(cfg.Workers),
		ncd.WithSaveEvery(cfg.SaveEvery),
		ncd.WithSaveInterval(cfg.SaveInterval),
		ncd.WithLogger(a.logger),
		ncd.WithMetricsCollector(mc),
		ncd.WithResourceController(rc),
	)
	if err != nil {
		return err
	}

	rep, err := b.Run(ctx)
	if rep != nil {
		printReport(cmd, rep)
	}
	return err
}

func newCompressor(cfg *Config) (compressor.Compressor, error) {
	cc, err := cfg.CompressorConfig()
	if err != nil {
		return nil, err
	}
	return compressor.New(cc)
}

func newController(cfg *Config) *resource.Controller {
	if cfg.IOLimit == 0 && cfg.MemoryLimit == 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.MemoryLimit,
		IOLimitBytesPerSec: cfg.IOLimit,
	})
}

// openMatrix returns the matrix store for the output location. fingerprint
// may be empty for read-only commands.
func (a *app) openMatrix(ctx context.Context, outLoc Location, fingerprint string) (*matrix.Store, error) {
	c, ok := codec.ByName(a.cfg.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (want one of %v)", a.cfg.Codec, codec.Names())
	}

	parent, name := outLoc.Split()
	if name == "" {
		return nil, fmt.Errorf("output %s: missing document name", outLoc)
	}

	blobs, err := openStore(ctx, a.cfg, parent)
	if err != nil {
		return nil, err
	}

	return matrix.NewStore(blobs, name, func(o *matrix.StoreOptions) {
		o.Codec = c
		o.Compressor = fingerprint
	}), nil
}

// openSource returns the corpus source. When the output lives inside the
// corpus container, the matrix and its companion files are hidden.
func (a *app) openSource(ctx context.Context, corpusLoc, outLoc Location, rc *resource.Controller) (corpus.Source, error) {
	var hidden []string
	if parent, name := outLoc.Split(); parent.SameContainer(corpusLoc) {
		hidden = []string{name, name + matrix.MetaSuffix, name + lockSuffix}
	}

	src, err := a.baseSource(ctx, corpusLoc, rc, hidden)
	if err != nil {
		return nil, err
	}
	if a.cfg.CacheSize > 0 {
		return corpus.NewCachedSource(src, a.cfg.CacheSize), nil
	}
	return src, nil
}

func (a *app) baseSource(ctx context.Context, corpusLoc Location, rc *resource.Controller, hidden []string) (corpus.Source, error) {
	if corpusLoc.IsLocal() {
		info, err := os.Stat(corpusLoc.Path)
		if err != nil {
			return nil, fmt.Errorf("corpus: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("corpus %s: not a directory", corpusLoc)
		}
		return corpus.NewDirSource(corpusLoc.Path, func(o *corpus.DirOptions) {
			o.Controller = rc
		}).Exclude(hidden...), nil
	}

	blobs, err := openStore(ctx, a.cfg, corpusLoc)
	if err != nil {
		return nil, err
	}
	return corpus.NewBlobSource(blobs, "", func(o *corpus.BlobOptions) {
		o.Controller = rc
		o.OnRetry = func(op, id string, err error, wait time.Duration) {
			a.logger.WarnContext(ctx, "retrying corpus "+op, "id", id, "wait", wait, "error", err)
		}
	}).Exclude(hidden...), nil
}

// startMetrics serves /metrics when addr is set. The returned collector is
// nil otherwise, which selects the no-op collector.
func (a *app) startMetrics(addr string) (ncd.MetricsCollector, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}

	reg := prom.NewRegistry()
	mc, err := ncdprom.NewCollector(reg)
	if err != nil {
		return nil, nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", ncdprom.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return mc, stop, nil
}

func printReport(cmd *cobra.Command, rep *ncd.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d members, %d computed, %d failed, %d left to process (%s)\n",
		rep.RunID, rep.Total, rep.Completed, rep.Failed, rep.Remaining(), rep.Duration.Round(time.Millisecond))
	if rep.Errors != nil {
		fmt.Fprintln(out, rep.Errors)
	}
}
