package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single definition of a CLI flag. Commands reference flags by
// registry key so that a flag shared by several commands keeps one name,
// shorthand, default, and description.
type Flag struct {
	// Name is the long flag name (e.g. "output").
	Name string

	// Shorthand is the one-letter short flag. Empty for no shorthand.
	Shorthand string

	// ViperKey is the config key this flag maps to (e.g. "save_every").
	ViperKey string

	// Description is the help text.
	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagOutput       = "output"
	FlagCompressor   = "compressor"
	FlagDelta        = "delta"
	FlagWorkers      = "workers"
	FlagSaveEvery    = "save-every"
	FlagSaveInterval = "save-interval"
	FlagCodec        = "codec"
	FlagIOLimit      = "io-limit"
	FlagMemoryLimit  = "memory-limit"
	FlagCacheSize    = "cache-size"
	FlagMetricsAddr  = "metrics-addr"
	FlagDDBTable     = "ddb-table"
)

var flags = FlagSet{
	FlagOutput: {
		Name:        "output",
		Shorthand:   "o",
		ViperKey:    "output",
		Description: "Matrix document: local path, s3://bucket/prefix/name or minio://endpoint/bucket/prefix/name",
	},
	FlagCompressor: {
		Name:        "compressor",
		Shorthand:   "c",
		ViperKey:    "compressor",
		Description: "Compressor (lzma, zstd, deflate, lz4, bzip2)",
	},
	FlagDelta: {
		Name:        "delta",
		ViperKey:    "delta",
		Description: "Delta filter distance, 0 disables it (default: algorithm default)",
	},
	FlagWorkers: {
		Name:        "workers",
		Shorthand:   "w",
		ViperKey:    "workers",
		Description: "Number of rows computed in parallel",
	},
	FlagSaveEvery: {
		Name:        "save-every",
		ViperKey:    "save_every",
		Description: "Save the matrix after this many new rows",
	},
	FlagSaveInterval: {
		Name:        "save-interval",
		ViperKey:    "save_interval",
		Description: "Also save when this much time passed since the last save (0 disables)",
	},
	FlagCodec: {
		Name:        "codec",
		ViperKey:    "codec",
		Description: "Matrix codec (json, go-json)",
	},
	FlagIOLimit: {
		Name:        "io-limit",
		ViperKey:    "io_limit",
		Description: "Corpus read limit in bytes per second (0 = unlimited)",
	},
	FlagMemoryLimit: {
		Name:        "memory-limit",
		ViperKey:    "memory_limit",
		Description: "Bytes of corpus content held by workers (0 = unlimited)",
	},
	FlagCacheSize: {
		Name:        "cache-size",
		ViperKey:    "cache_size",
		Description: "Bytes of corpus content kept in memory between rows (0 disables)",
	},
	FlagMetricsAddr: {
		Name:        "metrics-addr",
		ViperKey:    "metrics_addr",
		Description: "Serve Prometheus metrics on this address (e.g. :9090)",
	},
	FlagDDBTable: {
		Name:        "ddb-table",
		ViperKey:    "ddb_table",
		Description: "DynamoDB table guarding s3:// outputs against concurrent writers",
	},
}

// addFlags registers the given flags on cmd with their registry defaults.
func addFlags(cmd *cobra.Command, keys ...string) {
	d := viper.New()
	setViperDefaults(d)

	for _, key := range keys {
		def, ok := flags[key]
		if !ok {
			continue
		}
		fs := cmd.Flags()
		switch key {
		case FlagDelta, FlagWorkers, FlagSaveEvery:
			fs.IntP(def.Name, def.Shorthand, d.GetInt(def.ViperKey), def.Description)
		case FlagIOLimit, FlagMemoryLimit, FlagCacheSize:
			fs.Int64P(def.Name, def.Shorthand, d.GetInt64(def.ViperKey), def.Description)
		case FlagSaveInterval:
			fs.DurationP(def.Name, def.Shorthand, d.GetDuration(def.ViperKey), def.Description)
		default:
			fs.StringP(def.Name, def.Shorthand, d.GetString(def.ViperKey), def.Description)
		}
	}
}

// bindFlags connects already-registered flags to v. Call it after InitViper
// so that the flag > env > file > default chain applies.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys ...string) {
	for _, key := range keys {
		def, ok := flags[key]
		if !ok {
			continue
		}
		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}
		_ = v.BindPFlag(def.ViperKey, f)
	}
}
