// Package cli implements the ncd command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/ncd"
)

const rootLongDesc string = `ncd builds the pairwise normalized compression distance matrix of a corpus.

The matrix is saved after every new row, so an interrupted build resumes where
it stopped and a grown corpus only computes the rows it is missing.

Commands:
  ncd build <corpus>      Compute the missing rows
  ncd check <file>...     Show compressed lengths and self-distances
  ncd nearest <id>        Print the row of one member, closest first
  ncd symmetry            Report how far d(x, y) and d(y, x) differ

Every flag can also be set through an NCD_ environment variable
(e.g. NCD_SAVE_EVERY=10) or a config file passed with --config.`

const rootShortDesc string = "ncd - resumable NCD distance matrices"

// app carries the resolved configuration to the subcommands.
type app struct {
	configFile string
	cfg        *Config
	logger     *ncd.Logger
}

// NewRootCmd returns the ncd command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "ncd",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-format", LogFormatPretty, "Log format (pretty, json, text)")
	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (yaml, toml or json)")

	cmd.AddCommand(newBuildCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newNearestCmd(a))
	cmd.AddCommand(newSymmetryCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := InitViper(a.configFile)
	if err != nil {
		return err
	}

	_ = v.BindPFlag("debug", cmd.Flags().Lookup("debug"))
	_ = v.BindPFlag("log_format", cmd.Flags().Lookup("log-format"))
	bindFlags(v, cmd,
		FlagOutput, FlagCompressor, FlagDelta, FlagWorkers, FlagSaveEvery, FlagSaveInterval,
		FlagCodec, FlagIOLimit, FlagMemoryLimit, FlagCacheSize, FlagMetricsAddr, FlagDDBTable,
	)

	cfg, err := LoadConfig(v)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Debug)
	if err != nil {
		return err
	}

	a.cfg, a.logger = cfg, logger
	return nil
}
