package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ncd/distance"
)

const checkLongDesc string = `Show the compressed length and the self-distance of each file.

A well-behaved compressor gives every file a self-distance close to 0. Values
far above it mean the input exceeds what the compressor can model (for
example a window smaller than the file), and the matrix would be unreliable.

Examples:
  ncd check a.fa b.fa
  ncd check -c zstd --delta 0 genome.fa`

const checkShortDesc string = "Show compressed lengths and self-distances"

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: checkShortDesc,
		Long:  checkLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args)
		},
	}

	addFlags(cmd, FlagCompressor, FlagDelta)

	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, files []string) error {
	comp, err := newCompressor(a.cfg)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "compressor: %s\n", comp.Config())
	fmt.Fprintln(tw, "FILE\tSIZE\tCOMPRESSED\tSELF-DISTANCE")

	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		n, err := comp.Len(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		self, err := distance.SelfDistance(comp, data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.6f\n", name, len(data), n, self)
	}
	return tw.Flush()
}
