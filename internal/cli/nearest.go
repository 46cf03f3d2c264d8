package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const nearestLongDesc string = `Print the row of one member sorted by ascending distance.

The first entry is normally the member itself with a distance close to 0.

Examples:
  ncd nearest sample.fa -o distances.json
  ncd nearest sample.fa -n 10`

const nearestShortDesc string = "Print the row of one member, closest first"

func newNearestCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "nearest <id>",
		Short: nearestShortDesc,
		Long:  nearestLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNearest(cmd, args[0], limit)
		},
	}

	addFlags(cmd, FlagOutput, FlagCodec)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most this many entries (0 = all)")

	return cmd
}

func (a *app) runNearest(cmd *cobra.Command, id string, limit int) error {
	m, err := a.loadMatrix(cmd)
	if err != nil {
		return err
	}

	row, ok := m[id]
	if !ok {
		return fmt.Errorf("no row for %q in %s", id, a.cfg.Output)
	}

	entries := row.Sorted()
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%.6f\n", e.ID, e.Distance)
	}
	return tw.Flush()
}
