package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ncd/matrix"
)

const symmetryLongDesc string = `Report how far d(x, y) and d(y, x) differ across the matrix.

NCD is not exactly symmetric because a compressor sees xy and yx differently.
Both directions are always computed; this command measures the difference.

Examples:
  ncd symmetry -o distances.json
  ncd symmetry --tolerance 0.01`

const symmetryShortDesc string = "Report the asymmetry of the matrix"

func newSymmetryCmd(a *app) *cobra.Command {
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "symmetry",
		Short: symmetryShortDesc,
		Long:  symmetryLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSymmetry(cmd, tolerance)
		},
	}

	addFlags(cmd, FlagOutput, FlagCodec)
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Count pairs whose difference exceeds this value")

	return cmd
}

func (a *app) runSymmetry(cmd *cobra.Command, tolerance float64) error {
	m, err := a.loadMatrix(cmd)
	if err != nil {
		return err
	}

	rep := m.Symmetry(tolerance)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rows: %d\n", m.Len())
	fmt.Fprintf(out, "pairs: %d\n", rep.Pairs)
	if rep.Pairs == 0 {
		return nil
	}
	fmt.Fprintf(out, "max delta: %.6f (%s, %s)\n", rep.MaxDelta, rep.MaxPair[0], rep.MaxPair[1])
	fmt.Fprintf(out, "mean delta: %.6f\n", rep.MeanDelta)
	fmt.Fprintf(out, "above %g: %d\n", tolerance, rep.Exceeding)
	return nil
}

// loadMatrix reads the configured output without checking the compressor
// fingerprint.
func (a *app) loadMatrix(cmd *cobra.Command) (matrix.Matrix, error) {
	outLoc, err := ParseLocation(a.cfg.Output)
	if err != nil {
		return nil, err
	}
	store, err := a.openMatrix(cmd.Context(), outLoc, "")
	if err != nil {
		return nil, err
	}
	return store.Load(cmd.Context())
}
