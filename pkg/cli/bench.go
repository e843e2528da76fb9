package cli

import (
	"github.com/spf13/cobra"

	"github.com/danpilch/cpuusage/pkg/benchmark"
	"github.com/danpilch/cpuusage/pkg/cpuusage"
	"github.com/danpilch/cpuusage/pkg/sources"
)

func newBenchCommand(a *app) *cobra.Command {
	opts := benchmark.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark every available source",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			srcs, err := sources.OpenAll(a.scope)
			if err != nil {
				return err
			}
			wrapped := make([]cpuusage.Source, len(srcs))
			for i, src := range srcs {
				wrapped[i] = a.wrap(src)
			}
			results := benchmark.Run(wrapped, opts)
			benchmark.RenderResults(cmd.OutOrStdout(), results, benchmark.MeasureOverhead())
			return nil
		}),
	}
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "Measurements per source.")
	cmd.Flags().IntVar(&opts.Warmup, "warmup", opts.Warmup, "Unrecorded measurements before timing starts.")
	cmd.Flags().DurationVar(&opts.Interval, "pause", opts.Interval, "Pause between measurements.")
	return cmd
}
