package cli

import (
	"github.com/spf13/cobra"

	"github.com/danpilch/cpuusage/pkg/crosscheck"
	"github.com/danpilch/cpuusage/pkg/output"
)

func newCrosscheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crosscheck",
		Short: "Measure with every available source over one window and compare",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			samplers, err := a.samplers()
			if err != nil {
				return err
			}
			results := crosscheck.Measure(samplers, a.cfg.Watch.Interval)
			v := crosscheck.NewValidator().CrossCheck(string(a.scope), crosscheck.Sources(samplers, results))
			sanity := crosscheck.RunSanityChecks(samplers, results)

			if a.format == output.FormatJSON {
				if err := crosscheck.ReportJSON(cmd.OutOrStdout(), v, sanity); err != nil {
					return err
				}
			} else {
				crosscheck.Report(cmd.OutOrStdout(), v, sanity)
			}
			a.dumpRaw(cmd.OutOrStdout(), samplers, results)
			return nil
		}),
	}
}
