package cli

import (
	"github.com/spf13/cobra"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
	"github.com/danpilch/cpuusage/pkg/output"
	"github.com/danpilch/cpuusage/pkg/use"
)

func newSampleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Measure CPU utilization over one interval",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			_, err := a.sampleOnce(cmd)
			return err
		}),
	}
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Measure once and exit 0, 1, 2 or 3 for ok, warning, critical or unknown",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			check, err := a.sampleOnce(cmd)
			if err != nil {
				return err
			}
			if code := use.ExitCode([]use.Check{check}); code != 0 {
				return &exitError{code: code}
			}
			return nil
		}),
	}
}

func (a *app) sampleOnce(cmd *cobra.Command) (use.Check, error) {
	s, err := a.configure()
	if err != nil {
		return use.Check{}, err
	}
	res := a.measure(s)
	check := a.checker.Evaluate(s, res)

	if err := output.NewFormatter(a.format, cmd.OutOrStdout()).Render([]use.Check{check}); err != nil {
		return check, err
	}
	a.dumpRaw(cmd.OutOrStdout(), []*cpuusage.Sampler{s}, []cpuusage.Result{res})
	return check, nil
}
