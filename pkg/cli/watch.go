package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
	"github.com/danpilch/cpuusage/pkg/output"
	"github.com/danpilch/cpuusage/pkg/use"
)

const trendWindow = 20

func newWatchCommand(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Measure repeatedly until interrupted",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("count") {
				a.cfg.Watch.Count = count
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd)
		}),
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many measurements (0 runs until interrupted).")
	return cmd
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command) error {
	s, err := a.configure()
	if err != nil {
		return err
	}

	f := output.NewFormatter(a.format, cmd.OutOrStdout())
	f.SetTrend(output.NewTrend(trendWindow))

	render := func(res cpuusage.Result) error {
		if err := f.Render([]use.Check{a.checker.Evaluate(s, res)}); err != nil {
			return err
		}
		a.dumpRaw(cmd.OutOrStdout(), []*cpuusage.Sampler{s}, []cpuusage.Result{res})
		return nil
	}

	rendered := 0
	first := s.Measure()
	if first.Baseline == cpuusage.BaselineUptime {
		if err := render(first); err != nil {
			return err
		}
		rendered++
	}

	ticker := time.NewTicker(a.cfg.Watch.Interval)
	defer ticker.Stop()

	for a.cfg.Watch.Count == 0 || rendered < a.cfg.Watch.Count {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := render(s.Measure()); err != nil {
			return err
		}
		rendered++
	}
	return nil
}
