// Package cli implements the cpuusage command.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/cpuusage/pkg/config"
	"github.com/danpilch/cpuusage/pkg/cpuusage"
	"github.com/danpilch/cpuusage/pkg/debug"
	"github.com/danpilch/cpuusage/pkg/output"
	"github.com/danpilch/cpuusage/pkg/sources"
	"github.com/danpilch/cpuusage/pkg/sysinfo"
	"github.com/danpilch/cpuusage/pkg/use"
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// flags holds the raw persistent flag values; only those the user set
// override the loaded config.
type flags struct {
	configPath string
	logLevel   string
	scope      string
	source     string
	normalize  bool
	baseline   string
	format     string
	warn       float64
	crit       float64
	interval   time.Duration
	pprof      string
	timing     bool
	raw        bool
}

type app struct {
	flags  flags
	cfg    config.Config
	logger *log.Logger

	scope    cpuusage.Scope
	baseline cpuusage.Baseline
	format   output.Format
	checker  *use.Checker

	timed     []*debug.TimedSource
	stopPprof func()
}

// NewRootCommand builds the cpuusage command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: log.New()}
	def := config.Default()

	rootCmd := &cobra.Command{
		Use:   "cpuusage",
		Short: "Measure CPU utilization of this process or the host",
		Long: `cpuusage samples cumulative busy-time counters and reports the CPU
utilization between consecutive samples.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "Config file (default: "+config.EnvConfig+" or the first of cpuusage.toml, ~/.config/cpuusage/config.toml, /etc/cpuusage/config.toml).")
	pf.StringVar(&a.flags.logLevel, "log-level", def.Log.Level, "Log level. One of debug, info, warn, error, fatal, panic.")
	pf.StringVar(&a.flags.scope, "scope", def.Sampler.Scope, "What to measure: process or system.")
	pf.StringVar(&a.flags.source, "source", def.Sampler.Source, "Busy-time source, or auto for the best available.")
	pf.BoolVar(&a.flags.normalize, "normalize", def.Sampler.Normalize, "Divide by the core count so 100% means every core busy.")
	pf.StringVar(&a.flags.baseline, "baseline", def.Sampler.Baseline, "First-sample policy: zero, or uptime to measure since process start or boot.")
	pf.StringVar(&a.flags.format, "format", def.Output.Format, "Output format: table, json or tsv.")
	pf.Float64Var(&a.flags.warn, "warn", def.Thresholds.Warn, "Per-core utilization percent that raises a warning.")
	pf.Float64Var(&a.flags.crit, "crit", def.Thresholds.Crit, "Per-core utilization percent that is critical.")
	pf.DurationVarP(&a.flags.interval, "interval", "i", def.Watch.Interval, "Window between samples.")
	pf.StringVar(&a.flags.pprof, "pprof", "", "Serve pprof on this address while running, e.g. :6060.")
	pf.BoolVar(&a.flags.timing, "timing", false, "Report source read timings on exit.")
	pf.BoolVar(&a.flags.raw, "raw", false, "Dump the raw counter samples behind each result.")

	rootCmd.AddCommand(
		newSampleCommand(a),
		newCheckCommand(a),
		newWatchCommand(a),
		newCrosscheckCommand(a),
		newBenchCommand(a),
		newSourcesCommand(a),
	)
	return rootCmd
}

// Execute runs the root command and exits on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	pf := cmd.Flags()

	lvl, err := log.ParseLevel(a.flags.logLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	a.logger.SetOutput(cmd.ErrOrStderr())
	a.logger.SetLevel(lvl)

	cfg, err := config.Load(a.flags.configPath, a.logger)
	if err != nil {
		return err
	}

	if pf.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	} else if lvl, err = log.ParseLevel(cfg.Log.Level); err != nil {
		return errors.Wrap(err, "invalid log level in config")
	}
	a.logger.SetLevel(lvl)

	if pf.Changed("scope") {
		cfg.Sampler.Scope = a.flags.scope
	}
	if pf.Changed("source") {
		cfg.Sampler.Source = a.flags.source
	}
	if pf.Changed("normalize") {
		cfg.Sampler.Normalize = a.flags.normalize
	}
	if pf.Changed("baseline") {
		cfg.Sampler.Baseline = a.flags.baseline
	}
	if pf.Changed("format") {
		cfg.Output.Format = a.flags.format
	}
	if pf.Changed("warn") {
		cfg.Thresholds.Warn = a.flags.warn
	}
	if pf.Changed("crit") {
		cfg.Thresholds.Crit = a.flags.crit
	}
	if pf.Changed("interval") {
		cfg.Watch.Interval = a.flags.interval
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.scope, err = cpuusage.ParseScope(cfg.Sampler.Scope); err != nil {
		return err
	}
	if a.baseline, err = cpuusage.ParseBaseline(cfg.Sampler.Baseline); err != nil {
		return err
	}
	if a.format, err = output.ParseFormat(cfg.Output.Format); err != nil {
		return err
	}
	a.checker = use.NewChecker(use.Thresholds{
		WarnUtil: cfg.Thresholds.Warn,
		CritUtil: cfg.Thresholds.Crit,
	}, a.logger)

	if a.flags.pprof != "" {
		if a.stopPprof, err = debug.StartPprofServer(a.flags.pprof, a.logger); err != nil {
			return err
		}
	}
	return nil
}

// runE wraps a command body so teardown runs on every return path,
// including the non-zero exits of check.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.teardown(cmd.ErrOrStderr())
		return fn(cmd, args)
	}
}

func (a *app) teardown(w io.Writer) {
	if a.stopPprof != nil {
		a.stopPprof()
		a.stopPprof = nil
	}
	if a.flags.timing && len(a.timed) > 0 {
		timings := make([]debug.SourceTiming, len(a.timed))
		for i, t := range a.timed {
			timings[i] = t.Timing()
		}
		debug.TimingReport(w, timings)
	}
}

// wrap instruments src when --timing is set.
func (a *app) wrap(src cpuusage.Source) cpuusage.Source {
	if !a.flags.timing {
		return src
	}
	t := debug.NewTimedSource(src)
	a.timed = append(a.timed, t)
	return t
}

func (a *app) newSampler(src cpuusage.Source) *cpuusage.Sampler {
	return cpuusage.New(a.wrap(src),
		cpuusage.WithCores(sources.Cores()),
		cpuusage.WithNormalize(a.cfg.Sampler.Normalize),
		cpuusage.WithBaseline(a.baseline),
		cpuusage.WithMinInterval(a.cfg.Sampler.Hold),
		cpuusage.WithLogger(a.logger),
	)
}

// configure opens the selected source and installs it as the process-wide
// sampler.
func (a *app) configure() (*cpuusage.Sampler, error) {
	src, err := sources.Open(a.scope, a.cfg.Sampler.Source)
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(log.Fields{
		"source": src.Name(),
		"scope":  a.scope,
	}).Debug("Source opened")
	sysinfo.Configure(a.newSampler(src))
	return sysinfo.Sampler(), nil
}

// samplers opens every source of the selected scope.
func (a *app) samplers() ([]*cpuusage.Sampler, error) {
	srcs, err := sources.OpenAll(a.scope)
	if err != nil {
		return nil, err
	}
	out := make([]*cpuusage.Sampler, len(srcs))
	for i, src := range srcs {
		out[i] = a.newSampler(src)
	}
	return out, nil
}

// measure takes one windowed measurement: a priming sample, a pause of one
// interval, then the result. When the priming sample was measured against
// the source's uptime it is the result.
func (a *app) measure(s *cpuusage.Sampler) cpuusage.Result {
	first := s.Measure()
	if first.Baseline == cpuusage.BaselineUptime {
		return first
	}
	time.Sleep(a.cfg.Watch.Interval)
	return s.Measure()
}

func (a *app) dumpRaw(w io.Writer, samplers []*cpuusage.Sampler, results []cpuusage.Result) {
	if !a.flags.raw {
		return
	}
	names := make([]string, len(samplers))
	for i, s := range samplers {
		names[i] = s.Source().Name()
	}
	debug.DumpRawSamples(w, names, results)
}
