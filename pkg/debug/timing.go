package debug

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

var (
	debugTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	debugHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	debugDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// SourceTiming records the duration of a source's most recent Read call.
type SourceTiming struct {
	Name  string
	Reads int
	Last  time.Duration
	Total time.Duration
}

// TimedSource wraps a cpuusage.Source to record read duration.
type TimedSource struct {
	inner  cpuusage.Source
	mu     sync.Mutex
	timing SourceTiming
}

// NewTimedSource wraps a source with timing instrumentation.
func NewTimedSource(s cpuusage.Source) *TimedSource {
	return &TimedSource{
		inner:  s,
		timing: SourceTiming{Name: s.Name()},
	}
}

// Name returns the wrapped source's name.
func (t *TimedSource) Name() string {
	return t.inner.Name()
}

// Scope returns the wrapped source's scope.
func (t *TimedSource) Scope() cpuusage.Scope {
	return t.inner.Scope()
}

// Read runs the wrapped source and records duration.
func (t *TimedSource) Read() (cpuusage.Reading, error) {
	start := time.Now()
	r, err := t.inner.Read()
	d := time.Since(start)

	t.mu.Lock()
	t.timing.Reads++
	t.timing.Last = d
	t.timing.Total += d
	t.mu.Unlock()
	return r, err
}

// Uptime forwards to the wrapped source when it supports it, so wrapping
// does not change the first-sample baseline.
func (t *TimedSource) Uptime() (time.Duration, error) {
	if us, ok := t.inner.(cpuusage.UptimeSource); ok {
		return us.Uptime()
	}
	return 0, errors.Errorf("%s does not report uptime", t.inner.Name())
}

// Timing returns a snapshot of the recorded timings.
func (t *TimedSource) Timing() SourceTiming {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timing
}

// TimingReport prints a styled timing summary for all timed sources.
func TimingReport(w io.Writer, timings []SourceTiming) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Source Timing Report"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 50)))
	fmt.Fprintf(w, "  %s  %s  %s\n",
		debugHeader.Render("SOURCE             "),
		debugHeader.Render("READS "),
		debugHeader.Render("LAST        "))
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 50)))

	var total time.Duration
	for _, t := range timings {
		fmt.Fprintf(w, "  %-20s %-7d %v\n", t.Name, t.Reads, t.Last)
		total += t.Total
	}
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 50)))
	fmt.Fprintf(w, "  %-20s %v\n",
		lipgloss.NewStyle().Bold(true).Render("TOTAL"), total)
}
