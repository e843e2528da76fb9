package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

// DumpRawSamples outputs the counter readings behind each result, before
// any clamping or normalization is visible.
func DumpRawSamples(w io.Writer, sources []string, results []cpuusage.Result) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Raw Samples Dump"))
	fmt.Fprintln(w, dim.Render(strings.Repeat("═", 100)))
	fmt.Fprintf(w, "  %s %s %s %s %s %s\n",
		header.Render("SOURCE              "),
		header.Render("TIMESTAMP     "),
		header.Render("BUSY              "),
		header.Render("BUSY SEC    "),
		header.Render("TICKS/S     "),
		header.Render("PERCENT   "))
	fmt.Fprintln(w, "  "+dim.Render(strings.Repeat("─", 100)))

	for i, r := range results {
		name := ""
		if i < len(sources) {
			name = sources[i]
		}
		fmt.Fprintf(w, "  %-21s %-15v %-19d %-13.3f %-13d %.4f",
			name, r.Sample.Timestamp, r.Sample.Busy, r.Sample.BusySeconds(), r.Sample.TicksPerSecond, r.Percent)
		if r.Err != nil {
			fmt.Fprint(w, "  "+dim.Render(r.Err.Error()))
		}
		fmt.Fprintln(w)
	}
}
