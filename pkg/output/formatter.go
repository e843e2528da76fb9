// Package output renders CPU usage checks.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"github.com/danpilch/cpuusage/pkg/use"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatTSV:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q (want table, json or tsv)", s)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusStyles = map[use.Status]lipgloss.Style{
		use.StatusOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true), // Green
		use.StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true), // Yellow
		use.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),  // Red
		use.StatusUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),  // Gray
	}
)

// Formatter handles output formatting.
type Formatter struct {
	format     Format
	writer     io.Writer
	trend      *Trend
	headerDone bool
	now        func() time.Time
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
		now:    time.Now,
	}
}

// SetTrend enables the trend column for watch mode.
func (f *Formatter) SetTrend(t *Trend) {
	f.trend = t
}

// Render outputs the checks in the configured format.
func (f *Formatter) Render(checks []use.Check) error {
	if f.trend != nil {
		for _, c := range checks {
			f.trend.Record(trendKey(c), c.RawValue, c.Ceiling)
		}
	}

	switch f.format {
	case FormatJSON:
		return f.renderJSON(checks)
	case FormatTSV:
		return f.renderTSV(checks)
	default:
		return f.renderTable(checks)
	}
}

func trendKey(c use.Check) string {
	return c.Scope + "|" + c.Source
}

// renderJSON writes one JSON document per call.
func (f *Formatter) renderJSON(checks []use.Check) error {
	output := struct {
		Timestamp time.Time   `json:"timestamp"`
		Checks    []use.Check `json:"checks"`
		Summary   use.Summary `json:"summary"`
	}{
		Timestamp: f.now().UTC(),
		Checks:    checks,
		Summary:   use.Summarize(checks),
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// renderTable outputs checks as a styled table.
func (f *Formatter) renderTable(checks []use.Check) error {
	if !f.headerDone {
		fmt.Fprintln(f.writer, titleStyle.Render("CPU Usage"))
		fmt.Fprintln(f.writer, strings.Repeat("═", 60))
		fmt.Fprintln(f.writer)
		f.headerDone = true
	}

	hasTrend := f.trend != nil
	rows := make([][]string, len(checks))
	for i, check := range checks {
		row := []string{
			check.Scope,
			check.Source,
			check.Value,
			statusStyles[check.Status].Render(strings.ToUpper(string(check.Status))),
		}
		if hasTrend {
			row = append(row, f.trend.Line(trendKey(check)))
		}
		rows[i] = row
	}

	headers := []string{"SCOPE", "SOURCE", "USAGE", "STATUS"}
	if hasTrend {
		headers = append(headers, "TREND")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(f.writer, t)

	for _, check := range checks {
		if check.Status == use.StatusUnknown {
			fmt.Fprintln(f.writer, dimStyle.Render("  "+check.Description))
			continue
		}
		for _, s := range DrillDown(check) {
			fmt.Fprintf(f.writer, "  %-8s %s %s\n", s.Tool, s.Command, dimStyle.Render("- "+s.Reason))
		}
	}

	return nil
}

// renderTSV outputs checks as tab-separated values.
func (f *Formatter) renderTSV(checks []use.Check) error {
	if !f.headerDone {
		fmt.Fprintln(f.writer, "TIMESTAMP\tSCOPE\tSOURCE\tVALUE\tRAW_VALUE\tNORMALIZED\tSTATUS\tDESCRIPTION")
		f.headerDone = true
	}

	ts := f.now().UTC().Format(time.RFC3339)
	for _, c := range checks {
		fmt.Fprintf(f.writer, "%s\t%s\t%s\t%s\t%.4f\t%t\t%s\t%s\n",
			ts, c.Scope, c.Source, c.Value, c.RawValue,
			c.Normalized, c.Status, c.Description)
	}

	return nil
}
