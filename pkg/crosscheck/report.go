package crosscheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	validStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	suspectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Report outputs cross-check results and sanity checks as styled text.
func Report(w io.Writer, v ValidationResult, sanity []SanityResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Cross-Check: "+v.Metric))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("═", 60)))

	fmt.Fprintf(w, "  %s %s\n", headerStyle.Render("SOURCE              "), headerStyle.Render("USAGE       "))
	for _, s := range v.Sources {
		if s.Error != "" {
			fmt.Fprintf(w, "  %-22s %s\n", s.Name, dimStyle.Render("error: "+s.Error))
			continue
		}
		fmt.Fprintf(w, "  %-22s %.1f%%\n", s.Name, s.Value)
	}

	var status string
	switch v.Status {
	case StatusConflict:
		status = conflictStyle.Render("CONFLICT")
	case StatusSuspect:
		status = suspectStyle.Render("SUSPECT")
	default:
		status = validStyle.Render("VALID")
	}
	fmt.Fprintln(w, "  "+dimStyle.Render(strings.Repeat("─", 40)))
	fmt.Fprintf(w, "  Consensus %.1f%%, max deviation %.1f%%: %s\n", v.Consensus, v.MaxDeviation, status)

	if len(sanity) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Sanity Checks"))
		failed := 0
		for _, s := range sanity {
			icon := validStyle.Render("PASS")
			if !s.Passed {
				icon = conflictStyle.Render("FAIL")
				failed++
			}
			fmt.Fprintf(w, "  [%s] %-30s %s\n", icon, s.Check, dimStyle.Render(s.Details))
		}
		fmt.Fprintln(w)
		if failed == 0 {
			fmt.Fprintf(w, "  %s\n", validStyle.Render(fmt.Sprintf("All %d sanity checks passed.", len(sanity))))
		} else {
			fmt.Fprintf(w, "  %s\n", conflictStyle.Render(fmt.Sprintf("%d of %d sanity checks failed.", failed, len(sanity))))
		}
	}
}

// ReportJSON outputs cross-check results as JSON.
func ReportJSON(w io.Writer, v ValidationResult, sanity []SanityResult) error {
	output := struct {
		Validation ValidationResult `json:"validation"`
		Sanity     []SanityResult   `json:"sanity"`
	}{
		Validation: v,
		Sanity:     sanity,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
