package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/danpilch/cpuusage/pkg/sources"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newSourcesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the busy-time sources available on this platform",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
				Headers("SCOPE", "SOURCE", "PRIORITY", "STATUS").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})

			for _, scope := range sources.Scopes() {
				for _, e := range sources.Entries(scope) {
					status := "available"
					if _, err := sources.Open(scope, e.Name); err != nil {
						status = err.Error()
					}
					t.Row(string(scope), e.Name, fmt.Sprintf("%d", e.Priority), status)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		}),
	}
}
