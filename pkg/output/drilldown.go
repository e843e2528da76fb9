package output

import (
	"github.com/danpilch/cpuusage/pkg/cpuusage"
	"github.com/danpilch/cpuusage/pkg/use"
)

// Suggestion represents a diagnostic next-step.
type Suggestion struct {
	Tool    string
	Command string
	Reason  string
}

// DrillDown returns diagnostic suggestions for a check above its thresholds.
func DrillDown(check use.Check) []Suggestion {
	if check.Status != use.StatusError && check.Status != use.StatusWarning {
		return nil
	}

	switch cpuusage.Scope(check.Scope) {
	case cpuusage.ScopeProcess:
		return []Suggestion{
			{"pprof", "go tool pprof -seconds 10 http://localhost:6060/debug/pprof/profile", "Profile the process (run with --pprof :6060)"},
			{"cpuusage", "cpuusage crosscheck --scope process", "Confirm the reading against other sources"},
		}
	case cpuusage.ScopeSystem:
		return []Suggestion{
			{"top", "top -o cpu", "Identify top CPU consumers"},
			{"cpuusage", "cpuusage crosscheck --scope system", "Confirm the reading against other sources"},
		}
	}
	return nil
}
