package crosscheck

import (
	"fmt"
	"math"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

// SanityResult holds the outcome of a physical constraint check.
type SanityResult struct {
	Check   string `json:"check"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// RunSanityChecks validates measurements against physical constraints:
// values are finite, non-negative, within the core ceiling, and busy time
// never exceeds wall time × cores.
func RunSanityChecks(samplers []*cpuusage.Sampler, results []cpuusage.Result) []SanityResult {
	var out []SanityResult

	for i, s := range samplers {
		res := results[i]
		name := fmt.Sprintf("%s/%s", s.Source().Scope(), s.Source().Name())

		ceiling := s.Ceiling()

		switch {
		case math.IsNaN(res.Percent) || math.IsInf(res.Percent, 0):
			out = append(out, SanityResult{name + " finite", false, fmt.Sprintf("non-finite value: %v", res.Percent)})
		case res.Percent < 0:
			out = append(out, SanityResult{name + " non-negative", false, fmt.Sprintf("negative value: %.2f", res.Percent)})
		case res.Percent > ceiling:
			out = append(out, SanityResult{name + " ceiling", false, fmt.Sprintf("%.2f%% exceeds %.0f%%", res.Percent, ceiling)})
		default:
			out = append(out, SanityResult{name + " range", true, fmt.Sprintf("%.2f%% within [0, %.0f]", res.Percent, ceiling)})
		}

		if res.Err != nil {
			out = append(out, SanityResult{name + " window", false, res.Err.Error()})
		}
	}

	return out
}
