package use

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

// Checker turns sampler results into checks.
type Checker struct {
	thresholds Thresholds
	logger     *logrus.Logger
}

// NewChecker creates a new checker.
func NewChecker(thresholds Thresholds, logger *logrus.Logger) *Checker {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Checker{
		thresholds: thresholds,
		logger:     logger,
	}
}

// Evaluate builds a check for one measurement of s.
//
// Unnormalized values are divided by the core count before comparison, so a
// 4-core process at 300% is evaluated as 75%.
func (c *Checker) Evaluate(s *cpuusage.Sampler, res cpuusage.Result) Check {
	src := s.Source()
	check := Check{
		Resource:   "CPU",
		Scope:      string(src.Scope()),
		Source:     src.Name(),
		Value:      fmt.Sprintf("%.1f%%", res.Percent),
		RawValue:   res.Percent,
		Normalized: s.Normalized(),
		Ceiling:    s.Ceiling(),
	}

	if res.Err != nil {
		c.logger.WithFields(logrus.Fields{
			"source": src.Name(),
			"error":  res.Err,
		}).Warn("Measurement degraded")
		check.Status = StatusUnknown
		check.Description = res.Err.Error()
		return check
	}

	perCore := res.Percent
	if !s.Normalized() {
		perCore /= float64(s.Cores())
		check.Description = fmt.Sprintf("%s CPU busy percentage across %d cores", src.Scope(), s.Cores())
	} else {
		check.Description = fmt.Sprintf("%s CPU busy percentage, normalized", src.Scope())
	}
	check.Status = c.thresholds.EvaluateUtilization(perCore)
	return check
}

// Summary calculates summary statistics from check results.
type Summary struct {
	Total    int
	OK       int
	Warnings int
	Errors   int
	Unknown  int
}

// Summarize calculates summary statistics from check results.
func Summarize(checks []Check) Summary {
	s := Summary{Total: len(checks)}
	for _, check := range checks {
		switch check.Status {
		case StatusOK:
			s.OK++
		case StatusWarning:
			s.Warnings++
		case StatusError:
			s.Errors++
		case StatusUnknown:
			s.Unknown++
		}
	}
	return s
}

// ExitCode returns the appropriate exit code based on check results.
func ExitCode(checks []Check) int {
	summary := Summarize(checks)
	if summary.Unknown > 0 && summary.Errors == 0 && summary.Warnings == 0 {
		return 3 // Tool error
	}
	if summary.Errors > 0 {
		return 2 // Critical
	}
	if summary.Warnings > 0 {
		return 1 // Warnings
	}
	return 0 // All OK
}
