// Package use evaluates CPU utilization measurements against thresholds,
// in the spirit of the USE method's utilization checks.
package use

// Status represents the health status of a check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusUnknown Status = "unknown"
)

// Check represents a single evaluated CPU usage measurement.
type Check struct {
	Resource    string  `json:"resource"`
	Scope       string  `json:"scope"`
	Source      string  `json:"source"`
	Value       string  `json:"value"`
	RawValue    float64 `json:"raw_value"`
	Normalized  bool    `json:"normalized"`
	Ceiling     float64 `json:"ceiling"`
	Status      Status  `json:"status"`
	Description string  `json:"description"`
}

// Thresholds defines warning and critical thresholds for utilization.
// For unnormalized measurements they apply per core.
type Thresholds struct {
	WarnUtil float64
	CritUtil float64
}

// DefaultThresholds returns the default threshold values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarnUtil: 70.0,
		CritUtil: 90.0,
	}
}

// EvaluateUtilization returns the appropriate status based on utilization percentage.
func (t Thresholds) EvaluateUtilization(percent float64) Status {
	if percent >= t.CritUtil {
		return StatusError
	}
	if percent >= t.WarnUtil {
		return StatusWarning
	}
	return StatusOK
}
