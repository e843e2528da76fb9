package cpuusage

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrQueryFailure reports that the OS counter could not be read or
	// returned an invalid reading.
	ErrQueryFailure = errors.New("cpu usage query failed")
	// ErrClockAnomaly reports a zero or negative elapsed interval.
	ErrClockAnomaly = errors.New("non-positive elapsed time between samples")
	// ErrCounterRegression reports busy time going backwards.
	ErrCounterRegression = errors.New("busy time decreased between samples")
	// ErrScopeMismatch reports two samples that are not comparable.
	ErrScopeMismatch = errors.New("samples have different scope or tick rate")
)

// QueryError wraps a failed source read.
type QueryError struct {
	Source string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrQueryFailure, e.Source, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrQueryFailure) hold for every QueryError.
func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailure
}
