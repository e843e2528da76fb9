package cpuusage

import "sync"

// State holds the last observed Sample and the last known-good percentage.
// A Sampler holds the State lock for the whole read-compute-store cycle, so
// samplers sharing one State are serialized against each other.
type State struct {
	mu          sync.Mutex
	last        Sample
	valid       bool
	lastPercent float64
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// Seed installs a prior sample and known-good percentage.
func (st *State) Seed(sample Sample, percent float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.last = sample
	st.valid = true
	st.lastPercent = percent
}

// Last returns the last observed sample, or false if there is none.
func (st *State) Last() (Sample, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.last, st.valid
}

// LastPercent returns the last known-good percentage.
func (st *State) LastPercent() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lastPercent
}

// Reset forgets everything. The next measurement behaves as the first.
func (st *State) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.last = Sample{}
	st.valid = false
	st.lastPercent = 0
}
