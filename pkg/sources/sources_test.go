package sources

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/cpuusage/pkg/cpuusage"
)

type staticSource struct {
	name  string
	scope cpuusage.Scope
}

func (s staticSource) Name() string          { return s.name }
func (s staticSource) Scope() cpuusage.Scope { return s.scope }
func (s staticSource) Read() (cpuusage.Reading, error) {
	return cpuusage.Reading{Busy: 1, TicksPerSecond: 100}, nil
}

func opener(name string, scope cpuusage.Scope) Factory {
	return func() (cpuusage.Source, error) {
		return staticSource{name: name, scope: scope}, nil
	}
}

func broken(msg string) Factory {
	return func() (cpuusage.Source, error) {
		return nil, errors.New(msg)
	}
}

func TestRegistry_EntriesSortedByPriority(t *testing.T) {
	r := NewRegistry()
	r.Register("low", cpuusage.ScopeProcess, 1, opener("low", cpuusage.ScopeProcess))
	r.Register("high", cpuusage.ScopeProcess, 9, opener("high", cpuusage.ScopeProcess))
	r.Register("sys", cpuusage.ScopeSystem, 5, opener("sys", cpuusage.ScopeSystem))

	entries := r.Entries(cpuusage.ScopeProcess)
	require.Len(t, entries, 2)
	assert.Equal(t, "high", entries[0].Name)
	assert.Equal(t, "low", entries[1].Name)

	assert.Len(t, r.Entries(cpuusage.ScopeSystem), 1)
}

func TestRegistry_Scopes(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Scopes())

	r.Register("sys", cpuusage.ScopeSystem, 5, opener("sys", cpuusage.ScopeSystem))
	r.Register("a", cpuusage.ScopeProcess, 1, opener("a", cpuusage.ScopeProcess))
	r.Register("b", cpuusage.ScopeProcess, 9, opener("b", cpuusage.ScopeProcess))

	assert.Equal(t, []cpuusage.Scope{cpuusage.ScopeProcess, cpuusage.ScopeSystem}, r.Scopes())
}

func TestRegistry_OpenAutoSkipsBrokenSources(t *testing.T) {
	r := NewRegistry()
	r.Register("first", cpuusage.ScopeProcess, 9, broken("no permission"))
	r.Register("second", cpuusage.ScopeProcess, 5, opener("second", cpuusage.ScopeProcess))

	src, err := r.Open(cpuusage.ScopeProcess, Auto)
	require.NoError(t, err)
	assert.Equal(t, "second", src.Name())

	src, err = r.Open(cpuusage.ScopeProcess, "")
	require.NoError(t, err)
	assert.Equal(t, "second", src.Name())
}

func TestRegistry_OpenByName(t *testing.T) {
	r := NewRegistry()
	r.Register("a", cpuusage.ScopeSystem, 9, opener("a", cpuusage.ScopeSystem))
	r.Register("b", cpuusage.ScopeSystem, 5, opener("b", cpuusage.ScopeSystem))
	r.Register("bad", cpuusage.ScopeSystem, 1, broken("boom"))

	src, err := r.Open(cpuusage.ScopeSystem, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", src.Name())

	_, err = r.Open(cpuusage.ScopeSystem, "missing")
	assert.ErrorContains(t, err, "unknown system cpu source")

	_, err = r.Open(cpuusage.ScopeSystem, "bad")
	assert.ErrorContains(t, err, "boom")

	_, err = r.Open(cpuusage.ScopeProcess, Auto)
	assert.ErrorContains(t, err, "no process cpu sources")
}

func TestRegistry_OpenAll(t *testing.T) {
	r := NewRegistry()
	r.Register("a", cpuusage.ScopeSystem, 9, opener("a", cpuusage.ScopeSystem))
	r.Register("bad", cpuusage.ScopeSystem, 5, broken("boom"))
	r.Register("b", cpuusage.ScopeSystem, 1, opener("b", cpuusage.ScopeSystem))

	srcs, err := r.OpenAll(cpuusage.ScopeSystem)
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, "a", srcs[0].Name())
	assert.Equal(t, "b", srcs[1].Name())

	_, err = r.OpenAll(cpuusage.ScopeProcess)
	assert.Error(t, err)
}

func TestDefaultRegistryHasBothScopes(t *testing.T) {
	require.Equal(t, []cpuusage.Scope{cpuusage.ScopeProcess, cpuusage.ScopeSystem}, Scopes())
	for _, scope := range Scopes() {
		entries := Entries(scope)
		require.NotEmpty(t, entries, "scope %s", scope)
		// gopsutil is registered everywhere at the lowest priority
		assert.Equal(t, "gopsutil", entries[len(entries)-1].Name)
	}
}

func TestUnavailable(t *testing.T) {
	boom := errors.New("boom")
	src := Unavailable(cpuusage.ScopeProcess, boom)
	assert.Equal(t, cpuusage.ScopeProcess, src.Scope())

	_, err := src.Read()
	assert.ErrorIs(t, err, boom)

	s := cpuusage.New(src)
	assert.Equal(t, 0.0, s.Sample())
	assert.False(t, s.IsInitialized())
}

func TestCores(t *testing.T) {
	assert.GreaterOrEqual(t, Cores(), 1)
}

func TestSecondsToTicks(t *testing.T) {
	assert.Equal(t, uint64(1500000), secondsToTicks(1.5))
	assert.Equal(t, uint64(0), secondsToTicks(-1))
}
