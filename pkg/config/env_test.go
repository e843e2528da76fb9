package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danpilch/cpuusage/pkg/use"
)

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "sampler.scope", envKey("CPUUSAGE_SAMPLER_SCOPE"))
	assert.Equal(t, "watch.interval", envKey("CPUUSAGE_WATCH_INTERVAL"))
	assert.Equal(t, "", envKey(EnvConfig))
}

func TestDefault_Thresholds(t *testing.T) {
	th := use.DefaultThresholds()
	c := Default()
	assert.Equal(t, th.WarnUtil, c.Thresholds.Warn)
	assert.Equal(t, th.CritUtil, c.Thresholds.Crit)
}
