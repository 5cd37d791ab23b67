package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"rut above one", func(c *Config) { c.RutPercentage = 1.5 }},
		{"max below min", func(c *Config) { c.MaxArea = 0.5 }},
		{"zero multiplier", func(c *Config) { c.FrequencyMultipliers["weekly"] = 0 }},
		{"bad zip", func(c *Config) { c.RutEligibleZips = []string{"1234"} }},
		{"unnamed rule", func(c *Config) { c.Rules = []Rule{{Action: RuleAction{Type: ActionAdd}}} }},
		{"unknown action", func(c *Config) { c.Rules = []Rule{{Name: "x", Action: RuleAction{Type: "divide"}}} }},
		{"cache without ttl", func(c *Config) { c.CacheTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var invalid ErrInvalidConfig
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := Defaults()
	cfg.MinArea = 0
	_, err := NewEngine(cfg, nil)
	assert.Error(t, err)
}
