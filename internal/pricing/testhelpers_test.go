package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := Defaults()
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngine(cfg, nil, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return e
}

func flatRateService(rate float64) *Service {
	return &Service{ID: "flat", Name: "Hemstädning", Model: &FlatRate{PricePerSqm: rate}}
}

func tieredService() *Service {
	return &Service{ID: "tiered", Name: "Storstädning", Model: &PerSqmTiered{Tiers: []AreaTier{
		{AreaBracket: AreaBracket{MinArea: 1, MaxArea: 50}, Type: TierPerSqm, PricePerSqm: 15},
		{AreaBracket: AreaBracket{MinArea: 51, MaxArea: 100}, Type: TierPerSqm, PricePerSqm: 20},
	}}}
}

func flatRangeService() *Service {
	return &Service{ID: "range", Name: "Flyttstädning", Model: &FlatRange{Ranges: []PriceRange{
		{AreaBracket: AreaBracket{MinArea: 1, MaxArea: 50}, Price: 3000},
		{AreaBracket: AreaBracket{MinArea: 51, MaxArea: 60}, Price: 4000},
		{AreaBracket: AreaBracket{MinArea: 61, MaxArea: 70}, Price: 5000},
	}}}
}
