package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

func TestInputFromRecordCoerces(t *testing.T) {
	svc := flatRateService(100)
	in, err := InputFromRecord(map[string]any{
		"area":           "45.5",
		"rooms":          "3",
		"frequency":      "weekly",
		"zipCode":        11455,
		"useRut":         "true",
		"addOns":         []any{"oven", "fridge"},
		"windowCleaning": map[string]any{"standard": "4"},
		"date":           "2026-05-01T09:00:00Z",
	}, svc)
	require.NoError(t, err)

	assert.Same(t, svc, in.Service)
	assert.Equal(t, 45.5, in.Area)
	assert.Equal(t, 3, in.Rooms)
	assert.Equal(t, FrequencyWeekly, in.Frequency)
	assert.Equal(t, "11455", in.ZipCode)
	assert.True(t, in.UseRut)
	assert.Equal(t, []string{"oven", "fridge"}, in.AddOns)
	assert.Equal(t, map[string]int{"standard": 4}, in.WindowCleaning)
	require.NotNil(t, in.Date)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), in.Date.UTC())
}

func TestInputFromRecordRejectsGarbage(t *testing.T) {
	_, err := InputFromRecord(map[string]any{"area": "large"}, nil)
	require.Error(t, err)
	assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidInput))
}

func TestNormalizeDefaults(t *testing.T) {
	n := normalize(&Input{Area: 20, ZipCode: " 114 55 ", AddOns: []string{"oven", " ", "oven", "balcony"}}, fixedNow)

	assert.Equal(t, FrequencyMonthly, n.Frequency)
	assert.Equal(t, "11455", n.ZipCode)
	assert.Equal(t, []string{"balcony", "oven"}, n.AddOns)
	assert.NotNil(t, n.WindowCleaning)
	assert.Equal(t, fixedNow, n.Date)
	assert.True(t, n.HasAddOn("oven"))
	assert.False(t, n.HasAddOn("fridge"))

	rec := n.Record()
	assert.Equal(t, 10, rec["hour"])
	assert.Equal(t, 3, rec["month"])
	assert.Equal(t, []any{"balcony", "oven"}, rec["addOns"])
}
