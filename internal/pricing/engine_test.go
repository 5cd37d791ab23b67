package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/booking-calculator/internal/condition"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

func TestCalculatePriceTieredExamples(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	res, err := e.CalculatePrice(ctx, &Input{Service: tieredService(), Area: 100})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, res.TotalPrice)
	assert.Equal(t, 2000.0, res.BasePrice)
	assert.Equal(t, ModelPerSqmTiered, res.Metadata.PricingModel)
	assert.Equal(t, FrequencyMonthly, res.Metadata.Input.Frequency)

	res, err = e.CalculatePrice(ctx, &Input{Service: tieredService(), Area: 30})
	require.NoError(t, err)
	assert.Equal(t, 450.0, res.TotalPrice)

	_, err = e.CalculatePrice(ctx, &Input{Service: tieredService(), Area: 200})
	assert.True(t, pricingerr.Is(err, pricingerr.KindOutOfRange))
}

func TestCalculatePriceFlatRangeExamples(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	res, err := e.CalculatePrice(ctx, &Input{Service: flatRangeService(), Area: 45})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, res.TotalPrice)

	res, err = e.CalculatePrice(ctx, &Input{Service: flatRangeService(), Area: 55})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, res.TotalPrice)

	_, err = e.CalculatePrice(ctx, &Input{Service: flatRangeService(), Area: 100})
	require.Error(t, err)
}

func TestRutDiscountGating(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.RutPercentage = 0.3
		c.RutEligibleZips = []string{"11455"}
	})
	ctx := context.Background()
	optOut := false

	tests := []struct {
		name    string
		input   Input
		want    float64
		applied bool
	}{
		{"eligible", Input{Area: 10, UseRut: true, ZipCode: "11455"}, 700, true},
		{"eligible with space", Input{Area: 10, UseRut: true, ZipCode: "114 55"}, 700, true},
		{"not requested", Input{Area: 10, UseRut: false, ZipCode: "11455"}, 1000, false},
		{"zip not eligible", Input{Area: 10, UseRut: true, ZipCode: "41101"}, 1000, false},
		{"no zip", Input{Area: 10, UseRut: true}, 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.Service = flatRateService(100)
			res, err := e.CalculatePrice(ctx, &in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.TotalPrice)
			hasRut := false
			for _, d := range res.Discounts {
				if d.Type == DiscountRut {
					hasRut = true
					assert.Equal(t, 300.0, d.Amount)
					assert.Equal(t, 30.0, d.Percentage)
				}
			}
			assert.Equal(t, tt.applied, hasRut)
		})
	}

	svc := flatRateService(100)
	svc.RutEligible = &optOut
	res, err := e.CalculatePrice(ctx, &Input{Service: svc, Area: 10, UseRut: true, ZipCode: "11455"})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.TotalPrice)
}

func TestModifiersRunInOrder(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.RutEligibleZips = []string{"11455"}
	})

	res, err := e.CalculatePrice(context.Background(), &Input{
		Service:        flatRateService(40),
		Area:           50,
		Frequency:      FrequencyWeekly,
		AddOns:         []string{"oven", "mystery", "oven"},
		WindowCleaning: map[string]int{"standard": 5},
		UseRut:         true,
		ZipCode:        "11455",
	})
	require.NoError(t, err)

	names := make([]string, len(res.Breakdown))
	for i, b := range res.Breakdown {
		names[i] = b.Name
	}
	assert.Equal(t, []string{EntryBase, EntryFrequency, EntryAddOns, EntryWindowCleaning, EntryRutDiscount}, names)
	assert.Equal(t, []BreakdownEntry{
		{Name: EntryBase, Amount: 2000},
		{Name: EntryFrequency, Amount: -300},
		{Name: EntryAddOns, Amount: 495},
		{Name: EntryWindowCleaning, Amount: 500},
		{Name: EntryRutDiscount, Amount: -808.5},
	}, res.Breakdown)
	assert.Equal(t, 1886.5, res.TotalPrice)
	assert.Equal(t, res.TotalPrice, res.BreakdownTotal())
	assert.Equal(t, []AddOnCharge{{ID: "oven", Price: 495}}, res.AddOns)
	assert.Equal(t, []Discount{
		{Type: DiscountFrequency, Percentage: 15, Amount: 300},
		{Type: DiscountRut, Percentage: 30, Amount: 808.5},
	}, res.Discounts)
	assert.Equal(t, 377.3, res.VatAmount)
}

func TestServiceAddOnPricesOverrideConfig(t *testing.T) {
	e := newTestEngine(t, nil)
	svc := flatRateService(100)
	svc.AddOnPrices = map[string]float64{"oven": 300}

	res, err := e.CalculatePrice(context.Background(), &Input{Service: svc, Area: 10, AddOns: []string{"oven"}})
	require.NoError(t, err)
	assert.Equal(t, 1300.0, res.TotalPrice)
}

func TestWindowBasedServiceIsNotChargedTwice(t *testing.T) {
	e := newTestEngine(t, nil)
	svc := &Service{ID: "windows", Model: &WindowBased{WindowPrices: map[string]float64{"standard": 80}, MinimumCharge: 400}}

	res, err := e.CalculatePrice(context.Background(), &Input{Service: svc, Area: 10, WindowCleaning: map[string]int{"standard": 10}})
	require.NoError(t, err)
	assert.Equal(t, 800.0, res.TotalPrice)
	assert.Len(t, res.Breakdown, 1)
}

func TestMinimumPriceFloor(t *testing.T) {
	e := newTestEngine(t, nil)
	svc := flatRateService(100)
	svc.MinimumPrice = 1500

	res, err := e.CalculatePrice(context.Background(), &Input{Service: svc, Area: 10})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, res.TotalPrice)
	assert.Equal(t, BreakdownEntry{Name: EntryMinimumPrice, Amount: 500}, res.Breakdown[len(res.Breakdown)-1])
	assert.Equal(t, res.TotalPrice, res.BreakdownTotal())
}

func TestInternalRulesFoldSequentially(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Rules = []Rule{
			{Name: "double", Action: RuleAction{Type: ActionMultiply, Value: 2}},
			{
				Name:       "large-job",
				Conditions: []condition.Condition{condition.Leaf("price", condition.GreaterThanOrEqual, 2000)},
				Action:     RuleAction{Type: ActionSubtract, Value: 100},
			},
			{
				Name:       "big-flat",
				Conditions: []condition.Condition{condition.Leaf("inputData.area", condition.GreaterThan, 500)},
				Action:     RuleAction{Type: ActionDiscountPercentage, Value: 50},
			},
		}
	})

	res, err := e.CalculatePrice(context.Background(), &Input{Service: flatRateService(100), Area: 10})
	require.NoError(t, err)
	assert.Equal(t, 1900.0, res.TotalPrice)
	assert.Equal(t, []string{"double", "large-job"}, res.AppliedRules)
	assert.Equal(t, res.TotalPrice, res.BreakdownTotal())
}

func TestTotalNeverNegative(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Rules = []Rule{{Name: "giveaway", Action: RuleAction{Type: ActionSubtract, Value: 5000}}}
	})

	for _, area := range []float64{1, 10, 40, 49.5} {
		res, err := e.CalculatePrice(context.Background(), &Input{Service: flatRateService(100), Area: area})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.TotalPrice, 0.0)
		assert.Equal(t, 0.0, res.TotalPrice)
		assert.Equal(t, EntryZeroFloor, res.Breakdown[len(res.Breakdown)-1].Name)
		assert.InDelta(t, res.TotalPrice, res.BreakdownTotal(), 0.005)
	}
}

func TestStructuralValidation(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := e.CalculatePrice(context.Background(), &Input{Area: 0, Frequency: "daily", ZipCode: "abc"})
	require.Error(t, err)
	assert.True(t, pricingerr.Is(err, pricingerr.KindValidationError))

	fields := map[string]bool{}
	for _, fe := range pricingerr.FieldErrors(err) {
		fields[fe.Field] = true
	}
	assert.Equal(t, map[string]bool{"service": true, "area": true, "frequency": true, "zipCode": true}, fields)

	_, err = e.CalculatePrice(context.Background(), &Input{Service: flatRateService(100), Area: 5000})
	assert.True(t, pricingerr.Is(err, pricingerr.KindValidationError))

	_, err = e.CalculatePrice(context.Background(), nil)
	assert.True(t, pricingerr.Is(err, pricingerr.KindValidationError))
}

func TestInvalidService(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := e.CalculatePrice(context.Background(), &Input{Service: &Service{ID: "bare"}, Area: 10})
	assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidService))

	_, err = e.CalculatePrice(context.Background(), &Input{Service: &Service{ID: "tiers", Model: &PerSqmTiered{}}, Area: 10})
	assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidService))
}

func TestCacheServesCopies(t *testing.T) {
	e := newTestEngine(t, nil)
	in := &Input{Service: flatRateService(100), Area: 10, AddOns: []string{"oven", "fridge"}}

	first, err := e.CalculatePrice(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, first.Metadata.FromCache)

	first.TotalPrice = 1
	first.Breakdown[0].Amount = 1

	second, err := e.CalculatePrice(context.Background(), &Input{Service: flatRateService(100), Area: 10, AddOns: []string{"fridge", "oven"}})
	require.NoError(t, err)
	assert.True(t, second.Metadata.FromCache)
	assert.Equal(t, 1790.0, second.TotalPrice)
	assert.Equal(t, 1000.0, second.Breakdown[0].Amount)
	assert.Equal(t, first.Metadata.CacheKey, second.Metadata.CacheKey)

	stats := e.CacheStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)

	e.ClearCache()
	assert.Equal(t, 0, e.CacheStats().Size)
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	e := newTestEngine(t, nil)
	in := &Input{Service: flatRateService(100), Area: 10}

	for i := 0; i < 2; i++ {
		res, err := e.CalculatePrice(context.Background(), in)
		require.NoError(t, err)

		data, err := json.Marshal(res)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		for _, field := range []string{"discounts", "addOns", "appliedRules"} {
			assert.Equal(t, []any{}, decoded[field], field)
		}
	}
}

func TestCacheDisabled(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.CacheSize = 0 })
	in := &Input{Service: flatRateService(100), Area: 10}

	for i := 0; i < 2; i++ {
		res, err := e.CalculatePrice(context.Background(), in)
		require.NoError(t, err)
		assert.False(t, res.Metadata.FromCache)
	}
	assert.False(t, e.CacheStats().Enabled)
}

func TestCacheKey(t *testing.T) {
	svc := tieredService()
	at := func(h, m int) time.Time { return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC) }
	key := func(in Input) string {
		in.Service = svc
		return ComputeCacheKey(normalize(&in, fixedNow), svc)
	}
	d1, d2, d3 := at(10, 5), at(10, 55), at(11, 0)

	assert.Equal(t,
		key(Input{Area: 40, AddOns: []string{"oven", "fridge"}, Date: &d1}),
		key(Input{Area: 40, AddOns: []string{"fridge", "oven", "oven"}, Date: &d2}))
	assert.NotEqual(t,
		key(Input{Area: 40, Date: &d2}),
		key(Input{Area: 40, Date: &d3}))
	assert.NotEqual(t, key(Input{Area: 40}), key(Input{Area: 41}))
	assert.NotEqual(t, key(Input{Area: 40}), key(Input{Area: 40, PromoCode: "SPRING"}))
	assert.Equal(t, key(Input{Area: 40}), key(Input{Area: 40, Frequency: FrequencyMonthly}))

	changed := tieredService()
	changed.Model.(*PerSqmTiered).Tiers[0].PricePerSqm = 16
	in := Input{Service: changed, Area: 40}
	assert.NotEqual(t, key(Input{Area: 40}), ComputeCacheKey(normalize(&in, fixedNow), changed))
}

func TestCacheKeyUsesLocalHour(t *testing.T) {
	svc := tieredService()
	key := func(d time.Time) string {
		return ComputeCacheKey(normalize(&Input{Service: svc, Area: 40, Date: &d}, fixedNow), svc)
	}
	utc := time.Date(2026, 12, 31, 23, 10, 0, 0, time.UTC)
	cet := time.Date(2027, 1, 1, 0, 50, 0, 0, time.FixedZone("CET", 3600))

	assert.NotEqual(t, key(utc), key(cet))
	assert.Equal(t, key(cet), key(cet.Add(5*time.Minute)))
}

func TestCacheHitAcrossTimeZones(t *testing.T) {
	e := newTestEngine(t, nil)
	svc := &Service{ID: "dynamic", Name: "Kvällsstädning", Model: &DynamicPricing{
		PricePerSqm:         10,
		TimeMultipliers:     []TimeMultiplier{{StartHour: 0, EndHour: 6, Multiplier: 2}},
		SeasonalMultipliers: []SeasonalMultiplier{{Months: []int{1}, Multiplier: 1.5}},
	}}
	newYearsEve := time.Date(2026, 12, 31, 23, 10, 0, 0, time.UTC)
	newYear := time.Date(2027, 1, 1, 0, 50, 0, 0, time.FixedZone("CET", 3600))

	first, err := e.CalculatePrice(context.Background(), &Input{Service: svc, Area: 100, Date: &newYearsEve})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, first.TotalPrice)

	second, err := e.CalculatePrice(context.Background(), &Input{Service: svc, Area: 100, Date: &newYear})
	require.NoError(t, err)
	assert.False(t, second.Metadata.FromCache)
	assert.Equal(t, 3000.0, second.TotalPrice)

	later := newYear.Add(5 * time.Minute)
	third, err := e.CalculatePrice(context.Background(), &Input{Service: svc, Area: 100, Date: &later})
	require.NoError(t, err)
	assert.True(t, third.Metadata.FromCache)
	assert.Equal(t, 3000.0, third.TotalPrice)
	assert.True(t, third.Metadata.Input.Date.Equal(later), "cached result should echo the caller's date")
}

func TestDeterminism(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.CacheSize = 0 })
	in := &Input{Service: tieredService(), Area: 42.5, Frequency: FrequencyBiweekly, AddOns: []string{"balcony"}}

	first, err := e.CalculatePrice(context.Background(), in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		next, err := e.CalculatePrice(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, first.TotalPrice, next.TotalPrice)
		assert.Equal(t, first.Breakdown, next.Breakdown)
	}
}

func TestConcurrentCalculations(t *testing.T) {
	e := newTestEngine(t, nil)
	in := &Input{Service: flatRangeService(), Area: 45}

	var wg sync.WaitGroup
	totals := make([]float64, 16)
	for i := range totals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.CalculatePrice(context.Background(), in)
			if err == nil {
				totals[i] = res.TotalPrice
			}
		}(i)
	}
	wg.Wait()
	for _, total := range totals {
		assert.Equal(t, 3000.0, total)
	}
}

func TestProcessors(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Use(func(_ context.Context, r *PriceResult) (*PriceResult, error) {
		r.Adjust("loyalty", -100)
		return r, nil
	})
	in := &Input{Service: flatRateService(100), Area: 10}

	for i := 0; i < 2; i++ {
		res, err := e.CalculatePrice(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, 900.0, res.TotalPrice)
		assert.Equal(t, res.TotalPrice, res.BreakdownTotal())
	}

	e.Use(func(context.Context, *PriceResult) (*PriceResult, error) {
		return nil, errors.New("loyalty service unavailable")
	})
	_, err := e.CalculatePrice(context.Background(), in)
	assert.True(t, pricingerr.Is(err, pricingerr.KindCalculationError))
}
