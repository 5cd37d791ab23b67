package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

func calc(m PricingModel, in *NormalizedInput) (float64, error) {
	return m.Calculate(in, &Service{ID: "svc"})
}

func TestPerSqmTiered(t *testing.T) {
	m := tieredService().Model

	price, err := calc(m, &NormalizedInput{Area: 100})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, price)

	price, err = calc(m, &NormalizedInput{Area: 30})
	require.NoError(t, err)
	assert.Equal(t, 450.0, price)

	_, err = calc(m, &NormalizedInput{Area: 200})
	assert.True(t, pricingerr.Is(err, pricingerr.KindOutOfRange))

	flat := &PerSqmTiered{Tiers: []AreaTier{{AreaBracket: AreaBracket{MinArea: 1, MaxArea: 40}, Type: TierFlatRate, Price: 1200}}}
	price, err = calc(flat, &NormalizedInput{Area: 35})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, price)
}

func TestFlatRange(t *testing.T) {
	m := flatRangeService().Model

	price, err := calc(m, &NormalizedInput{Area: 45})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, price)

	price, err = calc(m, &NormalizedInput{Area: 55})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, price)

	_, err = calc(m, &NormalizedInput{Area: 100})
	assert.True(t, pricingerr.Is(err, pricingerr.KindOutOfRange))
}

func TestFlatRateFallsBackToServiceRate(t *testing.T) {
	price, err := (&FlatRate{}).Calculate(&NormalizedInput{Area: 33.3}, &Service{PricePerSqm: 45})
	require.NoError(t, err)
	assert.Equal(t, 1499.0, price)

	_, err = (&FlatRate{}).Calculate(&NormalizedInput{Area: 10}, &Service{})
	assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidService))
}

func TestPerRoom(t *testing.T) {
	m := &PerRoom{PricePerRoom: 300, RoomRates: map[string]float64{"bedroom": 250, "kitchen": 400}}

	tests := []struct {
		name string
		in   NormalizedInput
		want float64
	}{
		{"estimated from area", NormalizedInput{Area: 80}, 900},
		{"small area counts one room", NormalizedInput{Area: 10}, 300},
		{"explicit room count", NormalizedInput{Area: 80, Rooms: 5}, 1500},
		{"room types", NormalizedInput{Area: 80, RoomTypes: map[string]int{"bedroom": 2, "kitchen": 1}}, 900},
		{"unknown room type uses flat rate", NormalizedInput{Area: 80, RoomTypes: map[string]int{"hall": 1}}, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := calc(m, &tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, price)
		})
	}

	_, err := calc(&PerRoom{RoomRates: map[string]float64{"bedroom": 250}}, &NormalizedInput{Area: 80})
	assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidService))
}

func TestHourlyBySize(t *testing.T) {
	m := &HourlyBySize{PricePerHour: 450, Brackets: []HourBracket{
		{AreaBracket: AreaBracket{MinArea: 1, MaxArea: 60}, Hours: 3},
		{AreaBracket: AreaBracket{MinArea: 61, MaxArea: 120}, Hours: 5},
	}}
	price, err := calc(m, &NormalizedInput{Area: 70})
	require.NoError(t, err)
	assert.Equal(t, 2250.0, price)

	_, err = calc(m, &NormalizedInput{Area: 500})
	assert.True(t, pricingerr.Is(err, pricingerr.KindOutOfRange))
}

func TestWindowBased(t *testing.T) {
	m := &WindowBased{WindowPrices: map[string]float64{"standard": 60, "large": 90}, MinimumCharge: 500}

	price, err := calc(m, &NormalizedInput{WindowCleaning: map[string]int{"standard": 10}})
	require.NoError(t, err)
	assert.Equal(t, 600.0, price)

	price, err = calc(m, &NormalizedInput{WindowCleaning: map[string]int{"standard": 2}})
	require.NoError(t, err)
	assert.Equal(t, 500.0, price)

	_, err = calc(m, &NormalizedInput{WindowCleaning: map[string]int{"roof": 1}})
	assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidInput))
}

func TestBulkDiscount(t *testing.T) {
	m := &BulkDiscount{BasePrice: 30, Tiers: []BulkTier{{MinArea: 100, Percentage: 10}, {MinArea: 200, Percentage: 20}}}

	tests := []struct {
		area float64
		want float64
	}{
		{50, 1500},
		{150, 4050},
		{250, 6000},
	}
	for _, tt := range tests {
		price, err := calc(m, &NormalizedInput{Area: tt.area})
		require.NoError(t, err)
		assert.Equal(t, tt.want, price, "area %v", tt.area)
	}
}

func TestDynamicPricing(t *testing.T) {
	m := &DynamicPricing{
		PricePerSqm:         10,
		TimeMultipliers:     []TimeMultiplier{{StartHour: 8, EndHour: 12, Multiplier: 1.5}, {StartHour: 22, EndHour: 6, Multiplier: 2}},
		SeasonalMultipliers: []SeasonalMultiplier{{Months: []int{3, 4}, Multiplier: 1.2}},
		DemandMultiplier:    1,
	}

	morning := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	price, err := calc(m, &NormalizedInput{Area: 100, Date: morning})
	require.NoError(t, err)
	assert.Equal(t, 1800.0, price)

	night := time.Date(2026, 7, 10, 23, 0, 0, 0, time.UTC)
	price, err = calc(m, &NormalizedInput{Area: 100, Date: night})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, price)

	afternoon := time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC)
	price, err = calc(m, &NormalizedInput{Area: 100, Date: afternoon})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, price)
}

func TestModelCheck(t *testing.T) {
	tests := []struct {
		name  string
		model PricingModel
	}{
		{"tiered without tiers", &PerSqmTiered{}},
		{"range without ranges", &FlatRange{}},
		{"hourly without brackets", &HourlyBySize{PricePerHour: 100}},
		{"windows without prices", &WindowBased{}},
		{"rooms without rates", &PerRoom{}},
		{"bulk with bad percentage", &BulkDiscount{Tiers: []BulkTier{{MinArea: 1, Percentage: 150}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, pricingerr.Is(tt.model.Check(), pricingerr.KindInvalidService))
		})
	}
}
