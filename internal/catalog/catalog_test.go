package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
	"github.com/kosarica/booking-calculator/internal/rules"
)

const sampleYAML = `
services:
  - id: home-cleaning
    tenantId: acme
    name: Home cleaning
    pricingModel: per_sqm_tiered
    pricingConfig:
      tiers:
        - minArea: 1
          maxArea: 50
          type: flat_rate
          price: 2000
        - minArea: 51
          maxArea: 200
          type: per_sqm
          pricePerSqm: 45
    minimumPrice: 1500
  - id: move-out
    name: Move-out cleaning
    pricingModel: flat_range
    pricingConfig:
      ranges:
        - {minArea: 1, maxArea: 60, price: 3000}
        - {minArea: 61, maxArea: 120, price: 4000}
rules:
  - name: spring-campaign
    type: seasonal
    action: {type: percentage, value: -10}
    params:
      months: [3, 4, 5]
  - name: large-home
    type: markup
    action: {type: fixed, value: 250}
    conditions:
      - field: inputData.area
        operator: greater_than
        value: 150
`

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	svc, err := c.Service("home-cleaning")
	require.NoError(t, err)
	assert.Equal(t, "acme", svc.TenantID)
	assert.Equal(t, pricing.ModelPerSqmTiered, svc.ModelName())
	tiered, ok := svc.Model.(*pricing.PerSqmTiered)
	require.True(t, ok)
	require.Len(t, tiered.Tiers, 2)
	assert.Equal(t, 45.0, tiered.Tiers[1].PricePerSqm)
	assert.Equal(t, 1500.0, svc.MinimumPrice)

	ids := make([]string, 0)
	for _, s := range c.Services() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"home-cleaning", "move-out"}, ids)

	rs := c.Rules()
	require.Len(t, rs, 2)
	assert.Equal(t, rules.TypeSeasonal, rs[0].Type)
	assert.Equal(t, []int{3, 4, 5}, rs[0].Params.Months)
	require.Len(t, rs[1].Conditions, 1)
	assert.Equal(t, "inputData.area", rs[1].Conditions[0].Field)
}

func TestParseJSONMatchesYAML(t *testing.T) {
	fromYAML, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	data, err := Encode(Document{Services: fromYAML.Services(), Rules: fromYAML.Rules()}, FormatJSON)
	require.NoError(t, err)
	fromJSON, err := Parse(data, FormatJSON)
	require.NoError(t, err)

	a, _ := fromYAML.Service("move-out")
	b, _ := fromJSON.Service("move-out")
	assert.Equal(t, a.Model, b.Model)
	assert.Len(t, fromJSON.Rules(), 2)
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	c, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	out, err := Encode(Document{Services: c.Services()}, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "pricingModel: per_sqm_tiered")

	again, err := Parse(out, FormatYAML)
	require.NoError(t, err)
	assert.Len(t, again.Services(), 2)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind pricingerr.Kind
	}{
		{"malformed yaml", "services: [", pricingerr.KindInvalidInput},
		{"unknown top-level field", "servicez: []", pricingerr.KindInvalidInput},
		{"missing id", "services:\n  - name: x\n    pricingModel: flat_rate\n    pricingConfig: {pricePerSqm: 10}", pricingerr.KindInvalidService},
		{"unknown model", "services:\n  - id: a\n    pricingModel: per_minute", pricingerr.KindInvalidService},
		{"missing model", "services:\n  - id: a", pricingerr.KindInvalidService},
		{"incomplete model", "services:\n  - id: a\n    pricingModel: flat_range", pricingerr.KindInvalidService},
		{"duplicate id", "services:\n  - {id: a, pricingModel: flat_rate, pricingConfig: {pricePerSqm: 10}}\n  - {id: a, pricingModel: flat_rate, pricingConfig: {pricePerSqm: 12}}", pricingerr.KindInvalidService},
		{"invalid rule", "services: []\nrules:\n  - name: broken\n    type: discount", pricingerr.KindValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatYAML)
			require.Error(t, err)
			assert.Equal(t, tt.kind, pricingerr.KindOf(err))
		})
	}
}

func TestServiceNotFound(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)
	_, err = c.Service("nope")
	assert.True(t, pricingerr.Is(err, pricingerr.KindNotFound))
}

func TestPutReplacesService(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)

	require.Error(t, c.Put(&pricing.Service{ID: "a"}))
	require.NoError(t, c.Put(&pricing.Service{ID: "a", Model: &pricing.FlatRate{PricePerSqm: 10}}))
	require.NoError(t, c.Put(&pricing.Service{ID: "a", Model: &pricing.FlatRate{PricePerSqm: 12}}))

	svc, err := c.Service("a")
	require.NoError(t, err)
	assert.Equal(t, 12.0, svc.Model.(*pricing.FlatRate).PricePerSqm)
}

func TestLoadSelectsFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o600))

	c, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, c.Services(), 2)

	data, err := Encode(Document{Services: c.Services()}, FormatJSON)
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "catalog.JSON")
	require.NoError(t, os.WriteFile(jsonPath, data, 0o600))
	c, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, c.Services(), 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRegisterRules(t *testing.T) {
	c, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	e, err := rules.NewEngine(rules.Defaults(), nil, rules.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	ids, err := c.RegisterRules(e)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Len(t, e.GetRules(), 2)

	res, err := e.ApplyRules(context.Background(), rules.Context{
		CurrentPrice: 2000,
		InputData:    map[string]any{"area": 160.0},
	})
	require.NoError(t, err)
	// April is in season; the area condition also holds
	assert.Equal(t, 2050.0, res.FinalPrice)
}
