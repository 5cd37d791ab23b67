package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/booking-calculator/internal/condition"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

func TestRuleBuilder(t *testing.T) {
	from := fixedNow.Add(-time.Hour)
	rule, err := NewRuleBuilder(TypeDiscount, "large homes").
		ID("large-homes").
		Description("10% off homes over 120 sqm or villas").
		WhenAny(
			condition.Leaf("inputData.area", condition.GreaterThan, 120),
			condition.Leaf("inputData.propertyType", condition.Equals, "villa"),
		).
		When("inputData.frequency", condition.In, []any{"weekly", "biweekly"}).
		Percentage(10).
		Priority(PriorityHigh).
		ValidBetween(from, time.Time{}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "large-homes", rule.ID)
	assert.Equal(t, PriorityHigh, rule.Priority)
	assert.Len(t, rule.Conditions, 2)
	assert.Equal(t, &from, rule.ValidFrom)
	assert.Nil(t, rule.ValidUntil)

	e := newTestEngine(t, Defaults())
	mustAdd(t, e, rule)

	res, err := e.ApplyRules(context.Background(), Context{
		CurrentPrice: 2000,
		InputData:    map[string]any{"area": 80, "propertyType": "villa", "frequency": "weekly"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1800.0, res.FinalPrice)

	res, err = e.ApplyRules(context.Background(), Context{
		CurrentPrice: 2000,
		InputData:    map[string]any{"area": 80, "propertyType": "apartment", "frequency": "weekly"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.AppliedRules)
}

func TestRuleBuilderRejectsIncompleteRules(t *testing.T) {
	_, err := NewRuleBuilder(TypeMarkup, "").Fixed(10).Build()
	assert.True(t, pricingerr.Is(err, pricingerr.KindValidationError))

	_, err = NewRuleBuilder(TypeMarkup, "no action").Build()
	assert.True(t, pricingerr.Is(err, pricingerr.KindValidationError))

	rule, err := NewRuleBuilder(TypeMarkup, "off").Fixed(10).Disabled().Build()
	require.NoError(t, err)
	assert.False(t, rule.IsEnabled())
}
