package fieldpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	record := map[string]any{
		"price": 1200.0,
		"inputData": map[string]any{
			"area":    85,
			"addOns":  []any{"oven", "fridge"},
			"windows": map[string]int{"standard": 4},
			"tags":    []string{"a", "b"},
		},
		"empty": nil,
	}

	tests := []struct {
		name  string
		path  string
		want  any
		found bool
	}{
		{"top level", "price", 1200.0, true},
		{"nested", "inputData.area", 85, true},
		{"slice index", "inputData.addOns.1", "fridge", true},
		{"typed map", "inputData.windows.standard", 4, true},
		{"typed slice", "inputData.tags.0", "a", true},
		{"missing leaf", "inputData.rooms", nil, false},
		{"missing parent", "customer.name", nil, false},
		{"index out of range", "inputData.addOns.5", nil, false},
		{"through scalar", "price.amount", nil, false},
		{"empty path", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(record, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.False(t, Exists(record, "empty"))
	assert.True(t, Exists(record, "price"))
}
