package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSEKUsesSwedishDecimalComma(t *testing.T) {
	assert.True(t, strings.HasSuffix(sek(1234.5), ",50 kr"), sek(1234.5))
	assert.True(t, strings.HasPrefix(signedSEK(150), "+150,00"), signedSEK(150))
	assert.True(t, strings.HasPrefix(signedSEK(-300), "-300,00"), signedSEK(-300))
}

func TestQuoteInputFromFlags(t *testing.T) {
	cmd := quoteCmd
	t.Cleanup(func() {
		quoteArea, quoteRooms, quoteRut, quoteAddOns, quoteWindows = 0, 0, false, nil, nil
	})
	assert.NoError(t, cmd.Flags().Parse([]string{
		"--area", "85", "--rooms", "3", "--add-on", "oven", "--window", "standard=4", "--rut",
	}))

	input := quoteInput(cmd)
	assert.Equal(t, 85.0, input["area"])
	assert.Equal(t, 3, input["rooms"])
	assert.Equal(t, []any{"oven"}, input["addOns"])
	assert.Equal(t, map[string]any{"standard": 4}, input["windowCleaning"])
	assert.Equal(t, true, input["useRut"])
	assert.NotContains(t, input, "frequency")
}
