package catalog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

func workbook(t *testing.T, sheet string, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportTiersXLSX(t *testing.T) {
	r := workbook(t, "Sheet1", [][]any{
		{"min", "max", "price", "type"},
		{1, 50, 2000, "flat_rate"},
		{51, 200, 45},
		{},
	})

	model, err := ImportTiersXLSX(r, "", pricing.ModelPerSqmTiered)
	require.NoError(t, err)
	tiered, ok := model.(*pricing.PerSqmTiered)
	require.True(t, ok)
	require.Len(t, tiered.Tiers, 2)
	assert.Equal(t, pricing.TierFlatRate, tiered.Tiers[0].Type)
	assert.Equal(t, 2000.0, tiered.Tiers[0].Price)
	assert.Equal(t, pricing.TierPerSqm, tiered.Tiers[1].Type)
	assert.Equal(t, 45.0, tiered.Tiers[1].PricePerSqm)
	assert.Equal(t, 200.0, tiered.Tiers[1].MaxArea)
}

func TestImportFlatRangeFromNamedSheet(t *testing.T) {
	r := workbook(t, "Ranges", [][]any{
		{1, 60, 3000},
		{61, 120, 4000},
	})

	model, err := ImportTiersXLSX(r, "Ranges", pricing.ModelFlatRange)
	require.NoError(t, err)
	ranges := model.(*pricing.FlatRange).Ranges
	require.Len(t, ranges, 2)
	assert.Equal(t, pricing.PriceRange{AreaBracket: pricing.AreaBracket{MinArea: 61, MaxArea: 120}, Price: 4000}, ranges[1])
}

func TestImportTiersXLSXErrors(t *testing.T) {
	t.Run("unsupported model", func(t *testing.T) {
		_, err := ImportTiersXLSX(workbook(t, "Sheet1", [][]any{{1, 2, 3}}), "", pricing.ModelPerRoom)
		assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidInput))
	})
	t.Run("missing sheet", func(t *testing.T) {
		_, err := ImportTiersXLSX(workbook(t, "Sheet1", [][]any{{1, 2, 3}}), "Prices", pricing.ModelFlatRange)
		assert.True(t, pricingerr.Is(err, pricingerr.KindNotFound))
	})
	t.Run("short row", func(t *testing.T) {
		_, err := ImportTiersXLSX(workbook(t, "Sheet1", [][]any{{1, 2}}), "", pricing.ModelFlatRange)
		var pe *pricingerr.Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 1, pe.Details["row"])
	})
	t.Run("inverted bracket", func(t *testing.T) {
		_, err := ImportTiersXLSX(workbook(t, "Sheet1", [][]any{{"from", "to", "sek"}, {50, 10, 3}}), "", pricing.ModelFlatRange)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")
	})
	t.Run("empty table", func(t *testing.T) {
		_, err := ImportTiersXLSX(workbook(t, "Sheet1", nil), "", pricing.ModelFlatRange)
		assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidService))
	})
	t.Run("not a workbook", func(t *testing.T) {
		_, err := ImportTiersXLSX(bytes.NewReader([]byte("min,max,price")), "", pricing.ModelFlatRange)
		assert.True(t, pricingerr.Is(err, pricingerr.KindInvalidInput))
	})
}
