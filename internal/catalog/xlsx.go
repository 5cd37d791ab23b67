package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

// ImportTiersXLSX reads an area table from a workbook and builds the pricing
// model for kind. Columns are minArea, maxArea, value and an optional tier
// type; value is the price per m² for per_sqm tiers and the fixed price for
// flat_rate tiers and flat ranges. Only per_sqm_tiered and flat_range tables
// can be imported. A leading
// row whose first cell is not numeric is treated as a header. An empty sheet
// name selects the first sheet.
func ImportTiersXLSX(r io.Reader, sheet string, kind pricing.ModelName) (pricing.PricingModel, error) {
	if kind != pricing.ModelPerSqmTiered && kind != pricing.ModelFlatRange {
		return nil, pricingerr.Newf(pricingerr.KindInvalidInput, "cannot import a table for pricing model %s", kind)
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pricingerr.Wrap(pricingerr.KindInvalidInput, err, "failed to open workbook")
	}
	defer f.Close()

	sheet, err = selectSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, pricingerr.Wrap(pricingerr.KindInvalidInput, err, "failed to read worksheet")
	}
	first := 1
	if len(rows) > 0 && len(rows[0]) > 0 {
		if _, err := cast.ToFloat64E(strings.TrimSpace(rows[0][0])); err != nil {
			rows = rows[1:]
			first = 2
		}
	}

	var (
		tiers  []pricing.AreaTier
		ranges []pricing.PriceRange
	)
	for i, row := range rows {
		if blank(row) {
			continue
		}
		line := i + first
		if len(row) < 3 {
			return nil, rowError(sheet, line, "expected minArea, maxArea and value columns")
		}
		var nums [3]float64
		for c := 0; c < 3; c++ {
			v, err := cast.ToFloat64E(strings.TrimSpace(row[c]))
			if err != nil || v < 0 {
				return nil, rowError(sheet, line, fmt.Sprintf("column %d is not a non-negative number: %q", c+1, row[c]))
			}
			nums[c] = v
		}
		bracket := pricing.AreaBracket{MinArea: nums[0], MaxArea: nums[1]}
		if bracket.MaxArea < bracket.MinArea {
			return nil, rowError(sheet, line, "maxArea is below minArea")
		}
		switch kind {
		case pricing.ModelPerSqmTiered:
			tier := pricing.AreaTier{AreaBracket: bracket, Type: pricing.TierPerSqm}
			if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
				tier.Type = pricing.TierType(strings.ToLower(strings.TrimSpace(row[3])))
			}
			if tier.Type == pricing.TierFlatRate {
				tier.Price = nums[2]
			} else {
				tier.PricePerSqm = nums[2]
			}
			tiers = append(tiers, tier)
		default:
			ranges = append(ranges, pricing.PriceRange{AreaBracket: bracket, Price: nums[2]})
		}
	}

	var model pricing.PricingModel = &pricing.FlatRange{Ranges: ranges}
	if kind == pricing.ModelPerSqmTiered {
		model = &pricing.PerSqmTiered{Tiers: tiers}
	}
	if err := model.Check(); err != nil {
		return nil, err
	}
	return model, nil
}

func selectSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", pricingerr.New(pricingerr.KindInvalidInput, "workbook has no sheets")
	}
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == name {
			return s, nil
		}
	}
	return "", pricingerr.Newf(pricingerr.KindNotFound, "sheet %q not found", name)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowError(sheet string, line int, msg string) error {
	return pricingerr.Newf(pricingerr.KindInvalidInput, "%s row %d: %s", sheet, line, msg).
		WithDetail("sheet", sheet).
		WithDetail("row", line)
}
