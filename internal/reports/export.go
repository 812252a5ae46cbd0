// Package reports builds the Excel exports served by the reports endpoints.
package reports

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/print-shop/internal/domain/materials"
	"github.com/Spok95/print-shop/internal/domain/pricing"
	"github.com/Spok95/print-shop/internal/domain/stock"
)

// PriceList renders the material price list with option surcharges.
func PriceList(mats []materials.Material) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	headers := []string{"Material", "Category", "Unit", "Price per unit", "Options"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, m := range mats {
		values := []any{
			m.Name,
			m.Category,
			unitLabel(m.Unit),
			pricing.Round2(m.PricePerUnit),
			formatOptions(m.Options, m.Unit),
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StockSheet renders roll stock per material, flagging rolls at or below
// their alert threshold.
func StockSheet(mats []materials.Material, entries []stock.Entry) ([]byte, error) {
	names := make(map[int64]string, len(mats))
	for _, m := range mats {
		names[m.ID] = m.Name
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	headers := []string{"Material", "Width (cm)", "In stock (cm)", "Alert threshold (cm)", "Low"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, e := range entries {
		low := ""
		if e.QuantityInStock <= e.AlertThreshold {
			low = "yes"
		}
		values := []any{
			names[e.MaterialID],
			e.Width,
			e.QuantityInStock,
			e.AlertThreshold,
			low,
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unitLabel(u materials.UnitMode) string {
	if u == materials.UnitLinearMeter {
		return "linear m"
	}
	return "m²"
}

func formatOptions(opts map[string]float64, u materials.UnitMode) string {
	if len(opts) == 0 {
		return ""
	}
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s +%.2f/%s", name, opts[name], unitLabel(u))
	}
	return out
}
