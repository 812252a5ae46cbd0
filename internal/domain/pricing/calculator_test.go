package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/print-shop/internal/domain/materials"
	"github.com/Spok95/print-shop/internal/domain/stock"
)

func vinyl() *materials.Material {
	return &materials.Material{
		ID:           1,
		Name:         "vinyl banner",
		Unit:         materials.UnitSquareMeter,
		PricePerUnit: 1000,
		Options: map[string]float64{
			"lamination": 200,
			"eyelets":    50,
		},
	}
}

func roll(width float64) *stock.Entry {
	return &stock.Entry{ID: 10, MaterialID: 1, Width: width, QuantityInStock: 10000}
}

func TestComputeBasePrice(t *testing.T) {
	// 100cm × 200cm × 1 at 1000/m² -> 2 m², 2000
	res, err := Compute(vinyl(), roll(100), OrderLine{Width: 100, Length: 200, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.UnitPrice)
	assert.InDelta(t, 2.0, res.Area, 1e-9)
	assert.InDelta(t, 200.0, res.MaterialLengthUsed, 1e-9)
	assert.InDelta(t, 2000.0, res.BasePrice, 1e-9)
	assert.InDelta(t, 2000.0, res.TotalPrice, 1e-9)
	assert.Equal(t, 100.0, res.SelectedWidth)
	assert.Empty(t, res.OptionsDetails)
}

func TestComputeWithOption(t *testing.T) {
	line := OrderLine{Width: 100, Length: 200, Quantity: 1, Options: []string{"lamination"}}
	res, err := Compute(vinyl(), roll(100), line)
	require.NoError(t, err)
	assert.InDelta(t, 400.0, res.OptionsCost, 1e-9)
	assert.InDelta(t, 2400.0, res.TotalPrice, 1e-9)
	require.Len(t, res.OptionsDetails, 1)
	assert.Equal(t, "lamination", res.OptionsDetails[0].Name)
	assert.Equal(t, 1, res.OptionsDetails[0].Quantity)
	assert.Equal(t, 200.0, res.OptionsDetails[0].UnitPrice)
	assert.InDelta(t, 400.0, res.OptionsDetails[0].TotalPrice, 1e-9)
}

func TestComputeOptionAdditivity(t *testing.T) {
	line := OrderLine{Width: 130, Length: 270, Quantity: 3, Options: []string{"lamination", "eyelets"}}
	res, err := Compute(vinyl(), roll(150), line)
	require.NoError(t, err)

	sum := 0.0
	for _, d := range res.OptionsDetails {
		sum += d.TotalPrice
	}
	assert.InDelta(t, sum, res.OptionsCost, 1e-9)
	assert.InDelta(t, res.BasePrice+res.OptionsCost, res.TotalPrice, 1e-9)
}

func TestComputeUnknownOptionIgnored(t *testing.T) {
	line := OrderLine{Width: 100, Length: 200, Quantity: 1, Options: []string{"glitter"}}
	res, err := Compute(vinyl(), roll(100), line)
	require.NoError(t, err)
	assert.Zero(t, res.OptionsCost)
	assert.Empty(t, res.OptionsDetails)
	assert.InDelta(t, 2000.0, res.TotalPrice, 1e-9)
}

func TestComputeSpecialOrderZeroesTotal(t *testing.T) {
	line := OrderLine{Width: 100, Length: 200, Quantity: 1, Options: []string{"lamination"}, SpecialOrder: true}
	res, err := Compute(vinyl(), roll(100), line)
	require.NoError(t, err)
	assert.Zero(t, res.TotalPrice)
	// measures are still reported for the form
	assert.InDelta(t, 2.0, res.Area, 1e-9)
	assert.InDelta(t, 200.0, res.MaterialLengthUsed, 1e-9)
	assert.InDelta(t, 400.0, res.OptionsCost, 1e-9)
}

func TestComputeSpecialOrderToleratesMissingStock(t *testing.T) {
	res, err := Compute(vinyl(), nil, OrderLine{Width: 100, Length: 200, Quantity: 1, SpecialOrder: true})
	require.NoError(t, err)
	assert.Zero(t, res.TotalPrice)
	assert.Zero(t, res.SelectedWidth)
	assert.InDelta(t, 2.0, res.Area, 1e-9)
}

func TestComputeSpecialOrderToleratesMissingMaterial(t *testing.T) {
	res, err := Compute(nil, nil, OrderLine{Width: 100, Length: 200, Quantity: 1, SpecialOrder: true})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestComputeMissingMaterialOrStock(t *testing.T) {
	line := OrderLine{Width: 100, Length: 200, Quantity: 1}
	_, err := Compute(nil, roll(100), line)
	assert.ErrorIs(t, err, ErrMaterialOrStockRequired)

	_, err = Compute(vinyl(), nil, line)
	assert.ErrorIs(t, err, ErrMaterialOrStockRequired)
}

func TestComputeInvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		line OrderLine
	}{
		{"zero width", OrderLine{Width: 0, Length: 200, Quantity: 1}},
		{"negative length", OrderLine{Width: 100, Length: -1, Quantity: 1}},
		{"zero quantity", OrderLine{Width: 100, Length: 200, Quantity: 0}},
		{"special order still needs dimensions", OrderLine{Width: 100, Length: 0, Quantity: 1, SpecialOrder: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(vinyl(), roll(100), tt.line)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestComputeLinearMaterial(t *testing.T) {
	m := &materials.Material{
		ID:           2,
		Name:         "banner tape",
		Unit:         materials.UnitLinearMeter,
		PricePerUnit: 50,
		Options:      map[string]float64{"reinforced": 10},
	}
	// 300cm × 2 -> 6 linear meters at 50 -> 300
	line := OrderLine{Width: 100, Length: 300, Quantity: 2, Options: []string{"reinforced"}}
	res, err := Compute(m, roll(100), line)
	require.NoError(t, err)
	assert.InDelta(t, 300.0, res.BasePrice, 1e-9)
	assert.InDelta(t, 60.0, res.OptionsCost, 1e-9) // 6 m × 10
	assert.InDelta(t, 360.0, res.TotalPrice, 1e-9)
	assert.InDelta(t, 600.0, res.MaterialLengthUsed, 1e-9)
}

func TestComputeBilledFromRequestedNotAllocatedWidth(t *testing.T) {
	// 80cm cut from a 100cm roll is billed as 80cm wide
	res, err := Compute(vinyl(), roll(100), OrderLine{Width: 80, Length: 200, Quantity: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.6, res.Area, 1e-9)
	assert.InDelta(t, 1600.0, res.TotalPrice, 1e-9)
	assert.Equal(t, 100.0, res.SelectedWidth)
	assert.GreaterOrEqual(t, res.SelectedWidth, 80.0)
}

func TestComputeNeverNegative(t *testing.T) {
	res, err := Compute(vinyl(), roll(100), OrderLine{Width: 0.1, Length: 0.1, Quantity: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.TotalPrice, 0.0)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.35, Round2(2.345000001))
	assert.Equal(t, 2.34, Round2(2.344999))
	assert.Equal(t, 0.0, Round2(0))
}
