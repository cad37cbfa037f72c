package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pajakos/internal/faktur"
)

func TestDetectRate_CalculatedTier(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name string
		base int64
		tax  int64
		rate string
	}{
		{"eleven percent exact", 3000000, 330000, "0.11"},
		{"twelve percent noisy", 4313371, 517605, "0.12"},
		{"ten percent legacy", 2000000, 200000, "0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := DetectRate(decimal.NewFromInt(tt.base), decimal.NewFromInt(tt.tax), "", opts)
			assert.Equal(t, faktur.TierCalculated, det.Tier)
			assert.True(t, det.Rate.Equal(decimal.RequireFromString(tt.rate)),
				"got rate %s", det.Rate)
			assert.NotEmpty(t, det.Ratio)
		})
	}
}

func TestDetectRate_CodedTier(t *testing.T) {
	opts := DefaultOptions()

	// Zero-rate transaction codes.
	for _, code := range []string{"07", "08"} {
		det := DetectRate(decimal.Zero, decimal.Zero, code, opts)
		assert.Equal(t, faktur.TierCoded, det.Tier, "code %s", code)
		assert.True(t, det.Rate.IsZero(), "code %s got rate %s", code, det.Rate)
	}

	// A standard code taxes at the statutory rate.
	det := DetectRate(decimal.Zero, decimal.Zero, "01", opts)
	assert.Equal(t, faktur.TierCoded, det.Tier)
	assert.True(t, det.Rate.Equal(opts.StatutoryRate))
}

func TestDetectRate_DefaultTier(t *testing.T) {
	opts := DefaultOptions()

	det := DetectRate(decimal.Zero, decimal.Zero, "", opts)
	assert.Equal(t, faktur.TierDefault, det.Tier)
	assert.True(t, det.Rate.Equal(opts.StatutoryRate))

	// An unknown code also falls through to the default.
	det = DetectRate(decimal.Zero, decimal.Zero, "99", opts)
	assert.Equal(t, faktur.TierDefault, det.Tier)
}

func TestDetectRate_RatioOutsideTolerance(t *testing.T) {
	opts := DefaultOptions()

	// A 50% ratio is a data error, not a new rate; tier 1 must refuse it and
	// the code tier decides instead.
	det := DetectRate(decimal.NewFromInt(1000000), decimal.NewFromInt(500000), "01", opts)
	assert.Equal(t, faktur.TierCoded, det.Tier)
	assert.True(t, det.Rate.Equal(opts.StatutoryRate))
}

func TestDetectRate_AmountsBeatCode(t *testing.T) {
	// Observed amounts showing 12% win over a code that would say 11%.
	opts := DefaultOptions()
	det := DetectRate(decimal.NewFromInt(1000000), decimal.NewFromInt(120000), "01", opts)
	assert.Equal(t, faktur.TierCalculated, det.Tier)
	assert.True(t, det.Rate.Equal(decimal.NewFromFloat(0.12)))
}

func TestNearestRate(t *testing.T) {
	rate, diff := faktur.NearestRate(decimal.NewFromFloat(0.1199))
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.12)))
	assert.True(t, diff.LessThan(decimal.NewFromFloat(0.001)))

	rate, _ = faktur.NearestRate(decimal.NewFromFloat(0.02))
	assert.True(t, rate.IsZero())
}
