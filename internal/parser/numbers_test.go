package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_IndonesianGrouping(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"1.234.567,89", "1234567.89"},
		{"1.000.000", "1000000"},
		{"500", "500"},
		{"0,50", "0.5"},
		{"517.605,00", "517605"},
		{"4.313.371,00", "4313371"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, diag := Normalize(tt.raw)
			require.Nil(t, diag)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", got, tt.expected)
		})
	}
}

func TestNormalize_ReversedLocale(t *testing.T) {
	// A dot after the last comma marks the English style.
	got, diag := Normalize("1,234,567.89")
	require.Nil(t, diag)
	assert.True(t, got.Equal(decimal.RequireFromString("1234567.89")))
}

func TestNormalize_CurrencyPrefix(t *testing.T) {
	for _, raw := range []string{"Rp 1.110.000", "Rp. 1.110.000", "rp1.110.000", "IDR 1.110.000"} {
		got, diag := Normalize(raw)
		require.Nil(t, diag, "raw %q", raw)
		assert.True(t, got.Equal(decimal.NewFromInt(1110000)), "raw %q got %s", raw, got)
	}
}

func TestNormalize_OCRDigitRepairs(t *testing.T) {
	tests := []struct {
		raw      string
		expected int64
	}{
		{"1.23O.500", 1230500},
		{"l.000.000", 1000000},
		{"5O0.000", 500000},
		{"1|0.000", 110000},
	}
	for _, tt := range tests {
		got, diag := Normalize(tt.raw)
		require.Nil(t, diag, "raw %q", tt.raw)
		assert.True(t, got.Equal(decimal.NewFromInt(tt.expected)), "raw %q got %s", tt.raw, got)
	}
}

func TestNormalize_TrailingPunctuationTrimmed(t *testing.T) {
	// OCR glues list/sentence punctuation onto amounts; a trailing separator
	// is never part of the number and must not read as a second decimal marker.
	tests := []struct {
		raw      string
		expected string
	}{
		{"1.000,00,", "1000"},
		{"2.000.000,00.", "2000000"},
		{"330.000,", "330000"},
		{"1.234.567,89,,", "1234567.89"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, diag := Normalize(tt.raw)
			require.Nil(t, diag)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", got, tt.expected)
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	got, diag := Normalize("  ")
	assert.True(t, got.IsZero())
	require.NotNil(t, diag)
	assert.Equal(t, DiagAbsent, diag.Kind)
}

func TestNormalize_Malformed(t *testing.T) {
	for _, raw := range []string{"abc", "12a34", "1,2,3"} {
		got, diag := Normalize(raw)
		assert.True(t, got.IsZero(), "raw %q", raw)
		require.NotNil(t, diag, "raw %q", raw)
		assert.Equal(t, DiagMalformed, diag.Kind, "raw %q", raw)
	}
}

func TestNormalize_Negative(t *testing.T) {
	got, diag := Normalize("-5.000")
	assert.True(t, got.IsZero())
	require.NotNil(t, diag)
	assert.Equal(t, DiagNegative, diag.Kind)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"1234567.89", "1.234.567,89"},
		{"1000000", "1.000.000,00"},
		{"500", "500,00"},
		{"0", "0,00"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.value)
		assert.Equal(t, tt.expected, FormatAmount(d))
	}
}

func TestNormalize_FormatRoundTrip(t *testing.T) {
	for _, v := range []string{"1234567.89", "110000", "1110000", "0.5", "999999999999.99"} {
		d := decimal.RequireFromString(v)
		back, diag := Normalize(FormatAmount(d))
		require.Nil(t, diag, "value %s", v)
		assert.True(t, back.Equal(d.Round(2)), "value %s came back as %s", v, back)
	}
}
