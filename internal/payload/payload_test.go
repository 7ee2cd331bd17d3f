package payload

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Format(t *testing.T) {
	text, err := Encode(ProductRef{SKU: "SR1001", Price: decimal.NewFromInt(2500), Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, "SR1001|2500|50", text)

	text, err = Encode(ProductRef{SKU: "KT-20", Price: decimal.RequireFromString("1234567.50"), Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, "KT-20|1234567.5|0", text, "no thousands separators, canonical decimal")
}

func TestEncode_RejectsDelimiterInSKU(t *testing.T) {
	_, err := Encode(ProductRef{SKU: "SR|1001", Price: decimal.NewFromInt(1), Quantity: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDelimiterInSKU))
}

func TestRoundTrip(t *testing.T) {
	refs := []ProductRef{
		{SKU: "SR1001", Price: decimal.NewFromInt(2500), Quantity: 50},
		{SKU: "sr-lower", Price: decimal.Zero, Quantity: 0},
		{SKU: "A", Price: decimal.RequireFromString("0.01"), Quantity: 1},
		{SKU: "TS/2024#7", Price: decimal.RequireFromString("19.99"), Quantity: 9223372036854775807},
		{SKU: "X", Price: decimal.RequireFromString("100.000"), Quantity: 3},
		{SKU: "", Price: decimal.NewFromInt(5), Quantity: 5},
	}

	for _, ref := range refs {
		text, err := Encode(ref)
		require.NoError(t, err)

		got, err := Decode(text)
		require.NoError(t, err, "decode %q", text)
		assert.True(t, ref.Equal(got), "round trip %q: want %+v got %+v", text, ref, got)
	}
}

func TestDecode_TrimsFields(t *testing.T) {
	ref, err := Decode(" SR1001 | 2500 | 50 ")
	require.NoError(t, err)
	assert.Equal(t, "SR1001", ref.SKU)
	assert.True(t, ref.Price.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, int64(50), ref.Quantity)
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		input string
		kind  error
	}{
		{"", ErrWrongFieldCount},
		{"SR1001", ErrWrongFieldCount},
		{"SR1001|2500", ErrWrongFieldCount},
		{"SR1001|2500|50|extra", ErrWrongFieldCount},
		{"||||", ErrWrongFieldCount},
		{"SR1001|abc|50", ErrInvalidPrice},
		{"SR1001||50", ErrInvalidPrice},
		{"SR1001|-1|50", ErrInvalidPrice},
		{"SR1001|2,500|50", ErrInvalidPrice},
		{"SR1001|NaN|50", ErrInvalidPrice},
		{"SR1001|1e9|1", ErrInvalidPrice},
		{"SR1001|1E2000000000|1", ErrInvalidPrice},
		{"SR1001|+5|1", ErrInvalidPrice},
		{"SR1001|.5|1", ErrInvalidPrice},
		{"SR1001|5.|1", ErrInvalidPrice},
		{"SR1001|1234567890123456|1", ErrInvalidPrice},
		{"SR1001|1.1234567|1", ErrInvalidPrice},
		{"SR1001|2500|", ErrInvalidQuantity},
		{"SR1001|2500|-3", ErrInvalidQuantity},
		{"SR1001|2500|1.5", ErrInvalidQuantity},
		{"SR1001|2500|fifty", ErrInvalidQuantity},
		{"SR1001|2500|99999999999999999999", ErrInvalidQuantity},
	}

	for _, tc := range cases {
		_, err := Decode(tc.input)
		require.Error(t, err, "input %q", tc.input)
		assert.True(t, errors.Is(err, tc.kind), "input %q: got %v", tc.input, err)

		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, tc.input, decodeErr.Input)
	}
}

func TestCheckPrice(t *testing.T) {
	ok := []decimal.Decimal{
		decimal.Zero,
		decimal.RequireFromString("999999999999999.999999"),
		decimal.RequireFromString("1.50000000"),
		decimal.New(25, 2),
	}
	for _, p := range ok {
		assert.NoError(t, CheckPrice(p), "price %s", p.Coefficient())
	}

	bad := []decimal.Decimal{
		decimal.NewFromInt(-1),
		decimal.New(1, 2000000000),
		decimal.New(0, 2000000000),
		decimal.New(1, -2000000000),
		decimal.New(1, MaxPriceIntegerDigits),
		decimal.RequireFromString("0.0000001"),
	}
	for _, p := range bad {
		assert.True(t, errors.Is(CheckPrice(p), ErrInvalidPrice), "price %s", p.Coefficient())
	}
}

func TestDecode_NeverPanics(t *testing.T) {
	inputs := []string{
		"\x00\x01\x02",
		strings.Repeat("|", 1000),
		"|||",
		"a|.|1",
		"a|1e|1",
		"a|--1|1",
		"a|1|+",
		"\xff\xfe|\xfd|\xfc",
		"SR1001|2500|50\n",
		strings.Repeat("9", 5000) + "|1|1",
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() { _, _ = Decode(input) }, "input %q", input)
	}
}
