package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_NumericAndText(t *testing.T) {
	assert.True(t, ParseValue("1.2").Numeric)
	assert.True(t, ParseValue("-3").Numeric)
	assert.True(t, ParseValue("1e3").Numeric)
	assert.False(t, ParseValue("DUMBO").Numeric)
	assert.False(t, ParseValue("").Numeric)
	assert.False(t, ParseValue(" 1.2").Numeric, "padding no se normaliza")
}

func TestCompare_Numeric(t *testing.T) {
	cases := []struct {
		observed  string
		op        Operator
		threshold string
		want      bool
	}{
		{"1.3", OpGreater, "1.2", true},
		{"1.2", OpGreater, "1.2", false},
		{"1.2", OpGreaterEqual, "1.2", true},
		{"1.1", OpGreaterEqual, "1.2", false},
		{"1.1", OpLess, "1.2", true},
		{"1.2", OpLess, "1.2", false},
		{"1.2", OpLessEqual, "1.2", true},
		{"1.20", OpEqual, "1.2", true},
		{"1.21", OpNotEqual, "1.2", true},
		{"12", OpGreater, "9", true}, // numérico, no lexicográfico
	}
	for _, c := range cases {
		got, err := Compare(ParseValue(c.observed), c.op, ParseValue(c.threshold))
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s %s %s", c.observed, c.op, c.threshold)
	}
}

func TestCompare_TextEquality(t *testing.T) {
	got, err := Compare(ParseValue("DUMBO"), OpEqual, ParseValue("DUMBO"))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Compare(ParseValue("random value"), OpEqual, ParseValue("DUMBO"))
	require.NoError(t, err)
	assert.False(t, got)

	got, err = Compare(ParseValue("bar"), OpNotEqual, ParseValue("bar"))
	require.NoError(t, err)
	assert.False(t, got)

	got, err = Compare(ParseValue("hey"), OpNotEqual, ParseValue("bar"))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompare_MixedEqualityIsText(t *testing.T) {
	got, err := Compare(ParseValue("1.2"), OpEqual, ParseValue("one"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCompare_OrderingOnTextFails(t *testing.T) {
	_, err := Compare(ParseValue("abc"), OpGreater, ParseValue("1.2"))
	assert.ErrorIs(t, err, ErrNotComparable)
}

func TestParseOperator(t *testing.T) {
	for _, s := range []string{">", ">=", "<", "<=", "=", "!="} {
		op, err := ParseOperator(s)
		require.NoError(t, err)
		assert.Equal(t, Operator(s), op)
	}
	op, err := ParseOperator("==")
	require.NoError(t, err)
	assert.Equal(t, OpEqual, op)

	_, err = ParseOperator("~")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}
