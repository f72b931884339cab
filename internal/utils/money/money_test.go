package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhub/ledgerd/internal/apperrors"
	"github.com/finhub/ledgerd/internal/utils/money"
)

func TestToMinorUnits(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		decimals uint8
		expected int64
	}{
		{"integer at scale 2", "50", 2, 5000},
		{"full fraction at scale 2", "50.00", 2, 5000},
		{"partial fraction at scale 2", "50.5", 2, 5050},
		{"zero", "0", 2, 0},
		{"zero with fraction", "0.00", 2, 0},
		{"explicit plus sign", "+12.34", 2, 1234},
		{"negative", "-12.34", 2, -1234},
		{"scale zero", "1234", 0, 1234},
		{"scale four", "0.0001", 4, 1},
		{"scale eighteen", "1.000000000000000001", 18, 1000000000000000001},
		{"leading zeros", "007.10", 2, 710},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := money.ToMinorUnits(tc.value, tc.decimals)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestToMinorUnitsRejects(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		decimals uint8
	}{
		{"empty string", "", 2},
		{"bare sign", "-", 2},
		{"bare dot", ".", 2},
		{"missing integer part", ".5", 2},
		{"trailing dot", "5.", 2},
		{"double dot", "1.2.3", 2},
		{"letters", "12a.34", 2},
		{"excess fractional digits", "1.234", 2},
		{"any fraction at scale zero", "1.0", 0},
		{"scientific notation", "1e2", 2},
		{"internal space", "1 2", 2},
		{"overflow", "92233720368547758.08", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := money.ToMinorUnits(tc.value, tc.decimals)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrAmountFormat)
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	testCases := []struct {
		name     string
		value    int64
		decimals uint8
		expected string
	}{
		{"round value at scale 2", 5000, 2, "50.00"},
		{"sub unit value", 5, 2, "0.05"},
		{"zero", 0, 2, "0.00"},
		{"negative", -1234, 2, "-12.34"},
		{"scale zero", 1234, 0, "1234"},
		{"scale four", 1, 4, "0.0001"},
		{"negative sub unit", -5, 2, "-0.05"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, money.FromMinorUnits(tc.value, tc.decimals))
		})
	}
}

func TestFromMinorUnitsTrimmed(t *testing.T) {
	assert.Equal(t, "50", money.FromMinorUnitsTrimmed(5000, 2))
	assert.Equal(t, "50.5", money.FromMinorUnitsTrimmed(5050, 2))
	assert.Equal(t, "0", money.FromMinorUnitsTrimmed(0, 2))
	assert.Equal(t, "-0.05", money.FromMinorUnitsTrimmed(-5, 2))
}

// Rendering minor units and parsing the result must always return the
// original value, at every supported scale.
func TestRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 99, 100, -101, 123456789, -987654321}
	for decimals := uint8(0); decimals <= 18; decimals++ {
		for _, v := range values {
			s := money.FromMinorUnits(v, decimals)
			got, err := money.ToMinorUnits(s, decimals)
			require.NoError(t, err, "decimals=%d value=%d rendered=%q", decimals, v, s)
			assert.Equal(t, v, got, "decimals=%d rendered=%q", decimals, s)
		}
	}
}
