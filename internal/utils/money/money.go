// Package money converts between human-readable decimal strings and
// fixed-point integer minor units. Conversions are pure text manipulation;
// amounts never pass through floating point.
package money

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finhub/ledgerd/internal/apperrors"
)

// ToMinorUnits parses a decimal string into integer minor units at the given
// scale. The accepted pattern is an optional sign, one or more digits, and an
// optional '.' followed by one to `decimals` fractional digits. Supplying more
// fractional digits than the scale allows is an error, never a rounding.
func ToMinorUnits(value string, decimals uint8) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: empty amount", apperrors.ErrAmountFormat)
	}

	s := value
	negative := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		negative = true
		s = s[1:]
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrAmountFormat, value)
	}
	if hasDot {
		if fracPart == "" || !allDigits(fracPart) {
			return 0, fmt.Errorf("%w: %q", apperrors.ErrAmountFormat, value)
		}
		if len(fracPart) > int(decimals) {
			return 0, fmt.Errorf("%w: %q has more than %d fractional digits", apperrors.ErrAmountFormat, value, decimals)
		}
	}

	// Scale up by right-padding the fraction to the currency's full width.
	digits := intPart + fracPart + strings.Repeat("0", int(decimals)-len(fracPart))
	if negative {
		digits = "-" + digits
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", apperrors.ErrAmountFormat, value)
	}
	return n, nil
}

// FromMinorUnits renders minor units as a canonical decimal string: the
// decimal point sits `decimals` digits from the right, with left zero-padding
// when the value has fewer digits than the scale.
func FromMinorUnits(value int64, decimals uint8) string {
	sign := ""
	digits := strconv.FormatInt(value, 10)
	if value < 0 {
		sign = "-"
		digits = digits[1:]
	}
	if decimals == 0 {
		return sign + digits
	}
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}
	cut := len(digits) - int(decimals)
	return sign + digits[:cut] + "." + digits[cut:]
}

// FromMinorUnitsTrimmed renders minor units with trailing zero fractional
// digits (and any trailing bare '.') removed.
func FromMinorUnitsTrimmed(value int64, decimals uint8) string {
	return decimal.New(value, -int32(decimals)).String()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
