package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// amountPattern accepts an optional sign, digits, and an optional fractional
// part. Scale validation against the currency's registered decimals happens
// in the ledger; binding only rejects strings that can never be amounts.
func amountPattern(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	seenDot := false
	intDigits, fracDigits := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			if seenDot {
				fracDigits++
			} else {
				intDigits++
			}
		case s[i] == '.' && !seenDot:
			seenDot = true
		default:
			return false
		}
	}
	if intDigits == 0 {
		return false
	}
	if seenDot && fracDigits == 0 {
		return false
	}
	return true
}

// RegisterValidators installs custom binding rules on gin's validator engine.
// Call once at startup before routes are registered.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("amount", amountPattern)
}
