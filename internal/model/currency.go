package model

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var currencyValidator = validator.New()

// NormalizeCurrency lowercases a currency code and reports whether it is three ASCII letters.
func NormalizeCurrency(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if err := currencyValidator.Var(code, "required,alpha,len=3"); err != nil {
		return code, false
	}
	return code, true
}
