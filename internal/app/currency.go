/**
 * @description
 * This file implements the currency configuration collaborator: the fixed set
 * of currencies accounts may be denominated in, plus their display rules used
 * to render balances. Balances are stored in minor units (cents, sen); the
 * registry converts them to a symbol-prefixed decimal string.
 *
 * @dependencies
 * - github.com/shopspring/decimal: Exact decimal conversion from minor units.
 */

package app

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes one supported currency and its display rules.
type Currency struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Exponent int32  `json:"exponent"` // Minor-unit digits (2 for USD, 0 for IDR/JPY)
}

// defaultCurrencies is the built-in configuration set. Deployment can narrow
// it via SUPPORTED_CURRENCIES but cannot introduce unknown codes.
var defaultCurrencies = []Currency{
	{Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp", Exponent: 0},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Exponent: 2},
	{Code: "EUR", Name: "Euro", Symbol: "€", Exponent: 2},
	{Code: "GBP", Name: "Pound Sterling", Symbol: "£", Exponent: 2},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Exponent: 0},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$", Exponent: 2},
	{Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM", Exponent: 2},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$", Exponent: 2},
}

// CurrencyRegistry exposes the configured currency set and formatting rules.
type CurrencyRegistry struct {
	byCode map[string]Currency
	order  []string
}

// NewCurrencyRegistry builds a registry limited to the enabled codes. An
// empty slice enables every built-in currency; unknown codes are ignored.
func NewCurrencyRegistry(enabled []string) *CurrencyRegistry {
	allowed := make(map[string]bool, len(enabled))
	for _, code := range enabled {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			allowed[code] = true
		}
	}

	registry := &CurrencyRegistry{byCode: make(map[string]Currency)}
	for _, currency := range defaultCurrencies {
		if len(allowed) > 0 && !allowed[currency.Code] {
			continue
		}
		registry.byCode[currency.Code] = currency
		registry.order = append(registry.order, currency.Code)
	}
	return registry
}

// Supports reports whether the code belongs to the configured set.
func (r *CurrencyRegistry) Supports(code string) bool {
	_, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Get returns the currency for a code.
func (r *CurrencyRegistry) Get(code string) (Currency, bool) {
	currency, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return currency, ok
}

// List returns the configured currencies in their declaration order.
func (r *CurrencyRegistry) List() []Currency {
	currencies := make([]Currency, 0, len(r.order))
	for _, code := range r.order {
		currencies = append(currencies, r.byCode[code])
	}
	return currencies
}

// FormatBalance renders a minor-unit balance using the currency's display
// rules, e.g. 150050 USD -> "$1500.50", -7500 IDR -> "-Rp7500". Unknown codes
// fall back to the bare decimal string. Pure function, no side effects.
func (r *CurrencyRegistry) FormatBalance(balance int64, code string) string {
	currency, ok := r.Get(code)
	if !ok {
		return decimal.NewFromInt(balance).String()
	}

	value := decimal.New(balance, -currency.Exponent)
	if value.IsNegative() {
		return "-" + currency.Symbol + value.Abs().StringFixed(currency.Exponent)
	}
	return currency.Symbol + value.StringFixed(currency.Exponent)
}
