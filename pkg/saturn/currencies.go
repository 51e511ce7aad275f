/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"github.com/shopspring/decimal"

	"github.com/webpki/saturn-go/pkg/doc/json"
)

// Currency is an ISO 4217 currency supported by this implementation.
type Currency int

// The supported currencies.
const (
	USD Currency = iota
	EUR
	GBP
	JPY
)

type currencyInfo struct {
	code        string
	symbol      string
	symbolFirst bool
	decimals    int32
}

var currencies = map[Currency]currencyInfo{
	USD: {code: "USD", symbol: "$", symbolFirst: true, decimals: 2},
	EUR: {code: "EUR", symbol: "€", symbolFirst: false, decimals: 2},
	GBP: {code: "GBP", symbol: "£", symbolFirst: true, decimals: 2},
	JPY: {code: "JPY", symbol: "¥", symbolFirst: true, decimals: 0},
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return currencies[c].code
}

// Decimals returns the number of decimal digits amounts in this currency
// carry on the wire.
func (c Currency) Decimals() int32 {
	return currencies[c].decimals
}

func (c Currency) String() string {
	return c.Code()
}

// DisplayAmount renders an amount with the currency symbol for user
// interfaces. Wire serialization uses plain decimal strings, never this form.
func (c Currency) DisplayAmount(amount decimal.Decimal) string {
	info := currencies[c]

	text := amount.StringFixed(info.decimals)
	if info.symbolFirst {
		return info.symbol + text
	}

	return text + " " + info.symbol
}

// CurrencyFromCode maps an ISO 4217 code to a Currency.
func CurrencyFromCode(code string) (Currency, error) {
	for currency, info := range currencies {
		if info.code == code {
			return currency, nil
		}
	}

	return 0, json.NewSchemaError("unknown currency: %s", code)
}
