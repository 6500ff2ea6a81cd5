// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package currency - the claim currencies
//
// only a fixed set of ISO 4217 codes is recognised; amounts are
// always expressed in the minor unit of the currency
package currency

import (
	"fmt"
	"strings"

	"github.com/mediclaim/mediclaimd/fault"
)

// Currency - currency enumeration
type Currency uint64

// possible currency values
const (
	Nothing      Currency = iota // this must be the first value
	AUD          Currency = iota
	EUR          Currency = iota
	GBP          Currency = iota
	INR          Currency = iota
	JPY          Currency = iota
	SGD          Currency = iota
	USD          Currency = iota
	maximumValue Currency = iota // this must be the last value
	First        Currency = Nothing + 1
	Last         Currency = maximumValue - 1
	Count        int      = int(Last) // count of currencies
)

// internal conversion
func toString(c Currency) ([]byte, error) {
	switch c {
	case Nothing:
		return []byte{}, nil
	case AUD:
		return []byte("AUD"), nil
	case EUR:
		return []byte("EUR"), nil
	case GBP:
		return []byte("GBP"), nil
	case INR:
		return []byte("INR"), nil
	case JPY:
		return []byte("JPY"), nil
	case SGD:
		return []byte("SGD"), nil
	case USD:
		return []byte("USD"), nil
	default:
		return []byte{}, fault.InvalidCurrency
	}
}

// convert a string to a currency
func fromString(in string) (Currency, error) {
	switch strings.ToUpper(in) {
	case "":
		return Nothing, nil
	case "AUD":
		return AUD, nil
	case "EUR":
		return EUR, nil
	case "GBP":
		return GBP, nil
	case "INR":
		return INR, nil
	case "JPY":
		return JPY, nil
	case "SGD":
		return SGD, nil
	case "USD":
		return USD, nil
	default:
		return Nothing, fault.InvalidCurrency
	}
}

// String - convert a currency to its ISO 4217 code
func (currency Currency) String() string {
	s, err := toString(currency)
	if nil != err {
		return fmt.Sprintf("*unknown-currency:%d*", uint64(currency))
	}
	return string(s)
}

// GoString - convert both enum value and code, for debugging
func (currency Currency) GoString() string {
	return fmt.Sprintf("<Currency#%d:%q>", uint64(currency), currency.String())
}

// Scan - convert a currency code string
func (currency *Currency) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= 'A' && c <= 'Z' {
			return true
		}
		if c >= 'a' && c <= 'z' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	parsed, err := fromString(string(token))
	if nil != err {
		return err
	}

	*currency = parsed
	return nil
}

// IsValid - valid currency if in range of First to Last
// Nothing is not considered as valid
func (currency Currency) IsValid() bool {
	return currency >= First && currency <= Last
}

// Uint64 - convert the currency to a number
func (currency Currency) Uint64() uint64 {
	return uint64(currency)
}

// FromUint64 - convert a number to a currency
func FromUint64(n uint64) (Currency, error) {
	if Currency(n) < maximumValue {
		return Currency(n), nil
	}
	return Nothing, fault.InvalidCurrency
}

// FromString - convert an ISO 4217 code to a currency
func FromString(code string) (Currency, error) {
	return fromString(code)
}

// MarshalText - convert a currency into JSON
func (currency Currency) MarshalText() ([]byte, error) {
	return toString(currency)
}

// UnmarshalText - convert currency code to a currency enumeration value from JSON
func (currency *Currency) UnmarshalText(s []byte) error {
	c, err := fromString(string(s))
	if nil != err {
		return err
	}
	*currency = c
	return nil
}
