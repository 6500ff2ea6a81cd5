// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package currency_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mediclaim/mediclaimd/currency"
)

// convert valid currency codes both ways
func TestValidCodes(t *testing.T) {

	tests := []struct {
		code     string
		currency currency.Currency
	}{
		{"USD", currency.USD},
		{"usd", currency.USD},
		{"EUR", currency.EUR},
		{"GBP", currency.GBP},
		{"INR", currency.INR},
		{"JPY", currency.JPY},
		{"SGD", currency.SGD},
		{"AUD", currency.AUD},
	}

	for i, item := range tests {
		c, err := currency.FromString(item.code)
		if nil != err {
			t.Fatalf("%d: from string error: %s", i, err)
		}
		if c != item.currency {
			t.Errorf("%d: %q → %#v  expected: %#v", i, item.code, c, item.currency)
		}
		if !c.IsValid() {
			t.Errorf("%d: %#v not valid", i, c)
		}
	}
}

// unknown codes must be rejected
func TestInvalidCodes(t *testing.T) {
	for i, code := range []string{"XYZ", "BTC", "dollars", "US"} {
		_, err := currency.FromString(code)
		if nil == err {
			t.Errorf("%d: unexpected success for code: %q", i, code)
		}
	}

	if currency.Nothing.IsValid() {
		t.Error("Nothing must not be a valid currency")
	}
}

// JSON round trip
func TestJsonRoundTrip(t *testing.T) {
	b, err := json.Marshal(currency.USD)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	if `"USD"` != string(b) {
		t.Errorf("marshal: %s  expected: %q", b, "USD")
	}

	var c currency.Currency
	err = json.Unmarshal(b, &c)
	if nil != err {
		t.Fatalf("unmarshal error: %s", err)
	}
	if currency.USD != c {
		t.Errorf("unmarshal: %#v  expected: %#v", c, currency.USD)
	}
}

// Scan support for the fmt package
func TestScan(t *testing.T) {
	var c currency.Currency
	n, err := fmt.Sscan("SGD", &c)
	if nil != err {
		t.Fatalf("scan error: %s", err)
	}
	if 1 != n || currency.SGD != c {
		t.Errorf("scan: %#v  expected: %#v", c, currency.SGD)
	}
}
