// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package digest_test

import (
	"fmt"
	"testing"

	"github.com/mediclaim/mediclaimd/digest"
)

// the SHA3-256 of an empty input is a fixed well known value
func TestEmptyDigest(t *testing.T) {
	expected := "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"

	d := digest.NewDigest([]byte{})
	if expected != d.String() {
		t.Errorf("digest: %s  expected: %s", d, expected)
	}
}

// digest must round trip through its text form
func TestTextRoundTrip(t *testing.T) {
	d := digest.NewDigest([]byte("pre-authorization"))

	text, err := d.MarshalText()
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}

	var recovered digest.Digest
	err = recovered.UnmarshalText(text)
	if nil != err {
		t.Fatalf("unmarshal error: %s", err)
	}
	if recovered != d {
		t.Errorf("recovered: %v  expected: %v", recovered, d)
	}

	var scanned digest.Digest
	n, err := fmt.Sscan(d.String(), &scanned)
	if nil != err {
		t.Fatalf("scan error: %s", err)
	}
	if 1 != n || scanned != d {
		t.Errorf("scanned: %v  expected: %v", scanned, d)
	}
}

// invalid text must be rejected
func TestInvalidText(t *testing.T) {
	var d digest.Digest
	err := d.UnmarshalText([]byte("0123456789"))
	if nil == err {
		t.Fatal("unexpected success unmarshalling short text")
	}
}
