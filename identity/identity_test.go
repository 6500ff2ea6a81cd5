// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity_test

import (
	"testing"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
)

// generated key pair must round trip through Base58 and sign/verify
func TestKeyPairRoundTrip(t *testing.T) {

	id, private, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("key pair error: %s", err)
	}

	if !private.Identity().Equal(id) {
		t.Fatal("derived identity does not match generated identity")
	}

	recovered, err := identity.FromBase58(id.String())
	if nil != err {
		t.Fatalf("from base58 error: %s", err)
	}
	if !recovered.Equal(id) {
		t.Errorf("recovered: %s  expected: %s", recovered, id)
	}

	recoveredPrivate, err := identity.PrivateKeyFromBase58(private.String())
	if nil != err {
		t.Fatalf("private key from base58 error: %s", err)
	}
	if !recoveredPrivate.Identity().Equal(id) {
		t.Error("recovered private key does not derive the original identity")
	}

	message := []byte("pre-authorization payload")
	signature := private.Sign(message)
	err = id.CheckSignature(message, signature)
	if nil != err {
		t.Fatalf("check signature error: %s", err)
	}
}

// a signature by another key must be rejected
func TestWrongSigner(t *testing.T) {

	id, _, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("key pair error: %s", err)
	}
	_, otherPrivate, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("key pair error: %s", err)
	}

	message := []byte("payment receipt payload")
	signature := otherPrivate.Sign(message)
	err = id.CheckSignature(message, signature)
	if fault.InvalidSignature != err {
		t.Fatalf("check signature error: %v  expected: %v", err, fault.InvalidSignature)
	}
}

// corrupted Base58 must be rejected
func TestCorruptedBase58(t *testing.T) {

	id, _, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("key pair error: %s", err)
	}

	s := id.String()
	corrupted := "2" + s[1:]
	if corrupted == s {
		corrupted = "3" + s[1:]
	}

	_, err = identity.FromBase58(corrupted)
	if nil == err {
		t.Fatal("unexpected success decoding corrupted identity")
	}

	_, err = identity.FromBase58("not-base58-###")
	if fault.CannotDecodeIdentity != err {
		t.Fatalf("decode error: %v  expected: %v", err, fault.CannotDecodeIdentity)
	}
}

// binary form round trip as used by the record codec
func TestBytesRoundTrip(t *testing.T) {

	id, _, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("key pair error: %s", err)
	}

	recovered, err := identity.FromBytes(id.Bytes())
	if nil != err {
		t.Fatalf("from bytes error: %s", err)
	}
	if !recovered.Equal(id) {
		t.Errorf("recovered: %s  expected: %s", recovered, id)
	}
}
