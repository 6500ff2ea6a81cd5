// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/util"
)

// bits in key code starting from LSB
const privateKeyCode = 0x02

// PrivateKey - the signing half of an identity
type PrivateKey struct {
	PrivateKey []byte
}

// NewKeyPair - generate a fresh identity and its private key
//
// also used to mint the single-use pseudonymous identities that
// represent an account within one transition
func NewKeyPair() (*Identity, *PrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, nil, err
	}
	id := &Identity{PublicKey: publicKey}
	priv := &PrivateKey{PrivateKey: privateKey}
	return id, priv, nil
}

// PrivateKeyFromBase58 - convert a Base58 encoded string to a private key
func PrivateKeyFromBase58(privateKeyBase58Encoded string) (*PrivateKey, error) {
	decoded := util.FromBase58(privateKeyBase58Encoded)
	if 0 == len(decoded) {
		return nil, fault.CannotDecodeIdentity
	}

	keyVariant, keyVariantLength := util.FromVarint64(decoded)
	if 0 == keyVariantLength || keyVariant&privateKeyCode != privateKeyCode {
		return nil, fault.NotPrivateKey
	}
	if ED25519 != keyVariant>>algorithmShift {
		return nil, fault.InvalidKeyType
	}

	checksumStart := len(decoded) - checksumLength
	keyLength := checksumStart - keyVariantLength
	if ed25519.PrivateKeySize != keyLength {
		return nil, fault.InvalidKeyLength
	}

	checksum := sha3.Sum256(decoded[:checksumStart])
	for i, b := range checksum[:checksumLength] {
		if b != decoded[checksumStart+i] {
			return nil, fault.ChecksumMismatch
		}
	}

	return &PrivateKey{
		PrivateKey: decoded[keyVariantLength:checksumStart],
	}, nil
}

// Identity - derive the public identity for this private key
func (private *PrivateKey) Identity() *Identity {
	key := ed25519.PrivateKey(private.PrivateKey)
	publicKey := make([]byte, ed25519.PublicKeySize)
	copy(publicKey, key.Public().(ed25519.PublicKey))
	return &Identity{PublicKey: publicKey}
}

// Sign - sign a message with this private key
func (private *PrivateKey) Sign(message []byte) Signature {
	return Signature(ed25519.Sign(private.PrivateKey, message))
}

// Bytes - the binary form: key variant followed by the private key
func (private *PrivateKey) Bytes() []byte {
	keyVariant := byte(ED25519<<algorithmShift | privateKeyCode)
	return append([]byte{keyVariant}, private.PrivateKey...)
}

// String - the Base58 text form with appended checksum
func (private PrivateKey) String() string {
	buffer := private.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return util.ToBase58(buffer)
}
