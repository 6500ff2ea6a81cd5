// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - cryptographic identities of claim participants
//
// an identity is an Ed25519 public key; its text form is Base58 of
// key-variant ‖ public-key ‖ checksum so that a mistyped identity is
// detected before any verification is attempted
package identity

import (
	"bytes"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/util"
)

// enumeration of supported key algorithms
const (
	ED25519 = iota + 1
	// end of list (one greater than last item)
	algorithmLimit = iota + 1
)

// miscellaneous constants
const (
	checksumLength = 4

	// bits in key code starting from LSB
	publicKeyCode = 0x01

	algorithmShift = 4 // shift 4 bits to get algorithm
)

// Identity - the public identity of one participant
type Identity struct {
	PublicKey []byte
}

// FromBase58 - convert a Base58 encoded string to an identity
func FromBase58(identityBase58Encoded string) (*Identity, error) {
	decoded := util.FromBase58(identityBase58Encoded)
	if 0 == len(decoded) {
		return nil, fault.CannotDecodeIdentity
	}

	// parse the key variant
	keyVariant, keyVariantLength := util.FromVarint64(decoded)
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.NotIdentity
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm < 1 || keyAlgorithm >= algorithmLimit {
		return nil, fault.InvalidKeyType
	}

	keyLength := len(decoded) - keyVariantLength - checksumLength
	if keyLength <= 0 {
		return nil, fault.InvalidKeyLength
	}

	checksumStart := len(decoded) - checksumLength
	checksum := sha3.Sum256(decoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], decoded[checksumStart:]) {
		return nil, fault.ChecksumMismatch
	}

	switch keyAlgorithm {
	case ED25519:
		if keyLength != ed25519.PublicKeySize {
			return nil, fault.InvalidKeyLength
		}
		return &Identity{
			PublicKey: decoded[keyVariantLength:checksumStart],
		}, nil
	default:
		return nil, fault.InvalidKeyType
	}
}

// FromBytes - convert a binary identity (as stored in packed records)
func FromBytes(buffer []byte) (*Identity, error) {
	keyVariant, keyVariantLength := util.FromVarint64(buffer)
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.NotIdentity
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if ED25519 != keyAlgorithm {
		return nil, fault.InvalidKeyType
	}
	if len(buffer)-keyVariantLength != ed25519.PublicKeySize {
		return nil, fault.InvalidKeyLength
	}

	publicKey := make([]byte, ed25519.PublicKeySize)
	copy(publicKey, buffer[keyVariantLength:])
	return &Identity{PublicKey: publicKey}, nil
}

// KeyType - key algorithm
func (identity *Identity) KeyType() int {
	return ED25519
}

// CheckSignature - verify a signature over a message by this identity
func (identity *Identity) CheckSignature(message []byte, signature Signature) error {
	if len(signature) != ed25519.SignatureSize {
		return fault.InvalidSignature
	}
	if !ed25519.Verify(identity.PublicKey, message, signature) {
		return fault.InvalidSignature
	}
	return nil
}

// Bytes - the binary form: key variant followed by the public key
func (identity *Identity) Bytes() []byte {
	keyVariant := byte(ED25519<<algorithmShift | publicKeyCode)
	return append([]byte{keyVariant}, identity.PublicKey...)
}

// String - the Base58 text form with appended checksum
func (identity Identity) String() string {
	buffer := identity.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return util.ToBase58(buffer)
}

// Equal - compare two identities for the same public key
func (identity *Identity) Equal(other *Identity) bool {
	if nil == identity || nil == other {
		return identity == other
	}
	return bytes.Equal(identity.PublicKey, other.PublicKey)
}

// MarshalText - convert an identity to its Base58 JSON form
func (identity Identity) MarshalText() ([]byte, error) {
	return []byte(identity.String()), nil
}

// UnmarshalText - convert Base58 JSON form to an identity
func (identity *Identity) UnmarshalText(s []byte) error {
	id, err := FromBase58(string(s))
	if nil != err {
		return err
	}
	identity.PublicKey = id.PublicKey
	return nil
}
