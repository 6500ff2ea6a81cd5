// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/mediclaim/mediclaimd/fault"
)

// NewLinearId - allocate a fresh linear id for a newly created record
func NewLinearId() (LinearId, error) {
	var id LinearId
	_, err := rand.Read(id[:])
	if nil != err {
		return id, err
	}
	return id, nil
}

// LinearIdFromBytes - convert and validate a binary byte slice
func LinearIdFromBytes(id *LinearId, buffer []byte) error {
	if LinearIdLength != len(buffer) {
		return fault.InvalidLinearId
	}
	copy(id[:], buffer)
	return nil
}

// LinearIdFromString - convert a hex string to a linear id
func LinearIdFromString(s string) (LinearId, error) {
	var id LinearId
	if hex.EncodedLen(LinearIdLength) != len(s) {
		return id, fault.InvalidLinearId
	}
	_, err := hex.Decode(id[:], []byte(s))
	if nil != err {
		return id, fault.InvalidLinearId
	}
	return id, nil
}

// IsZero - an unallocated linear id
func (id LinearId) IsZero() bool {
	return id == LinearId{}
}

// String - convert a linear id to hex for use by the fmt package (for %s)
func (id LinearId) String() string {
	return hex.EncodeToString(id[:])
}

// GoString - convert a linear id to hex for use by the fmt package (for %#v)
func (id LinearId) GoString() string {
	return "<linear:" + hex.EncodeToString(id[:]) + ">"
}

// Scan - convert a hex representation to a linear id for use by the format package scan routines
func (id *LinearId) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	parsed, err := LinearIdFromString(string(token))
	if nil != err {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText - convert a linear id to hex text
func (id LinearId) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(id))
	buffer := make([]byte, size)
	hex.Encode(buffer, id[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a linear id
func (id *LinearId) UnmarshalText(s []byte) error {
	if LinearIdLength != hex.DecodedLen(len(s)) {
		return fault.InvalidLinearId
	}
	_, err := hex.Decode(id[:], s)
	return err
}
