// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/util"
)

// Packed - a packed transition message as sent between participants
type Packed []byte

// Pack - the wire form of a transition
//
// unlike the signing payload this includes the consumed record
// contents and the collected signatures, so a counter-party can
// re-verify without any other source of data
func (tx *Transition) Pack() (Packed, error) {
	message := util.ToVarint64(uint64(tx.Action))

	message = append(message, util.ToVarint64(uint64(len(tx.Consumed)))...)
	for _, consumed := range tx.Consumed {
		message = append(message, consumed.VersionId[:]...)
		packed, err := consumed.Record.Pack()
		if nil != err {
			return nil, err
		}
		message = appendBytes(message, packed)
	}

	message = append(message, util.ToVarint64(uint64(len(tx.Produced)))...)
	for _, produced := range tx.Produced {
		packed, err := produced.Pack()
		if nil != err {
			return nil, err
		}
		message = appendBytes(message, packed)
	}

	message = append(message, util.ToVarint64(uint64(len(tx.References)))...)
	for _, reference := range tx.References {
		packed, err := reference.Pack()
		if nil != err {
			return nil, err
		}
		message = appendBytes(message, packed)
	}

	message = append(message, util.ToVarint64(uint64(len(tx.Signatures)))...)
	for _, countersignature := range tx.Signatures {
		if nil == countersignature.Signer {
			return nil, fault.InvalidIdentity
		}
		message = appendBytes(message, countersignature.Signer.Bytes())
		message = appendBytes(message, countersignature.Signature)
	}

	return Packed(message), nil
}

// Unpack - rebuild a transition from its wire form
func (packed Packed) Unpack() (*Transition, error) {
	buffer := []byte(packed)

	action, n, err := readUint64(buffer, 0)
	if nil != err {
		return nil, err
	}
	if !Action(action).IsValid() {
		return nil, fault.InvalidAction
	}

	tx := &Transition{Action: Action(action)}

	count, n, err := readUint64(buffer, n)
	if nil != err {
		return nil, err
	}
	for i := uint64(0); i < count; i += 1 {
		if n+digest.Length > len(buffer) {
			return nil, fault.DataLengthMismatch
		}
		var versionId digest.Digest
		copy(versionId[:], buffer[n:n+digest.Length])
		n += digest.Length

		data, next, err := readBytes(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		r, _, err := record.Packed(data).Unpack()
		if nil != err {
			return nil, err
		}
		tx.Consumed = append(tx.Consumed, ConsumedVersion{
			VersionId: versionId,
			Record:    r,
		})
	}

	count, n, err = readUint64(buffer, n)
	if nil != err {
		return nil, err
	}
	for i := uint64(0); i < count; i += 1 {
		data, next, err := readBytes(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		r, _, err := record.Packed(data).Unpack()
		if nil != err {
			return nil, err
		}
		tx.Produced = append(tx.Produced, r)
	}

	count, n, err = readUint64(buffer, n)
	if nil != err {
		return nil, err
	}
	for i := uint64(0); i < count; i += 1 {
		data, next, err := readBytes(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		r, _, err := record.Packed(data).Unpack()
		if nil != err {
			return nil, err
		}
		tx.References = append(tx.References, r)
	}

	count, n, err = readUint64(buffer, n)
	if nil != err {
		return nil, err
	}
	for i := uint64(0); i < count; i += 1 {
		idData, next, err := readBytes(buffer, n)
		if nil != err {
			return nil, err
		}
		signer, err := identity.FromBytes(idData)
		if nil != err {
			return nil, err
		}
		sigData, next, err := readBytes(buffer, next)
		if nil != err {
			return nil, err
		}
		n = next
		signature := make(identity.Signature, len(sigData))
		copy(signature, sigData)
		tx.Signatures = append(tx.Signatures, Countersignature{
			Signer:    signer,
			Signature: signature,
		})
	}

	if n != len(buffer) {
		return nil, fault.DataLengthMismatch
	}
	return tx, nil
}

// append a length-prefixed byte field
func appendBytes(buffer []byte, data []byte) []byte {
	l := util.ToVarint64(uint64(len(data)))
	buffer = append(buffer, l...)
	return append(buffer, data...)
}

// read a Varint64 from the buffer at offset n
func readUint64(buffer []byte, n int) (uint64, int, error) {
	if n >= len(buffer) {
		return 0, 0, fault.DataLengthMismatch
	}
	value, used := util.FromVarint64(buffer[n:])
	if 0 == used {
		return 0, 0, fault.DataLengthMismatch
	}
	return value, n + used, nil
}

// read a length-prefixed byte field from the buffer at offset n
func readBytes(buffer []byte, n int) ([]byte, int, error) {
	length, n, err := readUint64(buffer, n)
	if nil != err {
		return nil, 0, err
	}
	if uint64(len(buffer)-n) < length {
		return nil, 0, fault.DataLengthMismatch
	}
	last := n + int(length)
	return buffer[n:last], last, nil
}
