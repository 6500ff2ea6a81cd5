// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"github.com/mediclaim/mediclaimd/directory"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/transition"
	"github.com/mediclaim/mediclaimd/util"
)

// message kinds exchanged inside a session
type messageKind uint64

const (
	nullMessage      messageKind = iota
	proposalRequest              // packed transition + key map, asks for countersignatures
	proposalSigned               // the countersignatures
	finalityRequest              // fully signed packed transition, record it
	finalityRecorded             // recorded
	keyRequest                   // mint an ephemeral key for a role
	keyReply                     // the minted identity
	shareRequest                 // push a directory entry
	shareAccepted                // entry registered
	rejection                    // refusal with reason text
	invalidMessage               // this item must be last
)

// keyMapEntry - one pseudonym attribution shared with a counter-party
type keyMapEntry struct {
	Identity *identity.Identity
	Role     record.Role
}

// message - the session envelope
//
// only the fields relevant to the kind are packed
type message struct {
	kind       messageKind
	packed     transition.Packed
	keyMap     []keyMapEntry
	signatures []transition.Countersignature
	role       record.Role
	entry      directory.Entry
	reason     string
}

// pack - encode the envelope in the record codec's varint style
func (m *message) pack() []byte {
	buffer := util.ToVarint64(uint64(m.kind))

	switch m.kind {

	case proposalRequest, finalityRequest:
		buffer = appendField(buffer, m.packed)
		buffer = append(buffer, util.ToVarint64(uint64(len(m.keyMap)))...)
		for _, entry := range m.keyMap {
			buffer = appendField(buffer, entry.Identity.Bytes())
			buffer = append(buffer, util.ToVarint64(uint64(entry.Role))...)
		}

	case proposalSigned:
		buffer = append(buffer, util.ToVarint64(uint64(len(m.signatures)))...)
		for _, countersignature := range m.signatures {
			buffer = appendField(buffer, countersignature.Signer.Bytes())
			buffer = appendField(buffer, countersignature.Signature)
		}

	case finalityRecorded, shareAccepted:
		// kind only

	case keyRequest:
		buffer = append(buffer, util.ToVarint64(uint64(m.role))...)

	case keyReply:
		buffer = appendField(buffer, m.entry.Identity.Bytes())

	case shareRequest:
		buffer = append(buffer, util.ToVarint64(uint64(m.role))...)
		buffer = appendField(buffer, m.entry.Identity.Bytes())
		buffer = appendField(buffer, []byte(m.entry.Host))

	case rejection:
		buffer = appendField(buffer, []byte(m.reason))
	}

	return buffer
}

// unpackMessage - decode a session envelope
func unpackMessage(buffer []byte) (*message, error) {
	kind, n, err := readNumber(buffer, 0)
	if nil != err {
		return nil, err
	}
	if messageKind(kind) <= nullMessage || messageKind(kind) >= invalidMessage {
		return nil, fault.UnexpectedPayload
	}

	m := &message{kind: messageKind(kind)}

	switch m.kind {

	case proposalRequest, finalityRequest:
		data, next, err := readField(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		m.packed = transition.Packed(data)

		count, next, err := readNumber(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		for i := uint64(0); i < count; i += 1 {
			idData, next, err := readField(buffer, n)
			if nil != err {
				return nil, err
			}
			signer, err := identity.FromBytes(idData)
			if nil != err {
				return nil, err
			}
			roleValue, next, err := readNumber(buffer, next)
			if nil != err {
				return nil, err
			}
			n = next
			role, err := record.RoleFromUint64(roleValue)
			if nil != err {
				return nil, err
			}
			m.keyMap = append(m.keyMap, keyMapEntry{Identity: signer, Role: role})
		}

	case proposalSigned:
		count, next, err := readNumber(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		for i := uint64(0); i < count; i += 1 {
			idData, next, err := readField(buffer, n)
			if nil != err {
				return nil, err
			}
			signer, err := identity.FromBytes(idData)
			if nil != err {
				return nil, err
			}
			sigData, next, err := readField(buffer, next)
			if nil != err {
				return nil, err
			}
			n = next
			signature := make(identity.Signature, len(sigData))
			copy(signature, sigData)
			m.signatures = append(m.signatures, transition.Countersignature{
				Signer:    signer,
				Signature: signature,
			})
		}

	case finalityRecorded, shareAccepted:
		// kind only

	case keyRequest:
		roleValue, next, err := readNumber(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		m.role, err = record.RoleFromUint64(roleValue)
		if nil != err {
			return nil, err
		}

	case keyReply:
		idData, next, err := readField(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		m.entry.Identity, err = identity.FromBytes(idData)
		if nil != err {
			return nil, err
		}

	case shareRequest:
		roleValue, next, err := readNumber(buffer, n)
		if nil != err {
			return nil, err
		}
		m.role, err = record.RoleFromUint64(roleValue)
		if nil != err {
			return nil, err
		}
		idData, next, err := readField(buffer, next)
		if nil != err {
			return nil, err
		}
		m.entry.Identity, err = identity.FromBytes(idData)
		if nil != err {
			return nil, err
		}
		hostData, next, err := readField(buffer, next)
		if nil != err {
			return nil, err
		}
		n = next
		m.entry.Host = string(hostData)

	case rejection:
		reasonData, next, err := readField(buffer, n)
		if nil != err {
			return nil, err
		}
		n = next
		m.reason = string(reasonData)
	}

	if n != len(buffer) {
		return nil, fault.DataLengthMismatch
	}
	return m, nil
}

// rejectionMessage - a packed refusal
func rejectionMessage(reason error) []byte {
	m := message{kind: rejection, reason: reason.Error()}
	return m.pack()
}

// append a length-prefixed field
func appendField(buffer []byte, data []byte) []byte {
	buffer = append(buffer, util.ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

// read a Varint64 at offset n
func readNumber(buffer []byte, n int) (uint64, int, error) {
	if n >= len(buffer) {
		return 0, 0, fault.DataLengthMismatch
	}
	value, used := util.FromVarint64(buffer[n:])
	if 0 == used {
		return 0, 0, fault.DataLengthMismatch
	}
	return value, n + used, nil
}

// read a length-prefixed field at offset n
func readField(buffer []byte, n int) ([]byte, int, error) {
	length, n, err := readNumber(buffer, n)
	if nil != err {
		return nil, 0, err
	}
	if uint64(len(buffer)-n) < length {
		return nil, 0, fault.DataLengthMismatch
	}
	last := n + int(length)
	return buffer[n:last], last, nil
}
