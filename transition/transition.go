// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transition - proposed atomic operations over claim records
//
// a transition consumes zero or more prior record versions, produces
// one or more new versions and carries the signatures that authorize
// it; the Verify function is pure and deterministic so that every
// participant reaches the same verdict on the same transition
package transition

import (
	"fmt"

	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/util"
)

// Action - type code for transition actions
type Action uint64

// enumerate the possible actions
// this is encoded a Varint64 at start of the packed transition
const (
	// null marks beginning of list - not used as an action
	NullAction = Action(iota)

	// valid actions
	PreAuthorizationCreate  = Action(iota) // issue a new pre-authorization
	PreAuthorizationApprove = Action(iota) // CREATED → APPROVED by the policy issuer
	PaymentReceiptCreate    = Action(iota) // settle against a pre-authorization

	// this item must be last
	invalidAction = Action(iota)
)

// ConsumedVersion - one prior record version claimed by a transition
//
// the version id must be the digest of the packed record so that the
// consumed content cannot be silently substituted
type ConsumedVersion struct {
	VersionId digest.Digest `json:"versionId"`
	Record    record.Record `json:"record"`
}

// Countersignature - one authorization over the signing payload
type Countersignature struct {
	Signer    *identity.Identity `json:"signer"`    // base58
	Signature identity.Signature `json:"signature"` // hex
}

// Transition - a proposed atomic operation
type Transition struct {
	Action     Action             `json:"action"`
	Consumed   []ConsumedVersion  `json:"consumed"`
	Produced   []record.Record    `json:"produced"`
	References []record.Record    `json:"references"` // consulted, never consumed
	Signatures []Countersignature `json:"signatures"`
}

// String - convert an action to text
func (action Action) String() string {
	switch action {
	case PreAuthorizationCreate:
		return "pre-authorization-create"
	case PreAuthorizationApprove:
		return "pre-authorization-approve"
	case PaymentReceiptCreate:
		return "payment-receipt-create"
	default:
		return fmt.Sprintf("*unknown-action:%d*", uint64(action))
	}
}

// IsValid - action within the defined range
func (action Action) IsValid() bool {
	return action > NullAction && action < invalidAction
}

// MarshalText - convert an action into JSON
func (action Action) MarshalText() ([]byte, error) {
	if !action.IsValid() {
		return nil, fault.InvalidAction
	}
	return []byte(action.String()), nil
}

// UnmarshalText - convert action name from JSON
func (action *Action) UnmarshalText(s []byte) error {
	switch string(s) {
	case "pre-authorization-create":
		*action = PreAuthorizationCreate
	case "pre-authorization-approve":
		*action = PreAuthorizationApprove
	case "payment-receipt-create":
		*action = PaymentReceiptCreate
	default:
		return fault.InvalidAction
	}
	return nil
}

// SigningPayload - the canonical bytes every signer signs
//
// action ‖ consumed version ids ‖ packed produced records ‖ packed
// reference records, each list preceded by its count; signatures are
// excluded so that co-signing is order independent
func (tx *Transition) SigningPayload() ([]byte, error) {
	message := util.ToVarint64(uint64(tx.Action))

	message = append(message, util.ToVarint64(uint64(len(tx.Consumed)))...)
	for _, consumed := range tx.Consumed {
		message = append(message, consumed.VersionId[:]...)
	}

	message = append(message, util.ToVarint64(uint64(len(tx.Produced)))...)
	for _, produced := range tx.Produced {
		packed, err := produced.Pack()
		if nil != err {
			return nil, err
		}
		message = append(message, util.ToVarint64(uint64(len(packed)))...)
		message = append(message, packed...)
	}

	message = append(message, util.ToVarint64(uint64(len(tx.References)))...)
	for _, reference := range tx.References {
		packed, err := reference.Pack()
		if nil != err {
			return nil, err
		}
		message = append(message, util.ToVarint64(uint64(len(packed)))...)
		message = append(message, packed...)
	}

	return message, nil
}

// Id - the transition identifier: digest of the signing payload
func (tx *Transition) Id() (digest.Digest, error) {
	payload, err := tx.SigningPayload()
	if nil != err {
		return digest.Digest{}, err
	}
	return digest.NewDigest(payload), nil
}

// Sign - append a countersignature over the signing payload
func (tx *Transition) Sign(signer *identity.Identity, private *identity.PrivateKey) error {
	payload, err := tx.SigningPayload()
	if nil != err {
		return err
	}
	tx.Signatures = append(tx.Signatures, Countersignature{
		Signer:    signer,
		Signature: private.Sign(payload),
	})
	return nil
}
