// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package record - the versioned shared claim records
//
// two record kinds exist: the pre-authorization of a claim and the
// payment receipt settling it; every mutation produces a new immutable
// version carrying the same linear id, identified by the SHA3-256
// digest of its packed form
package record

import (
	"encoding/hex"

	"github.com/mediclaim/mediclaimd/currency"
	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/util"
)

// TagType - type code for records
type TagType uint64

// enumerate the possible record types
// this is encoded a Varint64 at start of "Packed"
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	// valid record types
	PreAuthorizationTag = TagType(iota) // claim pre-approval request
	PaymentReceiptTag   = TagType(iota) // claim settlement

	// this item must be last
	InvalidTag = TagType(iota)
)

// Packed - packed records are just a byte slice
type Packed []byte

// byte sizes for various fields
const (
	maxMembershipNumberLength = 64
	maxDiagnosisLength        = 2048
)

// Record - generic record interface
type Record interface {
	Tag() TagType
	GetLinearId() LinearId
	Participants() []*identity.Identity
	RoleOwner(party PartyRole) (*identity.Identity, error)
	Pack() (Packed, error)
}

// PreAuthorization - the claim pre-approval request
//
// the participant set is policy holder, provider and policy issuer;
// all three hold their own copy of every version
type PreAuthorization struct {
	PolicyHolder         *identity.Identity     `json:"policyHolder"`         // base58
	MembershipNumber     string                 `json:"membershipNumber"`     // utf-8
	ProviderAccount      Account                `json:"providerAccount"`      // identity + role
	DiagnosisDescription string                 `json:"diagnosisDescription"` // utf-8
	Currency             currency.Currency      `json:"currency"`             // ISO 4217 code
	Amount               Amount                 `json:"amount,string"`        // minor currency units
	PolicyIssuerAccount  Account                `json:"policyIssuerAccount"`  // identity + role
	SubmittedAt          uint64                 `json:"submittedAt,string"`   // unix seconds
	Status               PreAuthorizationStatus `json:"status"`               // CREATED or APPROVED
	LinearId             LinearId               `json:"linearId"`             // hex, stable across versions
}

// PaymentReceipt - the claim settlement record
type PaymentReceipt struct {
	PayerAccount       Account              `json:"payerAccount"`       // identity + role
	PayeeAccount       Account              `json:"payeeAccount"`       // identity + role
	Currency           currency.Currency    `json:"currency"`           // ISO 4217 code
	Amount             Amount               `json:"amount,string"`      // minor currency units
	SubmittedAt        uint64               `json:"submittedAt,string"` // unix seconds
	PreAuthorizationId LinearId             `json:"preAuthorizationId"` // reference, not consumed
	Status             PaymentReceiptStatus `json:"status"`             // CREATED
	LinearId           LinearId             `json:"linearId"`           // hex, stable across versions
}

// Amount - a claim amount in minor currency units
//
// signed so that a negative wire value is representable and can be
// rejected by the verifier rather than silently wrapping
type Amount int64

// LinearIdLength - number of bytes in a linear id
const LinearIdLength = 32

// LinearId - stable key identifying a logical record across all of
// its immutable versions
type LinearId [LinearIdLength]byte

// Tag - returns the record type code of a packed record
func (record Packed) Tag() TagType {
	recordType, n := util.FromVarint64(record)
	if 0 == n {
		return NullTag
	}
	return TagType(recordType)
}

// RecordName - returns the name of a record as a string
func RecordName(record interface{}) (string, bool) {
	switch record.(type) {
	case *PreAuthorization, PreAuthorization:
		return "PreAuthorization", true

	case *PaymentReceipt, PaymentReceipt:
		return "PaymentReceipt", true

	default:
		return "*unknown*", false
	}
}

// MakeVersionId - compute the version id of a packed record
func (record Packed) MakeVersionId() digest.Digest {
	return digest.NewDigest(record)
}

// MarshalText - convert a packed record to its hex JSON form
func (record Packed) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(record))
	b := make([]byte, size)
	hex.Encode(b, record)
	return b, nil
}

// UnmarshalText - convert hex JSON form to a packed record
func (record *Packed) UnmarshalText(s []byte) error {
	size := hex.DecodedLen(len(s))
	*record = make([]byte, size)
	_, err := hex.Decode(*record, s)
	return err
}

// Tag - record type of a pre-authorization
func (preAuthorization *PreAuthorization) Tag() TagType {
	return PreAuthorizationTag
}

// GetLinearId - linear id accessor for the generic interface
func (preAuthorization *PreAuthorization) GetLinearId() LinearId {
	return preAuthorization.LinearId
}

// Participants - identities entitled to hold this record
func (preAuthorization *PreAuthorization) Participants() []*identity.Identity {
	return []*identity.Identity{
		preAuthorization.PolicyHolder,
		preAuthorization.ProviderAccount.Identity,
		preAuthorization.PolicyIssuerAccount.Identity,
	}
}

// CopyWithStatus - a new version identical except for status
func (preAuthorization *PreAuthorization) CopyWithStatus(status PreAuthorizationStatus) *PreAuthorization {
	copied := *preAuthorization
	copied.Status = status
	return &copied
}

// Tag - record type of a payment receipt
func (receipt *PaymentReceipt) Tag() TagType {
	return PaymentReceiptTag
}

// GetLinearId - linear id accessor for the generic interface
func (receipt *PaymentReceipt) GetLinearId() LinearId {
	return receipt.LinearId
}

// Participants - identities entitled to hold this record
func (receipt *PaymentReceipt) Participants() []*identity.Identity {
	return []*identity.Identity{
		receipt.PayerAccount.Identity,
		receipt.PayeeAccount.Identity,
	}
}
