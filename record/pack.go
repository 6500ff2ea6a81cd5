// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"unicode/utf8"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/util"
)

// Pack - pack a pre-authorization
//
// Pack Varint64(tag) followed by fields in order as struct above
//
// the packed form carries no signatures; signatures belong to the
// transition that produced the version
func (preAuthorization *PreAuthorization) Pack() (Packed, error) {
	if nil == preAuthorization.PolicyHolder ||
		nil == preAuthorization.ProviderAccount.Identity ||
		nil == preAuthorization.PolicyIssuerAccount.Identity {
		return nil, fault.InvalidIdentity
	}

	if 0 == len(preAuthorization.MembershipNumber) {
		return nil, fault.MembershipNumberIsRequired
	}
	if utf8.RuneCountInString(preAuthorization.MembershipNumber) > maxMembershipNumberLength {
		return nil, fault.MembershipNumberTooLong
	}
	if utf8.RuneCountInString(preAuthorization.DiagnosisDescription) > maxDiagnosisLength {
		return nil, fault.DiagnosisTooLong
	}
	if !preAuthorization.ProviderAccount.Role.IsValid() ||
		!preAuthorization.PolicyIssuerAccount.Role.IsValid() {
		return nil, fault.UnknownRole
	}
	if !preAuthorization.Currency.IsValid() {
		return nil, fault.InvalidCurrency
	}
	if preAuthorization.Amount < 0 {
		return nil, fault.InvalidAmount
	}
	if !preAuthorization.Status.IsValid() {
		return nil, fault.InvalidStatusTransition
	}
	if preAuthorization.LinearId.IsZero() {
		return nil, fault.InvalidLinearId
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(PreAuthorizationTag))
	message = appendIdentity(message, preAuthorization.PolicyHolder)
	message = appendString(message, preAuthorization.MembershipNumber)
	message = appendUint64(message, uint64(preAuthorization.ProviderAccount.Role))
	message = appendIdentity(message, preAuthorization.ProviderAccount.Identity)
	message = appendString(message, preAuthorization.DiagnosisDescription)
	message = appendUint64(message, preAuthorization.Currency.Uint64())
	message = appendUint64(message, uint64(preAuthorization.Amount))
	message = appendUint64(message, uint64(preAuthorization.PolicyIssuerAccount.Role))
	message = appendIdentity(message, preAuthorization.PolicyIssuerAccount.Identity)
	message = appendUint64(message, preAuthorization.SubmittedAt)
	message = appendUint64(message, uint64(preAuthorization.Status))
	message = appendBytes(message, preAuthorization.LinearId[:])

	return message, nil
}

// Pack - pack a payment receipt
//
// Pack Varint64(tag) followed by fields in order as struct above
func (receipt *PaymentReceipt) Pack() (Packed, error) {
	if nil == receipt.PayerAccount.Identity || nil == receipt.PayeeAccount.Identity {
		return nil, fault.InvalidIdentity
	}
	if !receipt.PayerAccount.Role.IsValid() || !receipt.PayeeAccount.Role.IsValid() {
		return nil, fault.UnknownRole
	}
	if !receipt.Currency.IsValid() {
		return nil, fault.InvalidCurrency
	}
	if receipt.Amount < 0 {
		return nil, fault.InvalidAmount
	}
	if receipt.PreAuthorizationId.IsZero() {
		return nil, fault.InvalidLinearId
	}
	if !receipt.Status.IsValid() {
		return nil, fault.InvalidStatusTransition
	}
	if receipt.LinearId.IsZero() {
		return nil, fault.InvalidLinearId
	}

	// concatenate bytes
	message := util.ToVarint64(uint64(PaymentReceiptTag))
	message = appendUint64(message, uint64(receipt.PayerAccount.Role))
	message = appendIdentity(message, receipt.PayerAccount.Identity)
	message = appendUint64(message, uint64(receipt.PayeeAccount.Role))
	message = appendIdentity(message, receipt.PayeeAccount.Identity)
	message = appendUint64(message, receipt.Currency.Uint64())
	message = appendUint64(message, uint64(receipt.Amount))
	message = appendUint64(message, receipt.SubmittedAt)
	message = appendBytes(message, receipt.PreAuthorizationId[:])
	message = appendUint64(message, uint64(receipt.Status))
	message = appendBytes(message, receipt.LinearId[:])

	return message, nil
}

// append a single field to a buffer
//
// the field is prefixed by Varint64(length)
func appendString(buffer Packed, s string) Packed {
	l := util.ToVarint64(uint64(len(s)))
	buffer = append(buffer, l...)
	return append(buffer, s...)
}

// append an identity to a buffer
//
// the field is prefixed by Varint64(length)
func appendIdentity(buffer Packed, id *identity.Identity) Packed {
	data := id.Bytes()
	l := util.ToVarint64(uint64(len(data)))
	buffer = append(buffer, l...)
	buffer = append(buffer, data...)
	return buffer
}

// append a bytes to a buffer
//
// the field is prefixed by Varint64(length)
func appendBytes(buffer Packed, data []byte) Packed {
	l := util.ToVarint64(uint64(len(data)))
	buffer = append(buffer, l...)
	buffer = append(buffer, data...)
	return buffer
}

// append a Varint64 to buffer
func appendUint64(buffer Packed, value uint64) Packed {
	valueBytes := util.ToVarint64(value)
	buffer = append(buffer, valueBytes...)
	return buffer
}
