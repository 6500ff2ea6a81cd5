// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"github.com/mediclaim/mediclaimd/currency"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/util"
)

// Unpack - turn a packed byte stream into a record
//
// also returns the number of bytes used so that records can be
// concatenated inside transition messages
func (record Packed) Unpack() (Record, int, error) {
	recordType, n := util.FromVarint64(record)
	if 0 == n {
		return nil, 0, fault.UnknownTag
	}

	switch TagType(recordType) {

	case PreAuthorizationTag:
		return record.unpackPreAuthorization(n)

	case PaymentReceiptTag:
		return record.unpackPaymentReceipt(n)

	default:
		return nil, 0, fault.UnknownTag
	}
}

func (record Packed) unpackPreAuthorization(n int) (Record, int, error) {

	policyHolder, n, err := readIdentity(record, n)
	if nil != err {
		return nil, 0, err
	}

	membershipNumber, n, err := readString(record, n)
	if nil != err {
		return nil, 0, err
	}

	providerRole, n, err := readRole(record, n)
	if nil != err {
		return nil, 0, err
	}
	providerIdentity, n, err := readIdentity(record, n)
	if nil != err {
		return nil, 0, err
	}

	diagnosisDescription, n, err := readString(record, n)
	if nil != err {
		return nil, 0, err
	}

	currencyValue, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}
	c, err := currency.FromUint64(currencyValue)
	if nil != err {
		return nil, 0, err
	}

	amount, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}

	issuerRole, n, err := readRole(record, n)
	if nil != err {
		return nil, 0, err
	}
	issuerIdentity, n, err := readIdentity(record, n)
	if nil != err {
		return nil, 0, err
	}

	submittedAt, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}

	status, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}
	if !PreAuthorizationStatus(status).IsValid() {
		return nil, 0, fault.InvalidStatusTransition
	}

	linearId, n, err := readLinearId(record, n)
	if nil != err {
		return nil, 0, err
	}

	preAuthorization := &PreAuthorization{
		PolicyHolder:         policyHolder,
		MembershipNumber:     membershipNumber,
		ProviderAccount:      Account{Identity: providerIdentity, Role: providerRole},
		DiagnosisDescription: diagnosisDescription,
		Currency:             c,
		Amount:               Amount(amount),
		PolicyIssuerAccount:  Account{Identity: issuerIdentity, Role: issuerRole},
		SubmittedAt:          submittedAt,
		Status:               PreAuthorizationStatus(status),
		LinearId:             linearId,
	}
	return preAuthorization, n, nil
}

func (record Packed) unpackPaymentReceipt(n int) (Record, int, error) {

	payerRole, n, err := readRole(record, n)
	if nil != err {
		return nil, 0, err
	}
	payerIdentity, n, err := readIdentity(record, n)
	if nil != err {
		return nil, 0, err
	}

	payeeRole, n, err := readRole(record, n)
	if nil != err {
		return nil, 0, err
	}
	payeeIdentity, n, err := readIdentity(record, n)
	if nil != err {
		return nil, 0, err
	}

	currencyValue, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}
	c, err := currency.FromUint64(currencyValue)
	if nil != err {
		return nil, 0, err
	}

	amount, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}

	submittedAt, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}

	preAuthorizationId, n, err := readLinearId(record, n)
	if nil != err {
		return nil, 0, err
	}

	status, n, err := readUint64(record, n)
	if nil != err {
		return nil, 0, err
	}
	if !PaymentReceiptStatus(status).IsValid() {
		return nil, 0, fault.InvalidStatusTransition
	}

	linearId, n, err := readLinearId(record, n)
	if nil != err {
		return nil, 0, err
	}

	receipt := &PaymentReceipt{
		PayerAccount:       Account{Identity: payerIdentity, Role: payerRole},
		PayeeAccount:       Account{Identity: payeeIdentity, Role: payeeRole},
		Currency:           c,
		Amount:             Amount(amount),
		SubmittedAt:        submittedAt,
		PreAuthorizationId: preAuthorizationId,
		Status:             PaymentReceiptStatus(status),
		LinearId:           linearId,
	}
	return receipt, n, nil
}

// read a Varint64 from the buffer at offset n
func readUint64(buffer Packed, n int) (uint64, int, error) {
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
func readBytes(buffer Packed, n int) ([]byte, int, error) {
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

func readString(buffer Packed, n int) (string, int, error) {
	data, n, err := readBytes(buffer, n)
	if nil != err {
		return "", 0, err
	}
	return string(data), n, nil
}

func readIdentity(buffer Packed, n int) (*identity.Identity, int, error) {
	data, n, err := readBytes(buffer, n)
	if nil != err {
		return nil, 0, err
	}
	id, err := identity.FromBytes(data)
	if nil != err {
		return nil, 0, err
	}
	return id, n, nil
}

func readRole(buffer Packed, n int) (Role, int, error) {
	value, n, err := readUint64(buffer, n)
	if nil != err {
		return NoRole, 0, err
	}
	role, err := RoleFromUint64(value)
	if nil != err {
		return NoRole, 0, err
	}
	return role, n, nil
}

func readLinearId(buffer Packed, n int) (LinearId, int, error) {
	var id LinearId
	data, n, err := readBytes(buffer, n)
	if nil != err {
		return id, 0, err
	}
	err = LinearIdFromBytes(&id, data)
	if nil != err {
		return id, 0, err
	}
	return id, n, nil
}
