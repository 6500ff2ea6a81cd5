// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"bytes"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
)

// HostResolver - resolve an account role to its hosting node
//
// the receipt rules cross-check hosts between the produced receipt and
// the referenced pre-authorization; resolution itself stays outside
// the engine so Verify remains a pure function of its inputs
type HostResolver interface {
	ResolveHost(role record.Role) (string, error)
}

// Verify - decide accept or reject for a proposed transition
//
// pure and deterministic: no I/O, no clock, no state; every
// participant runs the same checks and must reach the same verdict
// returns nil on accept or the specific rejection reason
func (tx *Transition) Verify(hosts HostResolver) error {
	err := tx.verifyRules(hosts)
	if nil != err {
		return err
	}

	required, err := tx.RequiredSigners()
	if nil != err {
		return err
	}
	err = tx.checkAttachedSignatures(required)
	if nil != err {
		return err
	}
	return tx.checkCompleteness(required)
}

// VerifyPartial - the proposal-time verdict of a countersigner
//
// the same rules and signature validity checks as Verify, but the
// signer set need not be complete yet: the countersigner runs this
// before adding its own signature
func (tx *Transition) VerifyPartial(hosts HostResolver) error {
	err := tx.verifyRules(hosts)
	if nil != err {
		return err
	}

	required, err := tx.RequiredSigners()
	if nil != err {
		return err
	}
	return tx.checkAttachedSignatures(required)
}

// the per-action rule dispatch
func (tx *Transition) verifyRules(hosts HostResolver) error {
	switch tx.Action {

	case PreAuthorizationCreate:
		return tx.verifyPreAuthorizationCreate()

	case PreAuthorizationApprove:
		return tx.verifyPreAuthorizationApprove()

	case PaymentReceiptCreate:
		return tx.verifyPaymentReceiptCreate(hosts)

	default:
		return fault.InvalidAction
	}
}

// RequiredSigners - the exact signer set this transition demands
//
// derived from the role data of the records themselves, never from
// the party proposing the transition
func (tx *Transition) RequiredSigners() ([]*identity.Identity, error) {
	switch tx.Action {

	case PreAuthorizationCreate:
		if 1 != len(tx.Produced) {
			return nil, fault.InvalidProducedCount
		}
		produced, ok := tx.Produced[0].(*record.PreAuthorization)
		if !ok {
			return nil, fault.WrongRecordKind
		}
		hospital, err := produced.RoleOwner(record.PartyHospital)
		if nil != err {
			return nil, err
		}
		patient, err := produced.RoleOwner(record.PartyPatient)
		if nil != err {
			return nil, err
		}
		return []*identity.Identity{hospital, patient}, nil

	case PreAuthorizationApprove:
		if 1 != len(tx.Consumed) {
			return nil, fault.InvalidConsumedCount
		}
		consumed, ok := tx.Consumed[0].Record.(*record.PreAuthorization)
		if !ok {
			return nil, fault.WrongRecordKind
		}
		insurer, err := consumed.RoleOwner(record.PartyInsurer)
		if nil != err {
			return nil, err
		}
		return []*identity.Identity{insurer}, nil

	case PaymentReceiptCreate:
		if 1 != len(tx.Produced) {
			return nil, fault.InvalidProducedCount
		}
		produced, ok := tx.Produced[0].(*record.PaymentReceipt)
		if !ok {
			return nil, fault.WrongRecordKind
		}
		payer, err := produced.RoleOwner(record.PartyPayer)
		if nil != err {
			return nil, err
		}
		payee, err := produced.RoleOwner(record.PartyPayee)
		if nil != err {
			return nil, err
		}
		return []*identity.Identity{payer, payee}, nil

	default:
		return nil, fault.InvalidAction
	}
}

// rules for pre-authorization create
//
// exactly zero consumed and one produced record with status CREATED;
// amount non-negative, currency a recognised ISO code
func (tx *Transition) verifyPreAuthorizationCreate() error {
	if 0 != len(tx.Consumed) {
		return fault.InvalidConsumedCount
	}
	if 1 != len(tx.Produced) {
		return fault.InvalidProducedCount
	}
	if 0 != len(tx.References) {
		return fault.InvalidReferenceCount
	}

	produced, ok := tx.Produced[0].(*record.PreAuthorization)
	if !ok {
		return fault.WrongRecordKind
	}
	if record.PreAuthorizationCreated != produced.Status {
		return fault.InvalidProducedStatus
	}
	if produced.Amount < 0 {
		return fault.InvalidAmount
	}
	if !produced.Currency.IsValid() {
		return fault.InvalidCurrency
	}
	if produced.LinearId.IsZero() {
		return fault.InvalidLinearId
	}
	return nil
}

// rules for pre-authorization approve
//
// one consumed CREATED version, one produced version identical except
// status which must be APPROVED
func (tx *Transition) verifyPreAuthorizationApprove() error {
	if 1 != len(tx.Consumed) {
		return fault.InvalidConsumedCount
	}
	if 1 != len(tx.Produced) {
		return fault.InvalidProducedCount
	}
	if 0 != len(tx.References) {
		return fault.InvalidReferenceCount
	}

	consumed, ok := tx.Consumed[0].Record.(*record.PreAuthorization)
	if !ok {
		return fault.WrongRecordKind
	}
	produced, ok := tx.Produced[0].(*record.PreAuthorization)
	if !ok {
		return fault.WrongRecordKind
	}

	if record.PreAuthorizationCreated != consumed.Status {
		return fault.InvalidStatusTransition
	}
	if record.PreAuthorizationApproved != produced.Status {
		return fault.InvalidProducedStatus
	}

	// the consumed version id must match the consumed content
	consumedPacked, err := consumed.Pack()
	if nil != err {
		return err
	}
	if tx.Consumed[0].VersionId != consumedPacked.MakeVersionId() {
		return fault.VersionMismatch
	}

	// only the status may change: rewind it and compare packed forms
	reverted := produced.CopyWithStatus(consumed.Status)
	revertedPacked, err := reverted.Pack()
	if nil != err {
		return err
	}
	if !bytes.Equal(consumedPacked, revertedPacked) {
		return fault.IllegalFieldMutation
	}
	return nil
}

// rules for payment receipt create
//
// zero consumed, one produced CREATED receipt and one read-only
// reference: the pre-authorization named by the receipt; payer must be
// hosted by the referenced policy issuer's node and payee by the
// referenced provider's node
func (tx *Transition) verifyPaymentReceiptCreate(hosts HostResolver) error {
	if 0 != len(tx.Consumed) {
		return fault.InvalidConsumedCount
	}
	if 1 != len(tx.Produced) {
		return fault.InvalidProducedCount
	}
	if 1 != len(tx.References) {
		return fault.InvalidReferenceCount
	}

	produced, ok := tx.Produced[0].(*record.PaymentReceipt)
	if !ok {
		return fault.WrongRecordKind
	}
	reference, ok := tx.References[0].(*record.PreAuthorization)
	if !ok {
		return fault.WrongRecordKind
	}

	if record.PaymentReceiptCreated != produced.Status {
		return fault.InvalidProducedStatus
	}
	if produced.Amount < 0 {
		return fault.InvalidAmount
	}
	if !produced.Currency.IsValid() {
		return fault.InvalidCurrency
	}
	if reference.LinearId != produced.PreAuthorizationId {
		return fault.ReferenceNotFound
	}

	if nil == hosts {
		return fault.AccountNotFound
	}

	payerHost, err := hosts.ResolveHost(produced.PayerAccount.Role)
	if nil != err {
		return fault.AccountNotFound
	}
	issuerHost, err := hosts.ResolveHost(reference.PolicyIssuerAccount.Role)
	if nil != err {
		return fault.AccountNotFound
	}
	if payerHost != issuerHost {
		return fault.PayerIssuerHostMismatch
	}

	payeeHost, err := hosts.ResolveHost(produced.PayeeAccount.Role)
	if nil != err {
		return fault.AccountNotFound
	}
	providerHost, err := hosts.ResolveHost(reference.ProviderAccount.Role)
	if nil != err {
		return fault.AccountNotFound
	}
	if payeeHost != providerHost {
		return fault.PayeeProviderHostMismatch
	}
	return nil
}

// check every attached signature is valid and from a required signer
func (tx *Transition) checkAttachedSignatures(required []*identity.Identity) error {
	payload, err := tx.SigningPayload()
	if nil != err {
		return err
	}

	for _, countersignature := range tx.Signatures {
		if nil == countersignature.Signer {
			return fault.InvalidIdentity
		}
		err := countersignature.Signer.CheckSignature(payload, countersignature.Signature)
		if nil != err {
			return err
		}

		authorized := false
		for _, signer := range required {
			if signer.Equal(countersignature.Signer) {
				authorized = true
				break
			}
		}
		if !authorized {
			return fault.UnauthorizedSigner
		}
	}
	return nil
}

// check every required signer actually signed
func (tx *Transition) checkCompleteness(required []*identity.Identity) error {
	seen := make(map[string]bool)
	for _, countersignature := range tx.Signatures {
		if nil != countersignature.Signer {
			seen[countersignature.Signer.String()] = true
		}
	}
	for _, signer := range required {
		if !seen[signer.String()] {
			return fault.MissingAuthorization
		}
	}
	return nil
}
