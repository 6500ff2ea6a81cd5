// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition_test

import (
	"testing"

	"github.com/mediclaim/mediclaimd/currency"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/transition"
)

// one party with a long-term key pair
type party struct {
	public  *identity.Identity
	private *identity.PrivateKey
}

func newParty(t *testing.T) party {
	public, private, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("new key pair error: %s", err)
	}
	return party{public: public, private: private}
}

// fixed host table for receipt cross-checks
type hostTable map[record.Role]string

func (table hostTable) ResolveHost(role record.Role) (string, error) {
	host, ok := table[role]
	if !ok {
		return "", fault.AccountNotFound
	}
	return host, nil
}

var testHosts = hostTable{
	record.InsurerClaimsOfficer: "insurer.example.com:2136",
	record.InsurerFinanceClerk:  "insurer.example.com:2136",
	record.HospitalRegistrar:    "hospital.example.com:2136",
	record.HospitalFinanceClerk: "hospital.example.com:2136",
}

func makePreAuthorization(t *testing.T, patient party, hospital party, insurer party) *record.PreAuthorization {
	linearId, err := record.NewLinearId()
	if nil != err {
		t.Fatalf("new linear id error: %s", err)
	}
	return &record.PreAuthorization{
		PolicyHolder:     patient.public,
		MembershipNumber: "IN-4417-2209",
		ProviderAccount: record.Account{
			Identity: hospital.public,
			Role:     record.HospitalRegistrar,
		},
		DiagnosisDescription: "acute appendicitis, laparoscopic appendectomy",
		Currency:             currency.INR,
		Amount:               1250000,
		PolicyIssuerAccount: record.Account{
			Identity: insurer.public,
			Role:     record.InsurerClaimsOfficer,
		},
		SubmittedAt: 0x5f70a480,
		Status:      record.PreAuthorizationCreated,
		LinearId:    linearId,
	}
}

func makeCreate(t *testing.T, patient party, hospital party, insurer party) (*transition.Transition, *record.PreAuthorization) {
	preAuthorization := makePreAuthorization(t, patient, hospital, insurer)
	tx := &transition.Transition{
		Action:   transition.PreAuthorizationCreate,
		Produced: []record.Record{preAuthorization},
	}
	return tx, preAuthorization
}

func sign(t *testing.T, tx *transition.Transition, signers ...party) {
	for _, signer := range signers {
		err := tx.Sign(signer.public, signer.private)
		if nil != err {
			t.Fatalf("sign error: %s", err)
		}
	}
}

func TestVerifyPreAuthorizationCreate(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	tx, _ := makeCreate(t, patient, hospital, insurer)
	sign(t, tx, hospital, patient)

	err := tx.Verify(testHosts)
	if nil != err {
		t.Fatalf("verify error: %s", err)
	}
}

func TestVerifyCreateMissingSigner(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	tx, _ := makeCreate(t, patient, hospital, insurer)
	sign(t, tx, hospital) // policy holder never signs

	err := tx.Verify(testHosts)
	if fault.MissingAuthorization != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.MissingAuthorization)
	}
}

func TestVerifyCreateUnauthorizedSigner(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	intruder := newParty(t)

	tx, _ := makeCreate(t, patient, hospital, insurer)
	sign(t, tx, hospital, patient, intruder)

	err := tx.Verify(testHosts)
	if fault.UnauthorizedSigner != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.UnauthorizedSigner)
	}
}

func TestVerifyCreateForgedSignature(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	intruder := newParty(t)

	tx, _ := makeCreate(t, patient, hospital, insurer)
	sign(t, tx, hospital)

	// the intruder signs but claims to be the policy holder
	payload, err := tx.SigningPayload()
	if nil != err {
		t.Fatalf("signing payload error: %s", err)
	}
	tx.Signatures = append(tx.Signatures, transition.Countersignature{
		Signer:    patient.public,
		Signature: intruder.private.Sign(payload),
	})

	err = tx.Verify(testHosts)
	if fault.InvalidSignature != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.InvalidSignature)
	}
}

func TestVerifyCreateNegativeAmount(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	tx, preAuthorization := makeCreate(t, patient, hospital, insurer)
	preAuthorization.Amount = -1
	sign(t, tx, hospital, patient)

	err := tx.Verify(testHosts)
	if fault.InvalidAmount != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.InvalidAmount)
	}
}

// zero is a legitimate amount: fully-waived claims exist
func TestVerifyCreateZeroAmount(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	tx, preAuthorization := makeCreate(t, patient, hospital, insurer)
	preAuthorization.Amount = 0
	sign(t, tx, hospital, patient)

	err := tx.Verify(testHosts)
	if nil != err {
		t.Fatalf("verify error: %s", err)
	}
}

func TestVerifyCreateWrongStatus(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	tx, preAuthorization := makeCreate(t, patient, hospital, insurer)
	preAuthorization.Status = record.PreAuthorizationApproved
	sign(t, tx, hospital, patient)

	err := tx.Verify(testHosts)
	if fault.InvalidProducedStatus != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.InvalidProducedStatus)
	}
}

// build an approval over the given created record
func makeApprove(t *testing.T, created *record.PreAuthorization) *transition.Transition {
	packed, err := created.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}
	return &transition.Transition{
		Action: transition.PreAuthorizationApprove,
		Consumed: []transition.ConsumedVersion{{
			VersionId: packed.MakeVersionId(),
			Record:    created,
		}},
		Produced: []record.Record{
			created.CopyWithStatus(record.PreAuthorizationApproved),
		},
	}
}

func TestVerifyPreAuthorizationApprove(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	created := makePreAuthorization(t, patient, hospital, insurer)
	tx := makeApprove(t, created)
	sign(t, tx, insurer)

	err := tx.Verify(testHosts)
	if nil != err {
		t.Fatalf("verify error: %s", err)
	}
}

func TestVerifyApproveOnlyIssuerMaySign(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	created := makePreAuthorization(t, patient, hospital, insurer)
	tx := makeApprove(t, created)
	sign(t, tx, hospital)

	err := tx.Verify(testHosts)
	if fault.UnauthorizedSigner != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.UnauthorizedSigner)
	}
}

func TestVerifyApproveFieldMutation(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	created := makePreAuthorization(t, patient, hospital, insurer)

	mutations := []struct {
		name   string
		mutate func(produced *record.PreAuthorization)
	}{
		{"amount", func(produced *record.PreAuthorization) {
			produced.Amount += 1
		}},
		{"currency", func(produced *record.PreAuthorization) {
			produced.Currency = currency.USD
		}},
		{"diagnosis", func(produced *record.PreAuthorization) {
			produced.DiagnosisDescription = "routine check-up"
		}},
		{"membership number", func(produced *record.PreAuthorization) {
			produced.MembershipNumber = "IN-0000-0000"
		}},
		{"submitted at", func(produced *record.PreAuthorization) {
			produced.SubmittedAt += 60
		}},
	}

	for _, item := range mutations {
		tx := makeApprove(t, created)
		item.mutate(tx.Produced[0].(*record.PreAuthorization))
		sign(t, tx, insurer)

		err := tx.Verify(testHosts)
		if fault.IllegalFieldMutation != err {
			t.Fatalf("mutated %s verify error: %s  expected: %s", item.name, err, fault.IllegalFieldMutation)
		}
	}
}

func TestVerifyApproveSubstitutedConsumed(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	created := makePreAuthorization(t, patient, hospital, insurer)
	tx := makeApprove(t, created)

	// swap in a different consumed record without updating the id
	other := makePreAuthorization(t, patient, hospital, insurer)
	tx.Consumed[0].Record = other
	tx.Produced = []record.Record{
		other.CopyWithStatus(record.PreAuthorizationApproved),
	}
	sign(t, tx, insurer)

	err := tx.Verify(testHosts)
	if fault.VersionMismatch != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.VersionMismatch)
	}
}

func TestVerifyApproveAlreadyApproved(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	created := makePreAuthorization(t, patient, hospital, insurer)
	approved := created.CopyWithStatus(record.PreAuthorizationApproved)
	tx := makeApprove(t, approved)
	sign(t, tx, insurer)

	err := tx.Verify(testHosts)
	if fault.InvalidStatusTransition != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.InvalidStatusTransition)
	}
}

// build a receipt settling the given approved pre-authorization
func makeReceipt(t *testing.T, insurerClerk party, hospitalClerk party, approved *record.PreAuthorization) (*transition.Transition, *record.PaymentReceipt) {
	linearId, err := record.NewLinearId()
	if nil != err {
		t.Fatalf("new linear id error: %s", err)
	}
	receipt := &record.PaymentReceipt{
		PayerAccount: record.Account{
			Identity: insurerClerk.public,
			Role:     record.InsurerFinanceClerk,
		},
		PayeeAccount: record.Account{
			Identity: hospitalClerk.public,
			Role:     record.HospitalFinanceClerk,
		},
		Currency:           approved.Currency,
		Amount:             approved.Amount,
		SubmittedAt:        0x5f70b000,
		PreAuthorizationId: approved.LinearId,
		Status:             record.PaymentReceiptCreated,
		LinearId:           linearId,
	}
	tx := &transition.Transition{
		Action:     transition.PaymentReceiptCreate,
		Produced:   []record.Record{receipt},
		References: []record.Record{approved},
	}
	return tx, receipt
}

func TestVerifyPaymentReceiptCreate(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	insurerClerk := newParty(t)
	hospitalClerk := newParty(t)

	approved := makePreAuthorization(t, patient, hospital, insurer).
		CopyWithStatus(record.PreAuthorizationApproved)
	tx, _ := makeReceipt(t, insurerClerk, hospitalClerk, approved)
	sign(t, tx, insurerClerk, hospitalClerk)

	err := tx.Verify(testHosts)
	if nil != err {
		t.Fatalf("verify error: %s", err)
	}
}

func TestVerifyReceiptWrongReference(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	insurerClerk := newParty(t)
	hospitalClerk := newParty(t)

	approved := makePreAuthorization(t, patient, hospital, insurer).
		CopyWithStatus(record.PreAuthorizationApproved)
	tx, receipt := makeReceipt(t, insurerClerk, hospitalClerk, approved)

	otherId, err := record.NewLinearId()
	if nil != err {
		t.Fatalf("new linear id error: %s", err)
	}
	receipt.PreAuthorizationId = otherId
	sign(t, tx, insurerClerk, hospitalClerk)

	err = tx.Verify(testHosts)
	if fault.ReferenceNotFound != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.ReferenceNotFound)
	}
}

func TestVerifyReceiptPayerHostMismatch(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	insurerClerk := newParty(t)
	hospitalClerk := newParty(t)

	approved := makePreAuthorization(t, patient, hospital, insurer).
		CopyWithStatus(record.PreAuthorizationApproved)
	tx, receipt := makeReceipt(t, insurerClerk, hospitalClerk, approved)

	// payer role hosted by the hospital, issuer by the insurer
	receipt.PayerAccount.Role = record.HospitalFinanceClerk
	sign(t, tx, insurerClerk, hospitalClerk)

	err := tx.Verify(testHosts)
	if fault.PayerIssuerHostMismatch != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.PayerIssuerHostMismatch)
	}
}

func TestVerifyReceiptPayeeHostMismatch(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	insurerClerk := newParty(t)
	hospitalClerk := newParty(t)

	approved := makePreAuthorization(t, patient, hospital, insurer).
		CopyWithStatus(record.PreAuthorizationApproved)
	tx, receipt := makeReceipt(t, insurerClerk, hospitalClerk, approved)

	receipt.PayeeAccount.Role = record.InsurerFinanceClerk
	sign(t, tx, insurerClerk, hospitalClerk)

	err := tx.Verify(testHosts)
	if fault.PayeeProviderHostMismatch != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.PayeeProviderHostMismatch)
	}
}

func TestVerifyReceiptUnresolvableRole(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	insurerClerk := newParty(t)
	hospitalClerk := newParty(t)

	approved := makePreAuthorization(t, patient, hospital, insurer).
		CopyWithStatus(record.PreAuthorizationApproved)
	tx, _ := makeReceipt(t, insurerClerk, hospitalClerk, approved)
	sign(t, tx, insurerClerk, hospitalClerk)

	empty := hostTable{}
	err := tx.Verify(empty)
	if fault.AccountNotFound != err {
		t.Fatalf("verify error: %s  expected: %s", err, fault.AccountNotFound)
	}
}

// a transition surviving the wire must get the same verdict
func TestVerifyAfterRoundTrip(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)
	insurerClerk := newParty(t)
	hospitalClerk := newParty(t)

	approved := makePreAuthorization(t, patient, hospital, insurer).
		CopyWithStatus(record.PreAuthorizationApproved)
	tx, _ := makeReceipt(t, insurerClerk, hospitalClerk, approved)
	sign(t, tx, insurerClerk, hospitalClerk)

	packed, err := tx.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}
	unpacked, err := packed.Unpack()
	if nil != err {
		t.Fatalf("unpack error: %s", err)
	}

	before, err := tx.Id()
	if nil != err {
		t.Fatalf("id error: %s", err)
	}
	after, err := unpacked.Id()
	if nil != err {
		t.Fatalf("id error: %s", err)
	}
	if before != after {
		t.Fatalf("id changed: %#v  expected: %#v", after, before)
	}

	err = unpacked.Verify(testHosts)
	if nil != err {
		t.Fatalf("verify after round trip error: %s", err)
	}
}

func TestSigningPayloadExcludesSignatures(t *testing.T) {
	patient := newParty(t)
	hospital := newParty(t)
	insurer := newParty(t)

	tx, _ := makeCreate(t, patient, hospital, insurer)
	before, err := tx.SigningPayload()
	if nil != err {
		t.Fatalf("signing payload error: %s", err)
	}

	sign(t, tx, hospital, patient)
	after, err := tx.SigningPayload()
	if nil != err {
		t.Fatalf("signing payload error: %s", err)
	}

	if string(before) != string(after) {
		t.Fatal("signing payload depends on attached signatures")
	}
}
