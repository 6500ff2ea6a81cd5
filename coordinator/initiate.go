// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/currency"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/transition"
)

// CreatePreAuthorizationArgs - what the provider submits
type CreatePreAuthorizationArgs struct {
	PolicyHolder         *identity.Identity
	MembershipNumber     string
	DiagnosisDescription string
	Currency             currency.Currency
	Amount               record.Amount
}

// CreatePreAuthorization - provider initiates a new claim
//
// runs on the hospital node: mints a fresh provider pseudonym, obtains
// an issuer pseudonym from the insurer node, signs as provider and
// policy holder and finalizes to the insurer
func (node *Node) CreatePreAuthorization(args CreatePreAuthorizationArgs) (*record.PreAuthorization, error) {
	providerEntry, err := node.directory.Resolve(record.HospitalRegistrar)
	if nil != err {
		return nil, err
	}
	if providerEntry.Host != node.host {
		return nil, fault.AccountNotLocal
	}
	if !node.keys.Controls(args.PolicyHolder) {
		return nil, fault.KeyNotHeld
	}

	issuerEntry, err := node.directory.Resolve(record.InsurerClaimsOfficer)
	if nil != err {
		return nil, err
	}

	providerKey, err := node.keys.NewEphemeralKey(record.HospitalRegistrar)
	if nil != err {
		return nil, err
	}
	issuerKey, err := node.requestKey(issuerEntry.Host, record.InsurerClaimsOfficer)
	if nil != err {
		return nil, err
	}

	linearId, err := record.NewLinearId()
	if nil != err {
		return nil, err
	}

	preAuthorization := &record.PreAuthorization{
		PolicyHolder:     args.PolicyHolder,
		MembershipNumber: args.MembershipNumber,
		ProviderAccount: record.Account{
			Identity: providerKey,
			Role:     record.HospitalRegistrar,
		},
		DiagnosisDescription: args.DiagnosisDescription,
		Currency:             args.Currency,
		Amount:               args.Amount,
		PolicyIssuerAccount: record.Account{
			Identity: issuerKey,
			Role:     record.InsurerClaimsOfficer,
		},
		SubmittedAt: uint64(time.Now().Unix()),
		Status:      record.PreAuthorizationCreated,
		LinearId:    linearId,
	}

	tx := &transition.Transition{
		Action:   transition.PreAuthorizationCreate,
		Produced: []record.Record{preAuthorization},
	}

	err = node.signAndFinalize(tx)
	if nil != err {
		return nil, err
	}
	return preAuthorization, nil
}

// ApprovePreAuthorization - policy issuer approves a claim
//
// runs on the insurer node: consumes the CREATED version, produces the
// APPROVED copy and claims the consumed version at the notary before
// distribution
func (node *Node) ApprovePreAuthorization(linearId record.LinearId) (*record.PreAuthorization, error) {
	latest, versionId, err := node.store.LatestByLinearId(linearId)
	if fault.RecordNotFound == err {
		return nil, fault.PreAuthorizationNotFound
	}
	if nil != err {
		return nil, err
	}
	consumed, ok := latest.(*record.PreAuthorization)
	if !ok {
		return nil, fault.WrongRecordKind
	}

	issuerEntry, err := node.directory.Resolve(consumed.PolicyIssuerAccount.Role)
	if nil != err {
		return nil, err
	}
	if issuerEntry.Host != node.host {
		return nil, fault.AccountNotLocal
	}

	produced := consumed.CopyWithStatus(record.PreAuthorizationApproved)
	tx := &transition.Transition{
		Action: transition.PreAuthorizationApprove,
		Consumed: []transition.ConsumedVersion{{
			VersionId: versionId,
			Record:    consumed,
		}},
		Produced: []record.Record{produced},
	}

	err = node.signAndFinalize(tx)
	if nil != err {
		return nil, err
	}
	return produced, nil
}

// CreatePaymentReceiptArgs - what the payer submits
type CreatePaymentReceiptArgs struct {
	Currency           currency.Currency
	Amount             record.Amount
	PreAuthorizationId record.LinearId
}

// CreatePaymentReceipt - payer settles against an approved claim
//
// runs on the insurer node: the payee countersignature is collected
// from the hospital node over a proposal session
func (node *Node) CreatePaymentReceipt(args CreatePaymentReceiptArgs) (*record.PaymentReceipt, error) {
	payerEntry, err := node.directory.Resolve(record.InsurerFinanceClerk)
	if nil != err {
		return nil, err
	}
	if payerEntry.Host != node.host {
		return nil, fault.AccountNotLocal
	}
	payeeEntry, err := node.directory.Resolve(record.HospitalFinanceClerk)
	if nil != err {
		return nil, err
	}

	latest, _, err := node.store.LatestByLinearId(args.PreAuthorizationId)
	if fault.RecordNotFound == err {
		return nil, fault.PreAuthorizationNotFound
	}
	if nil != err {
		return nil, err
	}
	reference, ok := latest.(*record.PreAuthorization)
	if !ok {
		return nil, fault.WrongRecordKind
	}

	payerKey, err := node.keys.NewEphemeralKey(record.InsurerFinanceClerk)
	if nil != err {
		return nil, err
	}
	payeeKey, err := node.requestKey(payeeEntry.Host, record.HospitalFinanceClerk)
	if nil != err {
		return nil, err
	}

	linearId, err := record.NewLinearId()
	if nil != err {
		return nil, err
	}

	receipt := &record.PaymentReceipt{
		PayerAccount: record.Account{
			Identity: payerKey,
			Role:     record.InsurerFinanceClerk,
		},
		PayeeAccount: record.Account{
			Identity: payeeKey,
			Role:     record.HospitalFinanceClerk,
		},
		Currency:           args.Currency,
		Amount:             args.Amount,
		SubmittedAt:        uint64(time.Now().Unix()),
		PreAuthorizationId: args.PreAuthorizationId,
		Status:             record.PaymentReceiptCreated,
		LinearId:           linearId,
	}

	tx := &transition.Transition{
		Action:     transition.PaymentReceiptCreate,
		Produced:   []record.Record{receipt},
		References: []record.Record{reference},
	}

	err = node.signAndFinalize(tx)
	if nil != err {
		return nil, err
	}
	return receipt, nil
}

// sign with every locally controlled required signer, collect remote
// countersignatures, run the full verdict, consume and distribute
func (node *Node) signAndFinalize(tx *transition.Transition) error {
	err := tx.VerifyPartial(node.directory)
	if nil != err {
		return err
	}

	required, err := tx.RequiredSigners()
	if nil != err {
		return err
	}

	remote := []*identity.Identity{}
	for _, signer := range required {
		if node.keys.Controls(signer) {
			signature, err := node.keys.Sign(signer, mustPayload(tx))
			if nil != err {
				return err
			}
			tx.Signatures = append(tx.Signatures, transition.Countersignature{
				Signer:    signer,
				Signature: signature,
			})
		} else {
			remote = append(remote, signer)
		}
	}

	for _, signer := range remote {
		err = node.collectCountersignature(tx, signer)
		if nil != err {
			return err
		}
	}

	err = tx.Verify(node.directory)
	if nil != err {
		return err
	}

	txId, err := tx.Id()
	if nil != err {
		return err
	}
	for _, consumed := range tx.Consumed {
		err = node.notary.Consume(consumed.VersionId, txId)
		if nil != err {
			return err
		}
	}

	return node.finalize(tx)
}

// ask the node hosting a required signer for its countersignature
func (node *Node) collectCountersignature(tx *transition.Transition, signer *identity.Identity) error {
	role, err := node.keys.RoleOf(signer)
	if nil != err {
		return fault.KeyNotHeld
	}
	host, err := node.directory.ResolveHost(role)
	if nil != err {
		return err
	}

	packed, err := tx.Pack()
	if nil != err {
		return err
	}
	request := message{
		kind:   proposalRequest,
		packed: packed,
		keyMap: node.keyMapFor(tx),
	}
	reply, err := node.exchange(host, &request)
	if nil != err {
		return err
	}
	if proposalSigned != reply.kind {
		return node.rejected(reply)
	}
	if 0 == len(reply.signatures) {
		return fault.MissingAuthorization
	}

	tx.Signatures = append(tx.Signatures, reply.signatures...)
	return nil
}

// distribute the finalized transition, then record it locally
//
// all or nothing: if any counter-party refuses or the session breaks,
// nothing is recorded anywhere this node controls
func (node *Node) finalize(tx *transition.Transition) error {
	packed, err := tx.Pack()
	if nil != err {
		return err
	}
	request := message{
		kind:   finalityRequest,
		packed: packed,
		keyMap: node.keyMapFor(tx),
	}

	for _, host := range node.remoteParticipantHosts(tx) {
		reply, err := node.exchange(host, &request)
		if nil != err {
			return err
		}
		if finalityRecorded != reply.kind {
			return node.rejected(reply)
		}
	}

	for _, produced := range tx.Produced {
		_, err = node.store.Save(produced)
		if nil != err {
			return err
		}
	}

	txId, _ := tx.Id()
	node.log.Infof("finalized %s as %#v", tx.Action, txId)
	return nil
}

// the hosts of every participant except this node
func (node *Node) remoteParticipantHosts(tx *transition.Transition) []string {
	hosts := []string{}
	seen := map[string]bool{node.host: true}

	for _, produced := range tx.Produced {
		for _, participant := range produced.Participants() {
			role, err := node.keys.RoleOf(participant)
			if nil != err {
				continue // a policy holder key, hosted locally
			}
			host, err := node.directory.ResolveHost(role)
			if nil != err || seen[host] {
				continue
			}
			seen[host] = true
			hosts = append(hosts, host)
		}
	}
	return hosts
}

// the pseudonym attributions a counter-party needs for this transition
func (node *Node) keyMapFor(tx *transition.Transition) []keyMapEntry {
	identities := []*identity.Identity{}
	for _, produced := range tx.Produced {
		identities = append(identities, produced.Participants()...)
	}
	for _, reference := range tx.References {
		identities = append(identities, reference.Participants()...)
	}

	entries := []keyMapEntry{}
	for item, role := range node.keys.Mappings(identities) {
		signer, err := identity.FromBase58(item)
		if nil != err {
			continue
		}
		entries = append(entries, keyMapEntry{Identity: signer, Role: role})
	}
	return entries
}

// payload of a transition already validated by VerifyPartial
func mustPayload(tx *transition.Transition) []byte {
	payload, err := tx.SigningPayload()
	if nil != err {
		logger.Panicf("transition payload error: %s", err)
	}
	return payload
}
