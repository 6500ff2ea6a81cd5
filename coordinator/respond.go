// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"time"

	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/record"
	"github.com/mediclaim/mediclaimd/transition"
)

// responder progress for one proposed transition
type responderState int

const (
	stateAwaitProposal responderState = iota
	stateValidating
	stateSigned
	stateRejected
	stateAwaitFinality
	stateRecorded
)

func (state responderState) String() string {
	switch state {
	case stateAwaitProposal:
		return "await-proposal"
	case stateValidating:
		return "validating"
	case stateSigned:
		return "signed"
	case stateRejected:
		return "rejected"
	case stateAwaitFinality:
		return "await-finality"
	case stateRecorded:
		return "recorded"
	default:
		return "*unknown-state*"
	}
}

// a countersigned proposal waiting for its finality message
type pendingTransition struct {
	state   responderState
	expires time.Time
}

// actions a responder will countersign when asked
//
// create and approve are signed entirely by their initiating node, so
// an unsolicited proposal for them is refused
var allowedProposalActions = map[transition.Action]bool{
	transition.PaymentReceiptCreate: true,
}

// Handler - answer one session request
//
// wired into the session server (or the test loopback) as this node's
// request handler
func (node *Node) Handler(request []byte) []byte {
	m, err := unpackMessage(request)
	if nil != err {
		return rejectionMessage(fault.UnexpectedPayload)
	}

	switch m.kind {

	case proposalRequest:
		return node.handleProposal(m)

	case finalityRequest:
		return node.handleFinality(m)

	case keyRequest:
		return node.handleKeyRequest(m)

	case shareRequest:
		return node.handleShare(m)

	default:
		return rejectionMessage(fault.UnexpectedPayload)
	}
}

// proposal: validate, then countersign with locally controlled keys
func (node *Node) handleProposal(m *message) []byte {
	tx, err := m.packed.Unpack()
	if nil != err {
		return rejectionMessage(fault.UnexpectedPayload)
	}
	txId, err := tx.Id()
	if nil != err {
		return rejectionMessage(err)
	}

	node.setPending(txId, stateValidating)

	if !allowedProposalActions[tx.Action] {
		return node.reject(txId, fault.InvalidAction)
	}

	// learn the initiator's pseudonym attributions
	for _, entry := range m.keyMap {
		err = node.keys.MapKey(entry.Identity, entry.Role)
		if nil != err {
			return node.reject(txId, err)
		}
	}

	err = tx.VerifyPartial(node.directory)
	if nil != err {
		return node.reject(txId, err)
	}

	// the attached signature keys must act for the accounts they claim
	err = node.checkDeclaredAccounts(tx)
	if nil != err {
		return node.reject(txId, err)
	}

	required, err := tx.RequiredSigners()
	if nil != err {
		return node.reject(txId, err)
	}
	payload, err := tx.SigningPayload()
	if nil != err {
		return node.reject(txId, err)
	}

	reply := message{kind: proposalSigned}
	for _, signer := range required {
		if !node.keys.Controls(signer) {
			continue
		}
		signature, err := node.keys.Sign(signer, payload)
		if nil != err {
			return node.reject(txId, err)
		}
		reply.signatures = append(reply.signatures, transition.Countersignature{
			Signer:    signer,
			Signature: signature,
		})
	}
	if 0 == len(reply.signatures) {
		return node.reject(txId, fault.AccountNotLocal)
	}

	// signed; hold the entry until finality arrives or it expires
	node.setPending(txId, stateSigned)
	node.setPending(txId, stateAwaitFinality)
	node.log.Infof("countersigned %s as %#v", tx.Action, txId)
	return reply.pack()
}

// every signature already attached must come from a key whose learned
// role matches the account it occupies in the produced records
func (node *Node) checkDeclaredAccounts(tx *transition.Transition) error {
	for _, countersignature := range tx.Signatures {
		role, err := node.keys.RoleOf(countersignature.Signer)
		if nil != err {
			return fault.InvalidIdentity
		}

		matched := false
		for _, produced := range tx.Produced {
			account, err := produced.RoleOwner(partyForRole(produced, role))
			if nil == err && account.Equal(countersignature.Signer) {
				matched = true
				break
			}
		}
		if !matched {
			return fault.UnauthorizedSigner
		}
	}
	return nil
}

// map an organisational role onto the party slot it fills in a record
func partyForRole(item record.Record, role record.Role) record.PartyRole {
	switch item.(type) {
	case *record.PreAuthorization:
		switch role {
		case record.HospitalRegistrar:
			return record.PartyHospital
		case record.InsurerClaimsOfficer:
			return record.PartyInsurer
		}
	case *record.PaymentReceipt:
		switch role {
		case record.InsurerFinanceClerk:
			return record.PartyPayer
		case record.HospitalFinanceClerk:
			return record.PartyPayee
		}
	}
	return record.PartyRole(0)
}

// finality: run the full verdict and record the produced versions
func (node *Node) handleFinality(m *message) []byte {
	tx, err := m.packed.Unpack()
	if nil != err {
		return rejectionMessage(fault.UnexpectedPayload)
	}
	txId, err := tx.Id()
	if nil != err {
		return rejectionMessage(err)
	}

	// learn the pseudonym attributions carried with the finality
	for _, entry := range m.keyMap {
		err = node.keys.MapKey(entry.Identity, entry.Role)
		if nil != err {
			return node.reject(txId, err)
		}
	}

	err = tx.Verify(node.directory)
	if nil != err {
		node.log.Warnf("finality verify failed for %#v: %s", txId, err)
		return node.reject(txId, err)
	}

	// a finality whose produced versions are already stored was
	// applied earlier; re-applying it would move the latest pointer
	// back to a superseded version
	for _, produced := range tx.Produced {
		packed, err := produced.Pack()
		if nil != err {
			return node.reject(txId, err)
		}
		stored, err := node.store.HasVersion(packed.MakeVersionId())
		if nil != err {
			return node.reject(txId, err)
		}
		if stored {
			return node.reject(txId, fault.TransitionAlreadyRecorded)
		}
	}

	// claim the consumed versions locally: each must still be the
	// current version of its record
	for _, consumed := range tx.Consumed {
		current, err := node.store.IsCurrent(consumed.Record, consumed.VersionId)
		if nil != err {
			return node.reject(txId, err)
		}
		if !current {
			return node.reject(txId, fault.DoubleConsumptionAttempt)
		}
		err = node.notary.Consume(consumed.VersionId, txId)
		if nil != err {
			return node.reject(txId, err)
		}
	}

	for _, produced := range tx.Produced {
		_, err = node.store.Save(produced)
		if nil != err {
			return node.reject(txId, err)
		}
	}

	node.setPending(txId, stateRecorded)
	node.clearPending(txId)
	node.log.Infof("recorded %s as %#v", tx.Action, txId)

	reply := message{kind: finalityRecorded}
	return reply.pack()
}

// key request: mint a pseudonym for a role this node hosts
func (node *Node) handleKeyRequest(m *message) []byte {
	entry, err := node.directory.Resolve(m.role)
	if nil != err {
		return rejectionMessage(err)
	}
	if entry.Host != node.host {
		return rejectionMessage(fault.AccountNotLocal)
	}

	public, err := node.keys.NewEphemeralKey(m.role)
	if nil != err {
		return rejectionMessage(err)
	}

	reply := message{kind: keyReply}
	reply.entry.Identity = public
	return reply.pack()
}

// share request: learn a counter-party's account registration
func (node *Node) handleShare(m *message) []byte {
	err := node.directory.Register(m.role, m.entry)
	if nil != err {
		return rejectionMessage(err)
	}
	reply := message{kind: shareAccepted}
	return reply.pack()
}

// pending transition bookkeeping

func (node *Node) setPending(txId digest.Digest, state responderState) {
	node.pendingLock.Lock()
	item, ok := node.pending[txId]
	if !ok {
		item = &pendingTransition{}
		node.pending[txId] = item
	}
	item.state = state
	item.expires = time.Now().Add(pendingExpiry)
	node.pendingLock.Unlock()

	node.log.Debugf("transition %#v: %s", txId, state)
}

func (node *Node) clearPending(txId digest.Digest) {
	node.pendingLock.Lock()
	delete(node.pending, txId)
	node.pendingLock.Unlock()
}

func (node *Node) reject(txId digest.Digest, reason error) []byte {
	node.setPending(txId, stateRejected)
	node.clearPending(txId)
	node.log.Warnf("rejected %#v: %s", txId, reason)
	return rejectionMessage(reason)
}

// drop countersigned proposals whose finality never arrived
func (node *Node) expirePending(shutdown <-chan struct{}) {
	for {
		select {
		case <-shutdown:
			return
		case <-time.After(expirySweepInterval):
			now := time.Now()
			node.pendingLock.Lock()
			for txId, item := range node.pending {
				if item.expires.Before(now) {
					node.log.Warnf("expired %s transition %#v", item.state, txId)
					delete(node.pending, txId)
				}
			}
			node.pendingLock.Unlock()
		}
	}
}
