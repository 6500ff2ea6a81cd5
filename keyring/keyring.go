// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keyring - private key custody and the key mapping table
//
// records never carry an organisation's long-term key: each transition
// uses a freshly minted pseudonymous key pair. the keyring holds every
// private key this node controls and a mapping table recording which
// role each pseudonymous key acts for, including mappings learned from
// counter-parties during key exchange
package keyring

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
)

// Keyring - key custody for one node, safe for concurrent use
type Keyring struct {
	sync.RWMutex
	log      *logger.L
	privates map[string]*identity.PrivateKey // keyed by identity base58
	roles    map[string]record.Role          // pseudonym to role, local and learned
}

// New - create an empty keyring
func New() *Keyring {
	return &Keyring{
		log:      logger.New("keyring"),
		privates: make(map[string]*identity.PrivateKey),
		roles:    make(map[string]record.Role),
	}
}

// NewEphemeralKey - mint a pseudonymous key pair acting for a role
//
// the private half never leaves this keyring
func (k *Keyring) NewEphemeralKey(role record.Role) (*identity.Identity, error) {
	if !role.IsValid() {
		return nil, fault.UnknownRole
	}

	public, private, err := identity.NewKeyPair()
	if nil != err {
		return nil, err
	}

	k.Lock()
	k.privates[public.String()] = private
	k.roles[public.String()] = role
	k.Unlock()

	k.log.Debugf("minted ephemeral key %s for %s", public, role)
	return public, nil
}

// Add - take custody of an existing key pair acting for a role
//
// used for a node's long-term registration keys loaded from
// configuration
func (k *Keyring) Add(private *identity.PrivateKey, role record.Role) (*identity.Identity, error) {
	if nil == private {
		return nil, fault.InvalidPrivateKey
	}
	if !role.IsValid() {
		return nil, fault.UnknownRole
	}

	public := private.Identity()

	k.Lock()
	k.privates[public.String()] = private
	k.roles[public.String()] = role
	k.Unlock()

	return public, nil
}

// Custody - take custody of a key pair with no role attached
//
// policy holders are natural persons, not organisational roles; their
// keys are held by the node that registered them
func (k *Keyring) Custody(private *identity.PrivateKey) (*identity.Identity, error) {
	if nil == private {
		return nil, fault.InvalidPrivateKey
	}

	public := private.Identity()

	k.Lock()
	k.privates[public.String()] = private
	k.Unlock()

	return public, nil
}

// Controls - true if this node holds the private half of the identity
func (k *Keyring) Controls(signer *identity.Identity) bool {
	if nil == signer {
		return false
	}
	k.RLock()
	_, ok := k.privates[signer.String()]
	k.RUnlock()
	return ok
}

// Sign - sign a message with the private half of the identity
func (k *Keyring) Sign(signer *identity.Identity, message []byte) (identity.Signature, error) {
	if nil == signer {
		return nil, fault.InvalidIdentity
	}

	k.RLock()
	private, ok := k.privates[signer.String()]
	k.RUnlock()

	if !ok {
		return nil, fault.KeyNotHeld
	}
	return private.Sign(message), nil
}

// MapKey - record which role a counter-party pseudonym acts for
//
// remapping an already known pseudonym to a different role is refused:
// a key acts for exactly one role for its whole life
func (k *Keyring) MapKey(signer *identity.Identity, role record.Role) error {
	if nil == signer {
		return fault.InvalidIdentity
	}
	if !role.IsValid() {
		return fault.UnknownRole
	}

	k.Lock()
	defer k.Unlock()

	existing, ok := k.roles[signer.String()]
	if ok && existing != role {
		return fault.AccountAlreadyExists
	}
	k.roles[signer.String()] = role
	return nil
}

// RoleOf - the role a pseudonym acts for, if known
func (k *Keyring) RoleOf(signer *identity.Identity) (record.Role, error) {
	if nil == signer {
		return record.NoRole, fault.InvalidIdentity
	}

	k.RLock()
	role, ok := k.roles[signer.String()]
	k.RUnlock()

	if !ok {
		return record.NoRole, fault.KeyNotHeld
	}
	return role, nil
}

// Mappings - snapshot of the pseudonym to role table
//
// sent to counter-parties alongside a proposal so that they can
// attribute the fresh keys inside the records
func (k *Keyring) Mappings(identities []*identity.Identity) map[string]record.Role {
	snapshot := make(map[string]record.Role)

	k.RLock()
	defer k.RUnlock()

	for _, item := range identities {
		if nil == item {
			continue
		}
		role, ok := k.roles[item.String()]
		if ok {
			snapshot[item.String()] = role
		}
	}
	return snapshot
}
