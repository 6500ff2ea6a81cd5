// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package directory - the role directory
//
// every organisational role resolves to exactly one active identity
// and the host that controls it; nodes keep their own directory and
// push new registrations to counter-parties during account sharing
package directory

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
)

// Entry - the active binding of a role
type Entry struct {
	Identity *identity.Identity `json:"identity"` // base58
	Host     string             `json:"host"`     // "address:port"
}

// Directory - resolve and register role bindings
type Directory interface {
	Resolve(role record.Role) (Entry, error)
	ResolveHost(role record.Role) (string, error)
	Register(role record.Role, entry Entry) error
	Roles() []record.Role
}

// an in-memory directory, safe for concurrent use
type directory struct {
	sync.RWMutex
	log     *logger.L
	entries map[record.Role]Entry
}

// New - create an empty directory
func New() Directory {
	return &directory{
		log:     logger.New("directory"),
		entries: make(map[record.Role]Entry),
	}
}

// Resolve - look up the active binding of a role
func (d *directory) Resolve(role record.Role) (Entry, error) {
	if !role.IsValid() {
		return Entry{}, fault.UnknownRole
	}

	d.RLock()
	defer d.RUnlock()

	entry, ok := d.entries[role]
	if !ok {
		return Entry{}, fault.AccountNotFound
	}
	return entry, nil
}

// ResolveHost - host part only, the shape the verification engine wants
func (d *directory) ResolveHost(role record.Role) (string, error) {
	entry, err := d.Resolve(role)
	if nil != err {
		return "", err
	}
	return entry.Host, nil
}

// Register - bind a role to an identity and its hosting node
//
// a role binds at most once; re-registering the identical entry is a
// no-op so that shared registrations converge
func (d *directory) Register(role record.Role, entry Entry) error {
	if !role.IsValid() {
		return fault.UnknownRole
	}
	if nil == entry.Identity || "" == entry.Host {
		return fault.InvalidIdentity
	}

	d.Lock()
	defer d.Unlock()

	existing, ok := d.entries[role]
	if ok {
		if existing.Host == entry.Host && existing.Identity.Equal(entry.Identity) {
			return nil
		}
		return fault.AccountAlreadyExists
	}

	d.entries[role] = entry
	d.log.Infof("register: %s @ %s", role, entry.Host)
	return nil
}

// Roles - all currently bound roles
func (d *directory) Roles() []record.Role {
	d.RLock()
	defer d.RUnlock()

	roles := make([]record.Role, 0, len(d.entries))
	for role := range d.entries {
		roles = append(roles, role)
	}
	return roles
}
