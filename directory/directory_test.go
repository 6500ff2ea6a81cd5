// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package directory_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/mediclaim/mediclaimd/directory"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/record"
)

const (
	dir         = "testing"
	logCategory = "testing"
)

func setupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", logCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(dir)
}

func TestMain(m *testing.M) {
	setupTestLogger()
	rc := m.Run()
	teardownTestLogger()
	os.Exit(rc)
}

func newIdentity(t *testing.T) *identity.Identity {
	public, _, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("new key pair error: %s", err)
	}
	return public
}

func TestRegisterAndResolve(t *testing.T) {
	d := directory.New()

	registrar := newIdentity(t)
	err := d.Register(record.HospitalRegistrar, directory.Entry{
		Identity: registrar,
		Host:     "hospital.example.com:2136",
	})
	assert.NoError(t, err, "register")

	entry, err := d.Resolve(record.HospitalRegistrar)
	assert.NoError(t, err, "resolve")
	assert.Equal(t, "hospital.example.com:2136", entry.Host, "wrong host")
	assert.True(t, registrar.Equal(entry.Identity), "wrong identity")

	host, err := d.ResolveHost(record.HospitalRegistrar)
	assert.NoError(t, err, "resolve host")
	assert.Equal(t, "hospital.example.com:2136", host, "wrong host")
}

func TestResolveUnregistered(t *testing.T) {
	d := directory.New()

	_, err := d.Resolve(record.InsurerClaimsOfficer)
	assert.Equal(t, fault.AccountNotFound, err, "wrong error")
}

func TestResolveInvalidRole(t *testing.T) {
	d := directory.New()

	_, err := d.Resolve(record.NoRole)
	assert.Equal(t, fault.UnknownRole, err, "wrong error")
}

func TestRegisterCollision(t *testing.T) {
	d := directory.New()

	first := newIdentity(t)
	err := d.Register(record.InsurerFinanceClerk, directory.Entry{
		Identity: first,
		Host:     "insurer.example.com:2136",
	})
	assert.NoError(t, err, "register")

	// a different identity cannot steal the role
	err = d.Register(record.InsurerFinanceClerk, directory.Entry{
		Identity: newIdentity(t),
		Host:     "insurer.example.com:2136",
	})
	assert.Equal(t, fault.AccountAlreadyExists, err, "wrong error")

	// the identical shared entry converges silently
	err = d.Register(record.InsurerFinanceClerk, directory.Entry{
		Identity: first,
		Host:     "insurer.example.com:2136",
	})
	assert.NoError(t, err, "re-register identical entry")
}

func TestRegisterIncompleteEntry(t *testing.T) {
	d := directory.New()

	err := d.Register(record.HospitalFinanceClerk, directory.Entry{
		Identity: nil,
		Host:     "hospital.example.com:2136",
	})
	assert.Equal(t, fault.InvalidIdentity, err, "wrong error")

	err = d.Register(record.HospitalFinanceClerk, directory.Entry{
		Identity: newIdentity(t),
		Host:     "",
	})
	assert.Equal(t, fault.InvalidIdentity, err, "wrong error")
}

func TestRoles(t *testing.T) {
	d := directory.New()

	_ = d.Register(record.HospitalRegistrar, directory.Entry{
		Identity: newIdentity(t),
		Host:     "hospital.example.com:2136",
	})
	_ = d.Register(record.InsurerClaimsOfficer, directory.Entry{
		Identity: newIdentity(t),
		Host:     "insurer.example.com:2136",
	})

	roles := d.Roles()
	assert.Len(t, roles, 2, "wrong role count")
	assert.Contains(t, roles, record.HospitalRegistrar, "missing registrar")
	assert.Contains(t, roles, record.InsurerClaimsOfficer, "missing claims officer")
}
