// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keyring_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/identity"
	"github.com/mediclaim/mediclaimd/keyring"
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

func TestEphemeralKeyLifecycle(t *testing.T) {
	k := keyring.New()

	public, err := k.NewEphemeralKey(record.HospitalRegistrar)
	if nil != err {
		t.Fatalf("new ephemeral key error: %s", err)
	}
	if !k.Controls(public) {
		t.Fatal("keyring does not control its own ephemeral key")
	}

	role, err := k.RoleOf(public)
	if nil != err {
		t.Fatalf("role of error: %s", err)
	}
	if record.HospitalRegistrar != role {
		t.Fatalf("role: %s  expected: %s", role, record.HospitalRegistrar)
	}

	message := []byte("pre-authorization payload")
	signature, err := k.Sign(public, message)
	if nil != err {
		t.Fatalf("sign error: %s", err)
	}
	err = public.CheckSignature(message, signature)
	if nil != err {
		t.Fatalf("check signature error: %s", err)
	}
}

func TestEphemeralKeysAreUnlinkable(t *testing.T) {
	k := keyring.New()

	first, err := k.NewEphemeralKey(record.HospitalRegistrar)
	if nil != err {
		t.Fatalf("new ephemeral key error: %s", err)
	}
	second, err := k.NewEphemeralKey(record.HospitalRegistrar)
	if nil != err {
		t.Fatalf("new ephemeral key error: %s", err)
	}
	if first.Equal(second) {
		t.Fatal("two mintings produced the same key")
	}
}

func TestSignUnknownKey(t *testing.T) {
	k := keyring.New()

	stranger, _, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("new key pair error: %s", err)
	}

	_, err = k.Sign(stranger, []byte("message"))
	if fault.KeyNotHeld != err {
		t.Fatalf("sign error: %s  expected: %s", err, fault.KeyNotHeld)
	}
	if k.Controls(stranger) {
		t.Fatal("keyring claims control of a stranger's key")
	}
}

func TestMapKey(t *testing.T) {
	k := keyring.New()

	remote, _, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("new key pair error: %s", err)
	}

	err = k.MapKey(remote, record.InsurerClaimsOfficer)
	if nil != err {
		t.Fatalf("map key error: %s", err)
	}

	// mapping is learned, custody is not
	role, err := k.RoleOf(remote)
	if nil != err {
		t.Fatalf("role of error: %s", err)
	}
	if record.InsurerClaimsOfficer != role {
		t.Fatalf("role: %s  expected: %s", role, record.InsurerClaimsOfficer)
	}
	if k.Controls(remote) {
		t.Fatal("mapping must not grant custody")
	}

	// same mapping converges, a different role is refused
	err = k.MapKey(remote, record.InsurerClaimsOfficer)
	if nil != err {
		t.Fatalf("re-map error: %s", err)
	}
	err = k.MapKey(remote, record.HospitalRegistrar)
	if fault.AccountAlreadyExists != err {
		t.Fatalf("re-map error: %s  expected: %s", err, fault.AccountAlreadyExists)
	}
}

func TestMappings(t *testing.T) {
	k := keyring.New()

	provider, err := k.NewEphemeralKey(record.HospitalRegistrar)
	if nil != err {
		t.Fatalf("new ephemeral key error: %s", err)
	}
	stranger, _, err := identity.NewKeyPair()
	if nil != err {
		t.Fatalf("new key pair error: %s", err)
	}

	snapshot := k.Mappings([]*identity.Identity{provider, stranger, nil})
	if 1 != len(snapshot) {
		t.Fatalf("mappings count: %d  expected: 1", len(snapshot))
	}
	if record.HospitalRegistrar != snapshot[provider.String()] {
		t.Fatalf("mapping: %s  expected: %s", snapshot[provider.String()], record.HospitalRegistrar)
	}
}
