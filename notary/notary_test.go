// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary_test

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/notary"
	"github.com/mediclaim/mediclaimd/store"
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

func newNotary(t *testing.T) (*notary.Notary, *store.Store) {
	s, err := store.NewEphemeral()
	if nil != err {
		t.Fatalf("new ephemeral store error: %s", err)
	}
	return notary.New(s.ConsumedPool()), s
}

func TestConsume(t *testing.T) {
	n, s := newNotary(t)
	defer s.Close()

	version := digest.NewDigest([]byte("version one"))
	first := digest.NewDigest([]byte("transition one"))
	second := digest.NewDigest([]byte("transition two"))

	err := n.Consume(version, first)
	if nil != err {
		t.Fatalf("consume error: %s", err)
	}

	consumed, err := n.IsConsumed(version)
	if nil != err {
		t.Fatalf("is consumed error: %s", err)
	}
	if !consumed {
		t.Fatal("version not marked consumed")
	}

	// a retry by the winner is idempotent
	err = n.Consume(version, first)
	if nil != err {
		t.Fatalf("retry consume error: %s", err)
	}

	// any other transition is refused
	err = n.Consume(version, second)
	if fault.DoubleConsumptionAttempt != err {
		t.Fatalf("consume error: %s  expected: %s", err, fault.DoubleConsumptionAttempt)
	}
}

func TestConsumeRace(t *testing.T) {
	n, s := newNotary(t)
	defer s.Close()

	version := digest.NewDigest([]byte("contended version"))

	const racers = 8
	winners := 0

	var countLock sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < racers; i += 1 {
		wg.Add(1)
		transitionId := digest.NewDigest([]byte(fmt.Sprintf("transition %d", i)))
		go func(id digest.Digest) {
			defer wg.Done()
			err := n.Consume(version, id)
			if nil == err {
				countLock.Lock()
				winners += 1
				countLock.Unlock()
			} else if fault.DoubleConsumptionAttempt != err {
				t.Errorf("consume error: %s", err)
			}
		}(transitionId)
	}
	wg.Wait()

	if 1 != winners {
		t.Fatalf("winners: %d  expected: 1", winners)
	}
}
