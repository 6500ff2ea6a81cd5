// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notary - single-authority double-consumption guard
//
// a consumed record version can never be consumed again; the notary
// records which transition claimed each version and refuses any later
// claim by a different transition. retries of the same transition are
// idempotent
package notary

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/store"
)

// Notary - the consumption authority
type Notary struct {
	sync.Mutex
	log  *logger.L
	pool *store.Pool
}

// New - a notary over the given consumed pool
func New(pool *store.Pool) *Notary {
	return &Notary{
		log:  logger.New("notary"),
		pool: pool,
	}
}

// Consume - claim a record version for a transition
//
// the check and the write are under one lock so two racing
// transitions cannot both claim the same version
func (n *Notary) Consume(versionId digest.Digest, byTransition digest.Digest) error {
	n.Lock()
	defer n.Unlock()

	existing, err := n.pool.Get(versionId[:])
	if nil != err {
		return err
	}
	if nil != existing {
		var winner digest.Digest
		err = digest.FromBytes(&winner, existing)
		if nil != err {
			return err
		}
		if winner == byTransition {
			return nil // a retry of the winning transition
		}
		n.log.Warnf("double consumption of %#v attempted by %#v", versionId, byTransition)
		return fault.DoubleConsumptionAttempt
	}

	return n.pool.Put(versionId[:], byTransition[:])
}

// IsConsumed - whether any transition has claimed the version
func (n *Notary) IsConsumed(versionId digest.Digest) (bool, error) {
	return n.pool.Has(versionId[:])
}
