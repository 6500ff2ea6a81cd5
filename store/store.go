// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store - the per-participant version store
//
// every record version a node holds is kept forever; a superseded
// version stays retrievable by its version id, only the latest pointer
// moves. key spaces:
//
//	V  version id        → packed record
//	L  linear id         → version id of the latest version
//	H  linear id ‖ version id → (empty) version history
//	R  pre-auth linear id ‖ receipt version id → (empty) receipt index
//	C  version id        → transition id that consumed it
package store

import (
	"time"

	"github.com/bitmark-inc/logger"
	gocache "github.com/patrickmn/go-cache"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/mediclaim/mediclaimd/digest"
	"github.com/mediclaim/mediclaimd/fault"
	"github.com/mediclaim/mediclaimd/record"
)

// read cache tuning
const (
	cacheExpiry  = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Store - one participant's record database
type Store struct {
	log      *logger.L
	database *leveldb.DB

	versions *Pool // V: immutable packed versions
	latest   *Pool // L: linear id to current version id
	history  *Pool // H: every version id ever held per linear id
	receipts *Pool // R: receipts settling a pre-authorization
	consumed *Pool // C: versions claimed by a finalized transition

	cache *gocache.Cache // latest packed version by linear id
}

// New - open (creating if needed) the database file
func New(databaseFile string) (*Store, error) {
	database, err := leveldb.OpenFile(databaseFile, nil)
	if nil != err {
		return nil, err
	}
	return assemble(database), nil
}

// NewEphemeral - a memory-backed store for tests
func NewEphemeral() (*Store, error) {
	database, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	return assemble(database), nil
}

func assemble(database *leveldb.DB) *Store {
	return &Store{
		log:      logger.New("store"),
		database: database,
		versions: &Pool{prefix: 'V', database: database},
		latest:   &Pool{prefix: 'L', database: database},
		history:  &Pool{prefix: 'H', database: database},
		receipts: &Pool{prefix: 'R', database: database},
		consumed: &Pool{prefix: 'C', database: database},
		cache:    gocache.New(cacheExpiry, cacheCleanup),
	}
}

// Close - release the database
func (s *Store) Close() error {
	return s.database.Close()
}

// ConsumedPool - the key space recording consumed versions
//
// handed to the notary, which owns its semantics
func (s *Store) ConsumedPool() *Pool {
	return s.consumed
}

// Save - persist a record version and move the latest pointer
//
// all key spaces are updated in one batch so a crash cannot leave a
// latest pointer at a version that was never stored
func (s *Store) Save(item record.Record) (digest.Digest, error) {
	packed, err := item.Pack()
	if nil != err {
		return digest.Digest{}, err
	}
	versionId := packed.MakeVersionId()
	linearId := item.GetLinearId()

	// a version already stored was finalized earlier; a replayed save
	// must never move the latest pointer back to it
	stored, err := s.versions.Has(versionId[:])
	if nil != err {
		return digest.Digest{}, err
	}
	if stored {
		s.log.Debugf("version %#v already stored", versionId)
		return versionId, nil
	}

	batch := new(leveldb.Batch)
	s.versions.batchPut(batch, versionId[:], packed)
	s.latest.batchPut(batch, linearId[:], versionId[:])

	historyKey := append(append([]byte{}, linearId[:]...), versionId[:]...)
	s.history.batchPut(batch, historyKey, []byte{})

	if receipt, ok := item.(*record.PaymentReceipt); ok {
		referenceKey := append(append([]byte{}, receipt.PreAuthorizationId[:]...), versionId[:]...)
		s.receipts.batchPut(batch, referenceKey, []byte{})
	}

	err = s.database.Write(batch, nil)
	if nil != err {
		return digest.Digest{}, err
	}

	s.cache.Set(linearId.String(), packed, gocache.DefaultExpiration)
	s.log.Debugf("saved %s version %#v", linearId, versionId)
	return versionId, nil
}

// HasVersion - whether a version is already stored
func (s *Store) HasVersion(versionId digest.Digest) (bool, error) {
	return s.versions.Has(versionId[:])
}

// VersionById - load one immutable version
func (s *Store) VersionById(versionId digest.Digest) (record.Record, error) {
	packed, err := s.versions.Get(versionId[:])
	if nil != err {
		return nil, err
	}
	if nil == packed {
		return nil, fault.RecordNotFound
	}
	item, _, err := record.Packed(packed).Unpack()
	return item, err
}

// LatestByLinearId - the current version of a logical record
func (s *Store) LatestByLinearId(linearId record.LinearId) (record.Record, digest.Digest, error) {
	if cached, ok := s.cache.Get(linearId.String()); ok {
		packed := cached.(record.Packed)
		item, _, err := record.Packed(packed).Unpack()
		if nil == err {
			return item, packed.MakeVersionId(), nil
		}
		// fall through to the database on a bad cache entry
	}

	versionBytes, err := s.latest.Get(linearId[:])
	if nil != err {
		return nil, digest.Digest{}, err
	}
	if nil == versionBytes {
		return nil, digest.Digest{}, fault.RecordNotFound
	}

	var versionId digest.Digest
	err = digest.FromBytes(&versionId, versionBytes)
	if nil != err {
		return nil, digest.Digest{}, err
	}

	packed, err := s.versions.Get(versionId[:])
	if nil != err {
		return nil, digest.Digest{}, err
	}
	if nil == packed {
		return nil, digest.Digest{}, fault.RecordNotFound
	}

	item, _, err := record.Packed(packed).Unpack()
	if nil != err {
		return nil, digest.Digest{}, err
	}
	s.cache.Set(linearId.String(), record.Packed(packed), gocache.DefaultExpiration)
	return item, versionId, nil
}

// IsCurrent - true if the version is the latest of its linear id
func (s *Store) IsCurrent(item record.Record, versionId digest.Digest) (bool, error) {
	linearId := item.GetLinearId()
	versionBytes, err := s.latest.Get(linearId[:])
	if nil != err {
		return false, err
	}
	if nil == versionBytes {
		return false, nil
	}
	var current digest.Digest
	err = digest.FromBytes(&current, versionBytes)
	if nil != err {
		return false, err
	}
	return current == versionId, nil
}

// History - every version id ever held for a linear id, oldest order
// not guaranteed
func (s *Store) History(linearId record.LinearId) ([]digest.Digest, error) {
	elements, err := s.history.Scan(linearId[:])
	if nil != err {
		return nil, err
	}
	versionIds := make([]digest.Digest, 0, len(elements))
	for _, element := range elements {
		if digest.Length+record.LinearIdLength != len(element.Key) {
			continue
		}
		var versionId digest.Digest
		copy(versionId[:], element.Key[record.LinearIdLength:])
		versionIds = append(versionIds, versionId)
	}
	return versionIds, nil
}

// ByReference - all receipts that settle against a pre-authorization
func (s *Store) ByReference(preAuthorizationId record.LinearId) ([]*record.PaymentReceipt, error) {
	elements, err := s.receipts.Scan(preAuthorizationId[:])
	if nil != err {
		return nil, err
	}

	receipts := make([]*record.PaymentReceipt, 0, len(elements))
	for _, element := range elements {
		if digest.Length+record.LinearIdLength != len(element.Key) {
			continue
		}
		var versionId digest.Digest
		copy(versionId[:], element.Key[record.LinearIdLength:])

		item, err := s.VersionById(versionId)
		if nil != err {
			return nil, err
		}
		receipt, ok := item.(*record.PaymentReceipt)
		if !ok {
			return nil, fault.WrongRecordKind
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}
