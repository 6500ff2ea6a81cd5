// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// Pool - one key space inside the database
//
// each pool owns a single byte prefix so unrelated key spaces can
// share one leveldb file
type Pool struct {
	prefix   byte
	database *leveldb.DB
}

// Element - a binary key/value pair returned by a scan
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *Pool) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value pair
func (p *Pool) Put(key []byte, value []byte) error {
	return p.database.Put(p.prefixKey(key), value, nil)
}

// Get - read the value for a key, nil if the key is absent
func (p *Pool) Get(key []byte) ([]byte, error) {
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	if nil != err {
		return nil, err
	}
	return value, nil
}

// Has - check if a key exists
func (p *Pool) Has(key []byte) (bool, error) {
	return p.database.Has(p.prefixKey(key), nil)
}

// Scan - all elements whose key starts with the given bytes
//
// keys are returned without the pool prefix; values are copied so
// they stay valid after the iterator is released
func (p *Pool) Scan(keyPrefix []byte) ([]Element, error) {
	iter := p.database.NewIterator(ldb_util.BytesPrefix(p.prefixKey(keyPrefix)), nil)
	defer iter.Release()

	elements := []Element{}
	for iter.Next() {
		key := make([]byte, len(iter.Key())-1)
		copy(key, iter.Key()[1:])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		elements = append(elements, Element{Key: key, Value: value})
	}
	return elements, iter.Error()
}

// add the pool's puts for one record to a batch
func (p *Pool) batchPut(batch *leveldb.Batch, key []byte, value []byte) {
	batch.Put(p.prefixKey(key), value)
}
