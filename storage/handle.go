// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - direct access to one prefixed region of the database
type PoolHandle struct {
	prefix   byte
	database *leveldb.DB
}

// Element - a binary key/value pair
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
//
// writes through the shared cache so a later transaction reading the
// same key sees this value and not a stale cached one
func (p *PoolHandle) Put(key []byte, value []byte) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		logger.Panic("pool.Put nil database")
		return
	}
	prefixedKey := p.prefixKey(key)
	err := p.database.Put(prefixedKey, value, nil)
	logger.PanicIfError("pool.Put", err)
	poolData.cache.Set(dbPut, string(prefixedKey), value)
}

// PutN - store a uint64 value
func (p *PoolHandle) PutN(key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	p.Put(key, buffer)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) {
	poolData.RLock()
	defer poolData.RUnlock()
	prefixedKey := p.prefixKey(key)
	err := p.database.Delete(prefixedKey, nil)
	logger.PanicIfError("pool.Delete", err)
	poolData.cache.Set(dbDelete, string(prefixedKey), nil)
}

// Get - read a value for a given key
//
// this returns the actual element - copy the result if it must be preserved
func (p *PoolHandle) Get(key []byte) []byte {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return nil
	}
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
//
// second parameter is false if record was not found
// panics if not 8 (or more) bytes in the record
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("pool.GetN truncated record for: %x: %s", key, buffer)
	}
	return binary.BigEndian.Uint64(buffer[:8]), true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return false
	}
	value, err := p.database.Has(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Has", err)
	return value
}

// Range - iterate all elements of a pool in key order
//
// the callback returns false to stop early; keys and values are only
// valid during the callback - copy them if they must be preserved
func (p *PoolHandle) Range(f func(key []byte, value []byte) bool) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return
	}

	iter := p.database.NewIterator(ldb_util.BytesPrefix([]byte{p.prefix}), nil)
	defer iter.Release()

	for iter.Next() {
		if !f(iter.Key()[1:], iter.Value()) {
			break
		}
	}
}
