// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
	"github.com/routemark-network/routemarkd/fault"
)

// Transaction - an atomic update spanning any number of pools
//
// writes are collected in a batch and land together on Commit or not
// at all on Abort; reads inside the transaction observe its own
// uncommitted writes through the cache
//
// only one transaction can be open at a time - mutation is strictly
// serial by construction
type transaction struct {
	batch *leveldb.Batch
	cache Cache
	db    *leveldb.DB
}

// Transaction - the transaction operations
type Transaction interface {
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Has(*PoolHandle, []byte) bool
	Commit() error
	Abort()
}

// NewTransaction - open the single transaction slot
func NewTransaction() (Transaction, error) {
	poolData.Lock()
	defer poolData.Unlock()

	if nil == poolData.db {
		return nil, fault.ErrNotInitialised
	}
	if nil != poolData.trx {
		return nil, fault.ErrTransactionInUse
	}

	t := &transaction{
		batch: new(leveldb.Batch),
		cache: poolData.cache,
		db:    poolData.db,
	}
	poolData.trx = t
	return t, nil
}

func (t *transaction) Put(p *PoolHandle, key []byte, value []byte) {
	prefixedKey := p.prefixKey(key)
	t.cache.Set(dbPut, string(prefixedKey), value)
	t.batch.Put(prefixedKey, value)
}

func (t *transaction) PutN(p *PoolHandle, key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	t.Put(p, key, buffer)
}

func (t *transaction) Delete(p *PoolHandle, key []byte) {
	prefixedKey := p.prefixKey(key)
	t.cache.Set(dbDelete, string(prefixedKey), nil)
	t.batch.Delete(prefixedKey)
}

func (t *transaction) Get(p *PoolHandle, key []byte) []byte {
	prefixedKey := p.prefixKey(key)
	if value, found := t.cache.Get(string(prefixedKey)); found {
		return value
	}
	value, err := t.db.Get(prefixedKey, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("transaction.Get", err)
	return value
}

func (t *transaction) GetN(p *PoolHandle, key []byte) (uint64, bool) {
	buffer := t.Get(p, key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("transaction.GetN truncated record for: %x: %s", key, buffer)
	}
	return binary.BigEndian.Uint64(buffer[:8]), true
}

func (t *transaction) Has(p *PoolHandle, key []byte) bool {
	prefixedKey := p.prefixKey(key)
	if op, found := t.cache.Op(string(prefixedKey)); found {
		return dbPut == op
	}
	has, err := t.db.Has(prefixedKey, nil)
	logger.PanicIfError("transaction.Has", err)
	return has
}

// Commit - write the whole batch to the database
//
// a failed write also drops the batch's values from the cache so a
// later transaction cannot read data that never reached the database
func (t *transaction) Commit() error {
	err := t.db.Write(t.batch, nil)
	if nil != err {
		t.cache.Clear()
	}
	t.release()
	return err
}

// Abort - discard every pending write
func (t *transaction) Abort() {
	t.batch.Reset()
	t.cache.Clear()
	t.release()
}

func (t *transaction) release() {
	poolData.Lock()
	if t == poolData.trx {
		poolData.trx = nil
	}
	poolData.Unlock()
}
