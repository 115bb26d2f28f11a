// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/storage/mocks"
)

// test database file
const databaseFileName = "test.leveldb"

func removeFiles() {
	os.RemoveAll(databaseFileName)
}

func setup(t *testing.T) {
	removeFiles()
	if err := Initialise(databaseFileName); nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	Finalise()
	removeFiles()
}

func TestPoolPutGetDelete(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := Pool.TestData

	key := []byte("key-one")
	p.Put(key, []byte("value-one"))

	assert.Equal(t, []byte("value-one"), p.Get(key), "get after put")
	assert.True(t, p.Has(key), "has after put")

	p.Delete(key)
	assert.Nil(t, p.Get(key), "get after delete")
	assert.False(t, p.Has(key), "has after delete")
}

// pools with different prefixes never see each other's keys
func TestPoolIsolation(t *testing.T) {
	setup(t)
	defer teardown(t)

	key := []byte("shared-key")
	Pool.Routes.Put(key, []byte("route"))
	Pool.Chunks.Put(key, []byte("chunk"))

	assert.Equal(t, []byte("route"), Pool.Routes.Get(key), "routes pool")
	assert.Equal(t, []byte("chunk"), Pool.Chunks.Get(key), "chunks pool")

	Pool.Routes.Delete(key)
	assert.Nil(t, Pool.Routes.Get(key), "routes pool after delete")
	assert.Equal(t, []byte("chunk"), Pool.Chunks.Get(key), "chunks pool unaffected")
}

func TestPoolRange(t *testing.T) {
	setup(t)
	defer teardown(t)

	expected := map[string]string{
		"a": "1",
		"b": "2",
		"c": "3",
	}
	for k, v := range expected {
		Pool.TestData.Put([]byte(k), []byte(v))
	}
	Pool.Routes.Put([]byte("x"), []byte("other pool"))

	actual := map[string]string{}
	Pool.TestData.Range(func(key []byte, value []byte) bool {
		actual[string(key)] = string(value)
		return true
	})
	assert.Equal(t, expected, actual, "ranged elements")
}

func TestTransactionCommit(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := NewTransaction()
	assert.NoError(t, err, "new transaction")

	trx.Put(Pool.Routes, []byte("r1"), []byte("h1"))
	trx.PutN(Pool.FeeLedger, []byte("alice"), 42)

	// uncommitted writes are invisible to direct reads
	assert.Nil(t, Pool.Routes.Get([]byte("r1")), "dirty read")

	// but visible inside the transaction
	assert.Equal(t, []byte("h1"), trx.Get(Pool.Routes, []byte("r1")), "read your writes")
	n, found := trx.GetN(Pool.FeeLedger, []byte("alice"))
	assert.True(t, found, "read your writes numeric")
	assert.Equal(t, uint64(42), n, "numeric value")

	assert.NoError(t, trx.Commit(), "commit")

	assert.Equal(t, []byte("h1"), Pool.Routes.Get([]byte("r1")), "read after commit")
	n, found = Pool.FeeLedger.GetN([]byte("alice"))
	assert.True(t, found, "numeric after commit")
	assert.Equal(t, uint64(42), n, "numeric value after commit")
}

func TestTransactionAbort(t *testing.T) {
	setup(t)
	defer teardown(t)

	Pool.Routes.Put([]byte("keep"), []byte("original"))

	trx, err := NewTransaction()
	assert.NoError(t, err, "new transaction")

	trx.Put(Pool.Routes, []byte("discard"), []byte("value"))
	trx.Delete(Pool.Routes, []byte("keep"))

	// the pending delete reads as gone inside the transaction
	assert.Nil(t, trx.Get(Pool.Routes, []byte("keep")), "pending delete")

	trx.Abort()

	assert.Nil(t, Pool.Routes.Get([]byte("discard")), "aborted put")
	assert.Equal(t, []byte("original"), Pool.Routes.Get([]byte("keep")), "aborted delete")
}

// only one transaction may be open
func TestTransactionSingleWriter(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := NewTransaction()
	assert.NoError(t, err, "first transaction")

	_, err = NewTransaction()
	assert.Equal(t, fault.ErrTransactionInUse, err, "second transaction")

	trx.Abort()

	trx, err = NewTransaction()
	assert.NoError(t, err, "transaction after abort")
	trx.Abort()
}

// a database written by a newer binary must be refused
func TestVersionDowngrade(t *testing.T) {
	setup(t)

	Finalise()

	// raise the stored version above the current one
	db, version, err := openDB(databaseFileName)
	assert.NoError(t, err, "reopen")
	assert.Equal(t, uint64(currentDBVersion), version, "current version")
	future := make([]byte, 8)
	binary.BigEndian.PutUint64(future, currentDBVersion+1)
	assert.NoError(t, db.Put(versionKey, future, nil), "write version")
	db.Close()

	err = Initialise(databaseFileName)
	assert.Equal(t, fault.ErrStorageDowngrade, err, "downgrade")
	assert.True(t, fault.IsErrProcess(err), "error class")

	removeFiles()
}

// direct pool writes go through the shared cache so a later
// transaction reads current data, not a value cached by an earlier
// transaction
func TestTransactionSeesDirectWrite(t *testing.T) {
	setup(t)
	defer teardown(t)

	key := []byte("balance")

	trx, err := NewTransaction()
	assert.NoError(t, err, "first transaction")
	trx.PutN(Pool.FeeLedger, key, 90)
	assert.NoError(t, trx.Commit(), "commit")

	// written outside any transaction
	Pool.FeeLedger.PutN(key, 140)

	trx, err = NewTransaction()
	assert.NoError(t, err, "second transaction")
	n, found := trx.GetN(Pool.FeeLedger, key)
	assert.True(t, found, "key present")
	assert.Equal(t, uint64(140), n, "direct write visible")
	assert.NoError(t, trx.Commit(), "empty commit")

	// deleted outside any transaction
	Pool.FeeLedger.Delete(key)

	trx, err = NewTransaction()
	assert.NoError(t, err, "third transaction")
	defer trx.Abort()
	assert.False(t, trx.Has(Pool.FeeLedger, key), "direct delete visible")
	assert.Nil(t, trx.Get(Pool.FeeLedger, key), "no stale value")
}

// a key deleted earlier in the same transaction reads as gone
func TestTransactionDeleteThenHas(t *testing.T) {
	setup(t)
	defer teardown(t)

	key := []byte("doomed")
	Pool.Routes.Put(key, []byte("value"))

	trx, err := NewTransaction()
	assert.NoError(t, err, "new transaction")
	defer trx.Abort()

	assert.True(t, trx.Has(Pool.Routes, key), "present before delete")
	trx.Delete(Pool.Routes, key)
	assert.False(t, trx.Has(Pool.Routes, key), "gone after delete")
	assert.Nil(t, trx.Get(Pool.Routes, key), "get after delete")
}

// a failed batch write must not leave its values readable through the
// shared cache
func TestFailedCommitDoesNotPoisonCache(t *testing.T) {
	setup(t)
	defer teardown(t)

	// a second database, closed so its writes fail
	const brokenFileName = "test-broken.leveldb"
	os.RemoveAll(brokenFileName)
	broken, _, err := openDB(brokenFileName)
	assert.NoError(t, err, "open second database")
	broken.Close()
	defer os.RemoveAll(brokenFileName)

	key := []byte("phantom")

	poolData.Lock()
	trx := &transaction{
		batch: new(leveldb.Batch),
		cache: poolData.cache,
		db:    broken,
	}
	poolData.trx = trx
	poolData.Unlock()

	trx.Put(Pool.Routes, key, []byte("never landed"))
	assert.Error(t, trx.Commit(), "write to closed database")

	// the next transaction must not read the value that never landed
	next, err := NewTransaction()
	assert.NoError(t, err, "next transaction")
	defer next.Abort()
	assert.Nil(t, next.Get(Pool.Routes, key), "value purged")
	assert.False(t, next.Has(Pool.Routes, key), "key purged")
}

// transaction reads must consult the cache before the database
func TestTransactionReadsCacheFirst(t *testing.T) {
	setup(t)
	defer teardown(t)

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	mockCache := mocks.NewMockCache(ctl)
	mockCache.EXPECT().Get(gomock.Any()).Return([]byte("cached"), true).Times(1)

	poolData.Lock()
	realCache := poolData.cache
	poolData.cache = mockCache
	poolData.Unlock()
	defer func() {
		poolData.Lock()
		poolData.cache = realCache
		poolData.Unlock()
	}()

	trx, err := NewTransaction()
	assert.NoError(t, err, "new transaction")
	defer trx.Abort()

	mockCache.EXPECT().Clear().AnyTimes()

	value := trx.Get(Pool.Routes, []byte("never-written"))
	assert.Equal(t, []byte("cached"), value, "cache hit bypasses database")
}
