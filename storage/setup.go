// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/routemark-network/routemarkd/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	ManifestState *PoolHandle `prefix:"M"`
	ConsumedRoots *PoolHandle `prefix:"C"`
	Routes        *PoolHandle `prefix:"R"`
	StagedRoutes  *PoolHandle `prefix:"S"`
	HandlerIndex  *PoolHandle `prefix:"H"`
	Chunks        *PoolHandle `prefix:"K"`
	Deployments   *PoolHandle `prefix:"D"`
	FeeLedger     *PoolHandle `prefix:"F"`
	TestData      *PoolHandle `prefix:"Z"`
}

// Pool - the set of exported pools
var Pool pools

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

// current schema version
const currentDBVersion = 0x100

// holds the database handle
var poolData struct {
	sync.RWMutex
	db    *leveldb.DB
	cache Cache
	trx   *transaction
}

// Initialise - open up the database connection
//
// this must be called before any pool is accessed
func Initialise(database string) error {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.db {
		return fault.ErrAlreadyInitialised
	}

	db, version, err := openDB(database)
	if nil != err {
		return err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		db.Close()
		return fault.ErrStorageDowngrade
	}

	// new database, record the current version
	if 0 == version {
		versionValue := make([]byte, 8)
		binary.BigEndian.PutUint64(versionValue, currentDBVersion)
		if err := db.Put(versionKey, versionValue, nil); nil != err {
			db.Close()
			return err
		}
		version = currentDBVersion
	}

	// placeholder for future schema migrations: any older version
	// would be upgraded here before the pools become visible
	if version < currentDBVersion {
		db.Close()
		return fault.ProcessErrorf("no migration path from schema version: 0x%x to: 0x%x", version, currentDBVersion)
	}

	poolData.db = db
	poolData.cache = newCache()
	poolData.trx = nil

	// this will be a struct type
	poolType := reflect.TypeOf(Pool)
	poolValue := reflect.ValueOf(&Pool).Elem()

	for i := 0; i < poolType.NumField(); i += 1 {
		fieldInfo := poolType.Field(i)
		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return fault.ProcessErrorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}
		p := &PoolHandle{
			prefix:   prefixTag[0],
			database: db,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	return nil
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()

	if nil == poolData.db {
		return
	}

	poolData.db.Close()
	poolData.db = nil
	poolData.cache = nil
	poolData.trx = nil

	// clear the pool handles
	poolValue := reflect.ValueOf(&Pool).Elem()
	for i := 0; i < poolValue.NumField(); i += 1 {
		poolValue.Field(i).Set(reflect.Zero(poolValue.Field(i).Type()))
	}
}

// open the database file and read its version
func openDB(name string) (*leveldb.DB, uint64, error) {

	db, err := leveldb.OpenFile(name, &ldb_opt.Options{})
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	}
	if nil != err {
		db.Close()
		return nil, 0, err
	}
	if 8 != len(versionValue) {
		db.Close()
		return nil, 0, fault.ProcessErrorf("incompatible database version length: %d", len(versionValue))
	}

	return db, binary.BigEndian.Uint64(versionValue), nil
}
