// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package routing - versioned route table with a timelocked upgrade protocol
//
// the table maps fixed width route keys to handler addresses and is
// only changed through the commit, apply, activate sequence:
//
//	commit    record the merkle root of a planned manifest and start
//	          the activation clock
//	apply     verify individual route entries against the pending root
//	          and write them into the table
//	activate  after the timelock has elapsed, re-verify the code behind
//	          every staged key and promote the pending root to active
//
// an activated root is consumed and can never be activated again; the
// frozen flag stops dispatch but never the upgrade protocol itself
package routing

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/handler"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/route"
	"github.com/routemark-network/routemarkd/storage"
)

// hard limits
const (
	// most route keys that can be staged between one commit and its
	// activation
	MaximumStagedRoutes = 4096

	// largest handler result dispatch will pass back
	MaximumResultSize = 1048576
)

// CodeResolver - the registry surface the routing table depends on
//
// fingerprints are checked at apply and again at activate to catch
// code substitution between the two stages
type CodeResolver interface {
	CodeFingerprint(address.Address) (merkle.Digest, error)
	HandlerAt(address.Address) (handler.Handler, error)
}

// tableState - the persisted manifest state
type tableState struct {
	activeRoot   merkle.Digest
	activeEpoch  uint64
	pendingRoot  merkle.Digest
	pendingEpoch uint64
	pendingSince time.Time
	graceWindow  time.Duration
	maxBatchSize int
	frozen       bool
}

// Table - one instance's routing table
type Table struct {
	sync.RWMutex
	log             *logger.L
	grants          *access.Grants
	resolver        CodeResolver
	activationDelay time.Duration
	nowFunc         func() time.Time

	statePool    *storage.PoolHandle
	consumedPool *storage.PoolHandle
	routesPool   *storage.PoolHandle
	indexPool    *storage.PoolHandle
	stagedPool   *storage.PoolHandle

	state tableState

	// in-memory mirror of the persisted table for dispatch and views
	routeMap  map[route.Key]route.Entry
	byHandler map[address.Address][]route.Key
	keySlot   map[route.Key]int

	staged    []route.Key
	stagedSet map[route.Key]struct{}
}

// New - open the routing table over its storage pools
//
// reloads the persisted manifest state and route map so a restart
// resumes exactly where the previous process stopped
func New(grants *access.Grants, resolver CodeResolver, activationDelay time.Duration, statePool *storage.PoolHandle, consumedPool *storage.PoolHandle, routesPool *storage.PoolHandle, indexPool *storage.PoolHandle, stagedPool *storage.PoolHandle) (*Table, error) {
	t := &Table{
		log:             logger.New("routing"),
		grants:          grants,
		resolver:        resolver,
		activationDelay: activationDelay,
		nowFunc:         time.Now,
		statePool:       statePool,
		consumedPool:    consumedPool,
		routesPool:      routesPool,
		indexPool:       indexPool,
		stagedPool:      stagedPool,
		routeMap:        make(map[route.Key]route.Entry),
		byHandler:       make(map[address.Address][]route.Key),
		keySlot:         make(map[route.Key]int),
		stagedSet:       make(map[route.Key]struct{}),
	}
	if err := t.load(); nil != err {
		return nil, err
	}
	return t, nil
}

// key under which the single state record lives
var stateKey = []byte("state")

// packed state record layout:
//
//	activeRoot(32) ‖ activeEpoch(8) ‖ pendingRoot(32) ‖ pendingEpoch(8)
//	‖ pendingSince(8) ‖ graceWindow(8) ‖ maxBatchSize(8) ‖ frozen(1)
const packedStateLength = 2*merkle.DigestLength + 5*8 + 1

func packState(s tableState) []byte {
	buffer := make([]byte, packedStateLength)
	n := copy(buffer, s.activeRoot[:])
	binary.BigEndian.PutUint64(buffer[n:], s.activeEpoch)
	n += 8
	n += copy(buffer[n:], s.pendingRoot[:])
	binary.BigEndian.PutUint64(buffer[n:], s.pendingEpoch)
	n += 8
	binary.BigEndian.PutUint64(buffer[n:], uint64(s.pendingSince.Unix()))
	n += 8
	binary.BigEndian.PutUint64(buffer[n:], uint64(s.graceWindow))
	n += 8
	binary.BigEndian.PutUint64(buffer[n:], uint64(s.maxBatchSize))
	n += 8
	if s.frozen {
		buffer[n] = 1
	}
	return buffer
}

func unpackState(buffer []byte) (tableState, error) {
	var s tableState
	if packedStateLength != len(buffer) {
		return s, fault.ProcessErrorf("corrupt manifest state: length: %d  expected: %d", len(buffer), packedStateLength)
	}
	n := copy(s.activeRoot[:], buffer)
	s.activeEpoch = binary.BigEndian.Uint64(buffer[n:])
	n += 8
	n += copy(s.pendingRoot[:], buffer[n:])
	s.pendingEpoch = binary.BigEndian.Uint64(buffer[n:])
	n += 8
	s.pendingSince = time.Unix(int64(binary.BigEndian.Uint64(buffer[n:])), 0).UTC()
	n += 8
	s.graceWindow = time.Duration(binary.BigEndian.Uint64(buffer[n:]))
	n += 8
	s.maxBatchSize = int(binary.BigEndian.Uint64(buffer[n:]))
	n += 8
	s.frozen = 0 != buffer[n]
	return s, nil
}

// load - rebuild the in-memory table from storage
func (t *Table) load() error {

	if buffer := t.statePool.Get(stateKey); nil != buffer {
		state, err := unpackState(buffer)
		if nil != err {
			return err
		}
		t.state = state
	} else {
		t.state = tableState{
			graceWindow:  access.DefaultGraceWindow,
			maxBatchSize: access.DefaultBatchSize,
		}
		t.statePool.Put(stateKey, packState(t.state))
	}

	var rangeErr error
	t.routesPool.Range(func(key []byte, value []byte) bool {
		entry, err := route.Unpack(value)
		if nil != err {
			rangeErr = err
			return false
		}
		t.routeMap[entry.Key] = entry
		t.bind(entry.Key, entry.Handler)
		return true
	})
	if nil != rangeErr {
		return rangeErr
	}

	// the staged set survives a restart between apply and activate so
	// the activation re-verification still covers every applied key
	t.stagedPool.Range(func(key []byte, value []byte) bool {
		var stagedKey route.Key
		if err := route.KeyFromBytes(&stagedKey, key); nil != err {
			rangeErr = err
			return false
		}
		t.staged = append(t.staged, stagedKey)
		t.stagedSet[stagedKey] = struct{}{}
		return true
	})
	if nil != rangeErr {
		return rangeErr
	}

	t.log.Infof("loaded: %d routes  staged: %d  active epoch: %d", len(t.routeMap), len(t.staged), t.state.activeEpoch)
	return nil
}

// writeState - persist the state record inside an open transaction
func (t *Table) writeState(trx storage.Transaction) {
	trx.Put(t.statePool, stateKey, packState(t.state))
}

// hasPending - true while a commit is awaiting activation
func (s tableState) hasPending() bool {
	return 0 != s.pendingEpoch
}

// purgeStaged - delete the persisted staged keys inside an open
// transaction; the in-memory set is dropped only after a successful
// commit via clearStaged
func (t *Table) purgeStaged(trx storage.Transaction) {
	for _, key := range t.staged {
		trx.Delete(t.stagedPool, key[:])
	}
}

// clearStaged - drop the in-memory staged key set
func (t *Table) clearStaged() {
	t.staged = t.staged[:0]
	t.stagedSet = make(map[route.Key]struct{})
}
