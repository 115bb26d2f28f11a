// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/messagebus"
	"github.com/routemark-network/routemarkd/route"
	"github.com/routemark-network/routemarkd/storage"
)

// AppliedEvent - payload of a routes-applied event
type AppliedEvent struct {
	Root  merkle.Digest `json:"root"`
	Epoch uint64        `json:"epoch"`
	Count int           `json:"count"`
}

// BindEvent - payload of route-bound and route-unbound events
type BindEvent struct {
	Key     route.Key       `json:"key"`
	Handler address.Address `json:"handler"`
}

// Apply - verify a batch of route entries against the pending root and
// write them into the table
//
// all-or-nothing: the first failing entry aborts the batch and leaves
// the route map byte for byte unchanged; accepted keys join the staged
// set for re-verification at activation
func (t *Table) Apply(ctx access.Context, entries []route.Entry, proofs [][]merkle.Digest, directions [][]bool) error {
	if err := t.grants.Check(ctx, access.Apply); nil != err {
		return err
	}

	t.Lock()
	defer t.Unlock()

	if !t.state.hasPending() {
		return fault.ErrNoPendingRoot
	}
	if 0 == len(entries) {
		return fault.ErrEmptyBatch
	}
	if len(entries) != len(proofs) || len(entries) != len(directions) {
		return fault.ErrEntryCountMismatch
	}
	if len(entries) > t.state.maxBatchSize {
		return fault.ErrBatchTooLarge
	}

	// duplicate keys inside one batch are always a manifest bug
	seen := make(map[route.Key]struct{}, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.Key]; ok {
			return fault.ErrDuplicateRouteKey
		}
		seen[entry.Key] = struct{}{}
	}

	// staged set is bounded over the whole commit window
	fresh := 0
	for _, entry := range entries {
		if _, ok := t.stagedSet[entry.Key]; !ok {
			fresh += 1
		}
	}
	if len(t.staged)+fresh > MaximumStagedRoutes {
		return fault.ErrStagedSetOverflow
	}

	// verify everything before writing anything
	for i, entry := range entries {
		if err := merkle.VerifyOrdered(entry.LeafDigest(), proofs[i], directions[i], t.state.pendingRoot); nil != err {
			t.log.Warnf("apply: proof failed for key: %s: %s", entry.Key, err)
			return err
		}
		live, err := t.resolver.CodeFingerprint(entry.Handler)
		if nil != err {
			return err
		}
		if live != entry.Fingerprint {
			t.log.Warnf("apply: fingerprint mismatch for key: %s  declared: %s  live: %s", entry.Key, entry.Fingerprint, live)
			return fault.ErrCodeFingerprintMismatch
		}
	}

	trx, err := storage.NewTransaction()
	if nil != err {
		return err
	}

	previous := make(map[route.Key]route.Entry, len(entries))
	unbound := make([]BindEvent, 0, len(entries))

	for _, entry := range entries {
		old, had := t.routeMap[entry.Key]
		if had {
			previous[entry.Key] = old
			t.unbind(entry.Key, old.Handler)
			if old.Handler != entry.Handler {
				unbound = append(unbound, BindEvent{Key: entry.Key, Handler: old.Handler})
			}
		}
		t.routeMap[entry.Key] = entry
		t.bind(entry.Key, entry.Handler)

		trx.Put(t.routesPool, entry.Key[:], entry.Pack())
		t.writeIndex(trx, entry.Handler)
		if had && old.Handler != entry.Handler {
			t.writeIndex(trx, old.Handler)
		}

		// staged keys persist with the routes so a restart between
		// apply and activate keeps the re-verification set intact
		if _, ok := t.stagedSet[entry.Key]; !ok {
			trx.Put(t.stagedPool, entry.Key[:], []byte{1})
		}
	}

	if err := trx.Commit(); nil != err {
		t.restoreMirror(entries, previous)
		return err
	}

	for _, entry := range entries {
		if _, ok := t.stagedSet[entry.Key]; !ok {
			t.stagedSet[entry.Key] = struct{}{}
			t.staged = append(t.staged, entry.Key)
		}
	}

	t.log.Infof("applied: %d routes against root: %s", len(entries), t.state.pendingRoot)
	messagebus.Send(messagebus.TopicRoutesApplied, AppliedEvent{
		Root:  t.state.pendingRoot,
		Epoch: t.state.pendingEpoch,
		Count: len(entries),
	})
	for _, entry := range entries {
		messagebus.Send(messagebus.TopicRouteBound, BindEvent{Key: entry.Key, Handler: entry.Handler})
	}
	for _, event := range unbound {
		messagebus.Send(messagebus.TopicRouteUnbound, event)
	}
	return nil
}

// restoreMirror - put the in-memory table back after a failed storage
// commit so it keeps matching the untouched persistent table
func (t *Table) restoreMirror(entries []route.Entry, previous map[route.Key]route.Entry) {
	for _, entry := range entries {
		t.unbind(entry.Key, entry.Handler)
		delete(t.routeMap, entry.Key)
		if old, had := previous[entry.Key]; had {
			t.routeMap[old.Key] = old
			t.bind(old.Key, old.Handler)
		}
	}
}
