// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"time"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/route"
)

// Snapshot - a consistent copy of the manifest state
type Snapshot struct {
	ActiveRoot   merkle.Digest `json:"activeRoot"`
	ActiveEpoch  uint64        `json:"activeEpoch"`
	PendingRoot  merkle.Digest `json:"pendingRoot"`
	PendingEpoch uint64        `json:"pendingEpoch"`
	PendingSince time.Time     `json:"pendingSince"`
	GraceWindow  time.Duration `json:"graceWindow"`
	MaxBatchSize int           `json:"maxBatchSize"`
	Frozen       bool          `json:"frozen"`
	Routes       int           `json:"routes"`
	Staged       int           `json:"staged"`
}

// State - snapshot of the manifest state
func (t *Table) State() Snapshot {
	t.RLock()
	defer t.RUnlock()
	return Snapshot{
		ActiveRoot:   t.state.activeRoot,
		ActiveEpoch:  t.state.activeEpoch,
		PendingRoot:  t.state.pendingRoot,
		PendingEpoch: t.state.pendingEpoch,
		PendingSince: t.state.pendingSince,
		GraceWindow:  t.state.graceWindow,
		MaxBatchSize: t.state.maxBatchSize,
		Frozen:       t.state.frozen,
		Routes:       len(t.routeMap),
		Staged:       len(t.staged),
	}
}

// Resolve - the route entry bound to a key
func (t *Table) Resolve(key route.Key) (route.Entry, error) {
	t.RLock()
	defer t.RUnlock()

	entry, ok := t.routeMap[key]
	if !ok {
		return route.Entry{}, fault.ErrUnknownRoute
	}
	return entry, nil
}

// Handlers - every handler with at least one bound route key
func (t *Table) Handlers() []address.Address {
	t.RLock()
	defer t.RUnlock()

	handlers := make([]address.Address, 0, len(t.byHandler))
	for handler := range t.byHandler {
		handlers = append(handlers, handler)
	}
	return handlers
}

// RoutesFor - the route keys bound to one handler
func (t *Table) RoutesFor(handler address.Address) []route.Key {
	t.RLock()
	defer t.RUnlock()

	keys := t.byHandler[handler]
	result := make([]route.Key, len(keys))
	copy(result, keys)
	return result
}

// IsConsumed - true if a root was activated at some point
func (t *Table) IsConsumed(root merkle.Digest) bool {
	t.RLock()
	defer t.RUnlock()
	return t.consumedPool.Has(root[:])
}
