// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/route"
	"github.com/routemark-network/routemarkd/storage"
)

// handler index: handler → route keys, with a slot map so removal is a
// swap with the final element rather than a scan
//
// callers hold the table lock

func (t *Table) bind(key route.Key, handler address.Address) {
	keys := t.byHandler[handler]
	t.keySlot[key] = len(keys)
	t.byHandler[handler] = append(keys, key)
}

func (t *Table) unbind(key route.Key, handler address.Address) {
	keys := t.byHandler[handler]
	slot, ok := t.keySlot[key]
	if !ok || slot >= len(keys) || keys[slot] != key {
		return
	}

	last := len(keys) - 1
	if slot != last {
		keys[slot] = keys[last]
		t.keySlot[keys[slot]] = slot
	}
	keys = keys[:last]
	delete(t.keySlot, key)

	if 0 == len(keys) {
		delete(t.byHandler, handler)
	} else {
		t.byHandler[handler] = keys
	}
}

// writeIndex - persist one handler's key list inside an open transaction
//
// stored as the concatenation of its fixed width keys; an empty list
// deletes the record
func (t *Table) writeIndex(trx storage.Transaction, handler address.Address) {
	keys := t.byHandler[handler]
	if 0 == len(keys) {
		trx.Delete(t.indexPool, handler[:])
		return
	}
	buffer := make([]byte, 0, len(keys)*route.KeyLength)
	for _, key := range keys {
		buffer = append(buffer, key[:]...)
	}
	trx.Put(t.indexPool, handler[:], buffer)
}
