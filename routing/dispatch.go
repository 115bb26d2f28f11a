// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/route"
)

// Dispatch - forward a payload to the handler bound to a route key
//
// unknown keys fail closed and a frozen instance refuses every
// dispatch regardless of the lookup result; the handler runs
// synchronously and its result is returned unmodified up to the
// result size ceiling
func (t *Table) Dispatch(key route.Key, payload []byte) ([]byte, error) {
	t.RLock()
	if t.state.frozen {
		t.RUnlock()
		return nil, fault.ErrFrozen
	}
	entry, ok := t.routeMap[key]
	t.RUnlock()

	if !ok {
		return nil, fault.ErrUnknownRoute
	}

	h, err := t.resolver.HandlerAt(entry.Handler)
	if nil != err {
		return nil, err
	}

	result, err := h.Invoke(payload)
	if nil != err {
		return nil, err
	}
	if len(result) > MaximumResultSize {
		return nil, fault.ErrResultTooLarge
	}
	return result, nil
}
