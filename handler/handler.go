// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package handler - executable code units behind route keys
//
// a handler is anything that can answer a dispatched payload; the
// deployed form is a Lua chunk executed in a fresh interpreter per
// invocation
package handler

import (
	"github.com/routemark-network/routemarkd/merkle"
)

// Handler - the capability a route key resolves to
type Handler interface {
	Invoke(payload []byte) ([]byte, error)
}

// Fingerprint - the code fingerprint of a handler's runtime code
//
// recorded in the manifest at registration and re-checked at apply
// and activate time to detect substitution
func Fingerprint(code []byte) merkle.Digest {
	return merkle.NewDigest(code)
}
