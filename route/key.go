// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package route - fixed width route keys and manifest route entries
package route

import (
	"encoding/hex"

	"github.com/routemark-network/routemarkd/fault"
)

// KeyLength - number of bytes in a route key
const KeyLength = 8

// Key - fixed width identifier selecting which handler answers a request
//
// displayed as hex
type Key [KeyLength]byte

// KeyFromBytes - convert and validate a binary byte slice to a key
func KeyFromBytes(key *Key, buffer []byte) error {
	if KeyLength != len(buffer) {
		return fault.ErrNotARouteKey
	}
	copy(key[:], buffer)
	return nil
}

// KeyFromString - parse a hex route key
func KeyFromString(s string) (Key, error) {
	var key Key
	err := key.UnmarshalText([]byte(s))
	return key, err
}

// String - hex representation for use by the fmt package (for %s)
func (key Key) String() string {
	return hex.EncodeToString(key[:])
}

// GoString - representation for use by the fmt package (for %#v)
func (key Key) GoString() string {
	return "<route:" + hex.EncodeToString(key[:]) + ">"
}

// MarshalText - convert key to hex text
func (key Key) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(KeyLength))
	hex.Encode(buffer, key[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a key
func (key *Key) UnmarshalText(s []byte) error {
	if KeyLength != hex.DecodedLen(len(s)) {
		return fault.ErrNotARouteKey
	}
	if _, err := hex.Decode(key[:], s); nil != err {
		return fault.ErrNotARouteKey
	}
	return nil
}
