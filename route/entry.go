// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package route

import (
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/merkle"
)

// Entry - one manifest route
//
// only valid while the runtime code at Handler hashes to Fingerprint
type Entry struct {
	Key         Key             `json:"key"`
	Handler     address.Address `json:"handler"`
	Fingerprint merkle.Digest   `json:"fingerprint"`
}

// packed entry layout: key ‖ handler ‖ fingerprint
const packedEntryLength = KeyLength + address.Length + merkle.DigestLength

// LeafDigest - the merkle leaf for this entry
func (entry Entry) LeafDigest() merkle.Digest {
	return merkle.NewDigest(entry.Pack())
}

// Pack - canonical binary form of an entry
func (entry Entry) Pack() []byte {
	buffer := make([]byte, 0, packedEntryLength)
	buffer = append(buffer, entry.Key[:]...)
	buffer = append(buffer, entry.Handler[:]...)
	buffer = append(buffer, entry.Fingerprint[:]...)
	return buffer
}

// Unpack - rebuild an entry from its canonical binary form
func Unpack(buffer []byte) (Entry, error) {
	var entry Entry
	if packedEntryLength != len(buffer) {
		return entry, fault.ValidationErrorf("packed route entry length: %d  expected: %d", len(buffer), packedEntryLength)
	}
	copy(entry.Key[:], buffer[:KeyLength])
	copy(entry.Handler[:], buffer[KeyLength:KeyLength+address.Length])
	copy(entry.Fingerprint[:], buffer[KeyLength+address.Length:])
	return entry, nil
}
