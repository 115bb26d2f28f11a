// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address - deterministic deployment addresses
//
// an address is a pure function of the registry identity and the
// hashed inputs, never of deployment order or prior state; two
// instances sharing a registry identity resolve identical inputs to
// identical addresses without any communication
package address

import (
	"github.com/mr-tron/base58"

	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/merkle"
)

// Length - number of bytes in an address
const Length = 20

// Address - a deployment address
//
// displayed as base58 text
type Address [Length]byte

// domain separation tags for address derivation
var (
	contentTag = []byte("content")
	deployTag  = []byte("deploy")
)

// FromPublicKey - derive the address of an identity public key
//
// the trailing bytes of the key digest
func FromPublicKey(publicKey []byte) Address {
	d := merkle.NewDigest(publicKey)
	var a Address
	copy(a[:], d[merkle.DigestLength-Length:])
	return a
}

// FromContent - derive the content address for a staged chunk
//
// depends only on the registry identity and the content hash
func FromContent(registry Address, contentHash merkle.Digest) Address {
	buffer := make([]byte, 0, len(contentTag)+Length+merkle.DigestLength)
	buffer = append(buffer, contentTag...)
	buffer = append(buffer, registry[:]...)
	buffer = append(buffer, contentHash[:]...)
	d := merkle.NewDigest(buffer)

	var a Address
	copy(a[:], d[merkle.DigestLength-Length:])
	return a
}

// FromSalt - derive the deterministic deployment address
//
// depends only on the registry identity, the salt and the code hash
func FromSalt(registry Address, salt Salt, codeHash merkle.Digest) Address {
	buffer := make([]byte, 0, len(deployTag)+Length+SaltLength+merkle.DigestLength)
	buffer = append(buffer, deployTag...)
	buffer = append(buffer, registry[:]...)
	buffer = append(buffer, salt[:]...)
	buffer = append(buffer, codeHash[:]...)
	d := merkle.NewDigest(buffer)

	var a Address
	copy(a[:], d[merkle.DigestLength-Length:])
	return a
}

// IsZero - true if the address is unset
func (address Address) IsZero() bool {
	return address == Address{}
}

// String - base58 representation for use by the fmt package (for %s)
func (address Address) String() string {
	return base58.Encode(address[:])
}

// GoString - representation for use by the fmt package (for %#v)
func (address Address) GoString() string {
	return "<address:" + base58.Encode(address[:]) + ">"
}

// MarshalText - convert address to base58 text
func (address Address) MarshalText() ([]byte, error) {
	return []byte(base58.Encode(address[:])), nil
}

// UnmarshalText - convert base58 text into an address
func (address *Address) UnmarshalText(s []byte) error {
	buffer, err := base58.Decode(string(s))
	if nil != err {
		return fault.ErrInvalidAddress
	}
	if Length != len(buffer) {
		return fault.ErrInvalidAddress
	}
	copy(address[:], buffer)
	return nil
}

// FromString - parse a base58 address
func FromString(s string) (Address, error) {
	var a Address
	err := a.UnmarshalText([]byte(s))
	return a, err
}

// FromBytes - convert and validate a binary byte slice to an address
func FromBytes(address *Address, buffer []byte) error {
	if Length != len(buffer) {
		return fault.ErrInvalidAddress
	}
	copy(address[:], buffer)
	return nil
}
