// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - ed25519 caller identities
//
// roles are granted to identities and manifest documents are signed
// by them; identities are passed explicitly with every mutating call
// rather than taken from any ambient environment
package identity

import (
	"crypto/rand"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
)

// Length - number of bytes in an identity
const Length = ed25519.PublicKeySize

// Identity - an ed25519 public key
//
// displayed as base58 text
type Identity [Length]byte

// New - generate a fresh identity and its private key
func New() (Identity, ed25519.PrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return Identity{}, nil, err
	}
	return FromPublicKey(publicKey), privateKey, nil
}

// FromPublicKey - wrap an ed25519 public key
func FromPublicKey(publicKey ed25519.PublicKey) Identity {
	var id Identity
	copy(id[:], publicKey)
	return id
}

// FromPrivateKey - the identity owning a private key
func FromPrivateKey(privateKey ed25519.PrivateKey) Identity {
	return FromPublicKey(privateKey.Public().(ed25519.PublicKey))
}

// PublicKey - the underlying ed25519 public key
func (id Identity) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(id[:])
}

// Verify - check a signature made by this identity
func (id Identity) Verify(message []byte, signature []byte) bool {
	if ed25519.SignatureSize != len(signature) {
		return false
	}
	return ed25519.Verify(id.PublicKey(), message, signature)
}

// Address - the deployment address form of this identity
//
// used as the registry identity of an instance
func (id Identity) Address() address.Address {
	return address.FromPublicKey(id[:])
}

// IsZero - true if the identity is unset
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// String - base58 representation for use by the fmt package (for %s)
func (id Identity) String() string {
	return base58.Encode(id[:])
}

// MarshalText - convert identity to base58 text
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(base58.Encode(id[:])), nil
}

// UnmarshalText - convert base58 text into an identity
func (id *Identity) UnmarshalText(s []byte) error {
	buffer, err := base58.Decode(string(s))
	if nil != err {
		return fault.ErrInvalidIdentity
	}
	if Length != len(buffer) {
		return fault.ErrInvalidIdentity
	}
	copy(id[:], buffer)
	return nil
}

// FromString - parse a base58 identity
func FromString(s string) (Identity, error) {
	var id Identity
	err := id.UnmarshalText([]byte(s))
	return id, err
}
