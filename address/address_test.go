// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address_test

import (
	"testing"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/merkle"
)

// derivation is a pure function: same inputs, same address, always
func TestDeterministicDerivation(t *testing.T) {

	registry := address.FromPublicKey([]byte("registry public key"))

	var salt address.Salt
	copy(salt[:], []byte("some salt value for the deploy.."))
	codeHash := merkle.NewDigest([]byte("code"))

	a1 := address.FromSalt(registry, salt, codeHash)
	a2 := address.FromSalt(registry, salt, codeHash)
	if a1 != a2 {
		t.Errorf("FromSalt not deterministic: %s != %s", a1, a2)
	}

	// any input change must move the address
	otherSalt := salt
	otherSalt[0] ^= 0x01
	if a1 == address.FromSalt(registry, otherSalt, codeHash) {
		t.Error("salt change did not change address")
	}
	if a1 == address.FromSalt(registry, salt, merkle.NewDigest([]byte("other"))) {
		t.Error("code hash change did not change address")
	}
	otherRegistry := address.FromPublicKey([]byte("other registry"))
	if a1 == address.FromSalt(otherRegistry, salt, codeHash) {
		t.Error("registry change did not change address")
	}
}

func TestContentAddress(t *testing.T) {

	registry := address.FromPublicKey([]byte("registry"))
	contentHash := merkle.NewDigest([]byte("content"))

	a1 := address.FromContent(registry, contentHash)
	a2 := address.FromContent(registry, contentHash)
	if a1 != a2 {
		t.Errorf("FromContent not deterministic: %s != %s", a1, a2)
	}
	if a1 == address.FromSalt(registry, address.Salt{}, contentHash) {
		t.Error("content and deploy derivations collide")
	}
}

func TestAddressText(t *testing.T) {

	a := address.FromPublicKey([]byte("text round trip"))

	text, err := a.MarshalText()
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}

	var back address.Address
	if err := back.UnmarshalText(text); nil != err {
		t.Fatalf("unmarshal error: %s", err)
	}
	if back != a {
		t.Errorf("round trip mismatch: %s != %s", back, a)
	}

	if err := back.UnmarshalText([]byte("!!not base58!!")); nil == err {
		t.Error("invalid base58 was accepted")
	}
	if err := back.UnmarshalText([]byte("3yZe7d")); nil == err {
		t.Error("short address was accepted")
	}
}
