// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity_test

import (
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/routemark-network/routemarkd/identity"
)

func TestSignVerify(t *testing.T) {

	id, privateKey, err := identity.New()
	if nil != err {
		t.Fatalf("generate error: %s", err)
	}

	message := []byte("manifest canonical bytes")
	signature := ed25519.Sign(privateKey, message)

	if !id.Verify(message, signature) {
		t.Error("valid signature rejected")
	}
	if id.Verify([]byte("other message"), signature) {
		t.Error("signature accepted for wrong message")
	}
	if id.Verify(message, signature[:16]) {
		t.Error("truncated signature accepted")
	}

	other, _, err := identity.New()
	if nil != err {
		t.Fatalf("generate error: %s", err)
	}
	if other.Verify(message, signature) {
		t.Error("signature accepted by wrong identity")
	}
}

func TestIdentityText(t *testing.T) {

	id, privateKey, err := identity.New()
	if nil != err {
		t.Fatalf("generate error: %s", err)
	}

	if identity.FromPrivateKey(privateKey) != id {
		t.Error("FromPrivateKey mismatch")
	}

	back, err := identity.FromString(id.String())
	if nil != err {
		t.Fatalf("parse error: %s", err)
	}
	if back != id {
		t.Errorf("round trip mismatch: %s != %s", back, id)
	}

	if _, err := identity.FromString("short"); nil == err {
		t.Error("short identity was accepted")
	}
}

// the address form is stable and distinct per identity
func TestIdentityAddress(t *testing.T) {

	id1, _, _ := identity.New()
	id2, _, _ := identity.New()

	if id1.Address() != id1.Address() {
		t.Error("address derivation not stable")
	}
	if id1.Address() == id2.Address() {
		t.Error("distinct identities share an address")
	}
}
