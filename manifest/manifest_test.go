// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manifest_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/handler"
	"github.com/routemark-network/routemarkd/identity"
	"github.com/routemark-network/routemarkd/manifest"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/route"
)

func buildDocument(t *testing.T, handlers int, keysPerHandler int) *manifest.Document {
	doc := &manifest.Document{Version: manifest.Version}
	for i := 0; i < handlers; i += 1 {
		code := []byte{byte(i), 'c', 'o', 'd', 'e'}
		var addr address.Address
		addr[0] = byte(i + 1)
		keys := make([]route.Key, keysPerHandler)
		for k := 0; k < keysPerHandler; k += 1 {
			keys[k] = route.Key{byte(i + 1), byte(k + 1)}
		}
		doc.Handlers = append(doc.Handlers, manifest.HandlerSpec{
			Handler:     addr,
			Fingerprint: handler.Fingerprint(code),
			RouteKeys:   keys,
			Active:      true,
			Priority:    i,
			Budget:      1000,
		})
	}
	return doc
}

// every leaf of a built document verifies against its root
func TestRoundTrip(t *testing.T) {
	doc := buildDocument(t, 7, 3)
	doc.Seal()

	entries := doc.Entries()
	assert.Len(t, entries, 21, "entry count")

	for i, entry := range entries {
		proof, directions, err := doc.Proof(i)
		assert.NoError(t, err, "proof %d", i)
		err = merkle.VerifyOrdered(entry.LeafDigest(), proof, directions, doc.Root)
		assert.NoError(t, err, "leaf %d verifies", i)
	}
}

func TestInactiveHandlersExcluded(t *testing.T) {
	doc := buildDocument(t, 3, 2)
	doc.Handlers[1].Active = false
	doc.Seal()

	entries := doc.Entries()
	assert.Len(t, entries, 4, "only active handlers")
	for _, entry := range entries {
		assert.NotEqual(t, doc.Handlers[1].Handler, entry.Handler, "inactive excluded")
	}
}

func TestSignAndVerify(t *testing.T) {
	signer, privateKey, err := identity.New()
	assert.NoError(t, err, "identity")

	doc := buildDocument(t, 2, 2)
	assert.NoError(t, doc.Sign(privateKey), "sign")
	assert.Equal(t, signer, doc.Signer, "signer recorded")
	assert.NoError(t, doc.Verify(), "verify")

	// document survives a wire round trip
	buffer, err := json.Marshal(doc)
	assert.NoError(t, err, "marshal")
	var decoded manifest.Document
	assert.NoError(t, json.Unmarshal(buffer, &decoded), "unmarshal")
	assert.NoError(t, decoded.Verify(), "verify decoded")
}

func TestVerifyDetectsTampering(t *testing.T) {
	_, privateKey, err := identity.New()
	assert.NoError(t, err, "identity")

	doc := buildDocument(t, 2, 2)
	assert.NoError(t, doc.Sign(privateKey), "sign")

	// any change after signing must be caught
	doc.Handlers[0].Priority = 99
	err = doc.Verify()
	assert.Equal(t, fault.ErrInvalidSignature, err, "tampered content")

	doc.Handlers[0].Priority = 0
	assert.NoError(t, doc.Verify(), "restored document verifies")

	doc.Root[0] ^= 0xff
	assert.Equal(t, fault.ErrProofVerificationFailed, doc.Verify(), "tampered root")
}

func TestVerifyRejectsUnsigned(t *testing.T) {
	doc := buildDocument(t, 1, 1)
	doc.Seal()
	assert.Equal(t, fault.ErrInvalidSignature, doc.Verify(), "missing signature")

	doc.Version = 99
	assert.True(t, fault.IsErrValidation(doc.Verify()), "wrong version")
}
