// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package manifest - the signed document a planner submits
//
// a manifest describes the complete desired routing and deployment
// state: which handlers exist, which route keys each one answers, and
// the chunk mappings backing them; the merkle root over its route
// leaves is what gets committed to the routing table and the per leaf
// proofs are what apply verifies
package manifest

import (
	"encoding/json"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/identity"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/route"
)

// Version - current document version
const Version = 1

// HandlerSpec - one handler and the route keys it answers
type HandlerSpec struct {
	Handler     address.Address `json:"handler"`
	Fingerprint merkle.Digest   `json:"fingerprint"`
	RouteKeys   []route.Key     `json:"routeKeys"`
	Active      bool            `json:"active"`
	Priority    int             `json:"priority"`
	Budget      uint64          `json:"budget"`
}

// ChunkSpec - one staged content mapping
type ChunkSpec struct {
	ContentHash merkle.Digest   `json:"contentHash"`
	Address     address.Address `json:"address"`
	Size        uint64          `json:"size"`
	CreatedAt   time.Time       `json:"createdAt"`
	Verified    bool            `json:"verified"`
}

// Document - a complete manifest
//
// Root must equal the merkle root over Entries() and Signature must be
// the signer's ed25519 signature over CanonicalBytes()
type Document struct {
	Version   uint64            `json:"version"`
	Signer    identity.Identity `json:"signer"`
	Handlers  []HandlerSpec     `json:"handlers"`
	Chunks    []ChunkSpec       `json:"chunks"`
	Root      merkle.Digest     `json:"root"`
	Signature []byte            `json:"signature,omitempty"`
}

// Entries - the route entries of all active handlers in document order
//
// inactive handlers contribute no leaves: deactivation is expressed by
// omitting a handler's keys from the next manifest
func (doc *Document) Entries() []route.Entry {
	entries := make([]route.Entry, 0, len(doc.Handlers))
	for _, h := range doc.Handlers {
		if !h.Active {
			continue
		}
		for _, key := range h.RouteKeys {
			entries = append(entries, route.Entry{
				Key:         key,
				Handler:     h.Handler,
				Fingerprint: h.Fingerprint,
			})
		}
	}
	return entries
}

// Leaves - the merkle leaves in document order
func (doc *Document) Leaves() []merkle.Digest {
	entries := doc.Entries()
	leaves := make([]merkle.Digest, len(entries))
	for i, entry := range entries {
		leaves[i] = entry.LeafDigest()
	}
	return leaves
}

// ComputeRoot - the merkle root over all route leaves
func (doc *Document) ComputeRoot() merkle.Digest {
	return merkle.Root(doc.Leaves())
}

// Seal - record the computed root in the document
func (doc *Document) Seal() {
	doc.Root = doc.ComputeRoot()
}

// Proof - sibling path and direction bits for one entry
//
// the index counts entries in document order, matching Entries()
func (doc *Document) Proof(index int) ([]merkle.Digest, []bool, error) {
	return merkle.Proof(doc.Leaves(), index)
}

// CanonicalBytes - the deterministic encoding covered by the signature
func (doc *Document) CanonicalBytes() ([]byte, error) {
	unsigned := *doc
	unsigned.Signature = nil
	return json.Marshal(&unsigned)
}

// Sign - seal the root and sign the canonical encoding
func (doc *Document) Sign(privateKey ed25519.PrivateKey) error {
	doc.Seal()
	doc.Signer = identity.FromPrivateKey(privateKey)
	buffer, err := doc.CanonicalBytes()
	if nil != err {
		return err
	}
	doc.Signature = ed25519.Sign(privateKey, buffer)
	return nil
}

// Verify - check the recorded root and the signature
func (doc *Document) Verify() error {
	if Version != doc.Version {
		return fault.ValidationErrorf("manifest version: %d  expected: %d", doc.Version, Version)
	}
	if doc.Root != doc.ComputeRoot() {
		return fault.ErrProofVerificationFailed
	}
	if doc.Signer.IsZero() || 0 == len(doc.Signature) {
		return fault.ErrInvalidSignature
	}
	buffer, err := doc.CanonicalBytes()
	if nil != err {
		return err
	}
	if !doc.Signer.Verify(buffer, doc.Signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}
