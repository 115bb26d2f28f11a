// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/binary"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/merkle"
)

// domain separation tag for content hashing
var chunkTag = []byte("chunk")

// ContentHash - the hash identifying staged content
//
// hash("chunk" ‖ hash(content)) so a content hash can never be
// confused with a plain digest of the same bytes
func ContentHash(content []byte) merkle.Digest {
	inner := merkle.NewDigest(content)
	buffer := make([]byte, 0, len(chunkTag)+merkle.DigestLength)
	buffer = append(buffer, chunkTag...)
	buffer = append(buffer, inner[:]...)
	return merkle.NewDigest(buffer)
}

// CodeHash - the hash binding code and constructor arguments
//
// the code length is hashed in first so moving bytes across the
// code/arguments boundary always changes the hash
func CodeHash(code []byte, arguments []byte) merkle.Digest {
	length := make([]byte, 8)
	binary.BigEndian.PutUint64(length, uint64(len(code)))
	buffer := make([]byte, 0, 8+len(code)+len(arguments))
	buffer = append(buffer, length...)
	buffer = append(buffer, code...)
	buffer = append(buffer, arguments...)
	return merkle.NewDigest(buffer)
}

// PredictContent - the address staged content will occupy
//
// pure computation: no instance state is read and nothing is deployed
func PredictContent(registry address.Address, content []byte) (address.Address, merkle.Digest) {
	contentHash := ContentHash(content)
	return address.FromContent(registry, contentHash), contentHash
}

// PredictAddress - the address a deterministic deployment will occupy
//
// independent instances sharing a registry identity resolve the same
// salt and code hash to the same address; this is a property of the
// derivation, verified off-chain before submission, never a runtime
// coordination protocol
func PredictAddress(registry address.Address, salt address.Salt, codeHash merkle.Digest) address.Address {
	return address.FromSalt(registry, salt, codeHash)
}

// Predict - prediction against this registry's identity
func (r *Registry) Predict(content []byte) (address.Address, merkle.Digest) {
	return PredictContent(r.id, content)
}

// PredictAddress - prediction against this registry's identity
func (r *Registry) PredictAddress(salt address.Salt, codeHash merkle.Digest) address.Address {
	return PredictAddress(r.id, salt, codeHash)
}
