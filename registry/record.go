// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/binary"
	"time"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/merkle"
)

// Chunk - mapping of staged content to its address
//
// created once per unique content and never deleted
type Chunk struct {
	ContentHash merkle.Digest   `json:"contentHash"`
	Address     address.Address `json:"address"`
	Size        uint64          `json:"size"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Deployment - an immutable code unit at an address
type Deployment struct {
	Address   address.Address `json:"address"`
	CodeHash  merkle.Digest   `json:"codeHash"`
	Salt      address.Salt    `json:"salt"`
	CreatedAt time.Time       `json:"createdAt"`
	Code      []byte          `json:"-"`
}

// chunk record: address ‖ size ‖ createdAt
const packedChunkLength = address.Length + 8 + 8

func packChunk(c Chunk) []byte {
	buffer := make([]byte, packedChunkLength)
	copy(buffer, c.Address[:])
	binary.BigEndian.PutUint64(buffer[address.Length:], c.Size)
	binary.BigEndian.PutUint64(buffer[address.Length+8:], uint64(c.CreatedAt.Unix()))
	return buffer
}

func unpackChunk(contentHash merkle.Digest, buffer []byte) (Chunk, error) {
	if packedChunkLength != len(buffer) {
		return Chunk{}, fault.ProcessErrorf("corrupt chunk record: length: %d  expected: %d", len(buffer), packedChunkLength)
	}
	c := Chunk{
		ContentHash: contentHash,
		Size:        binary.BigEndian.Uint64(buffer[address.Length:]),
		CreatedAt:   time.Unix(int64(binary.BigEndian.Uint64(buffer[address.Length+8:])), 0).UTC(),
	}
	copy(c.Address[:], buffer[:address.Length])
	return c, nil
}

// deployment record: codeHash ‖ salt ‖ createdAt ‖ code
const packedDeploymentHeader = merkle.DigestLength + address.SaltLength + 8

func packDeployment(d Deployment) []byte {
	buffer := make([]byte, packedDeploymentHeader, packedDeploymentHeader+len(d.Code))
	copy(buffer, d.CodeHash[:])
	copy(buffer[merkle.DigestLength:], d.Salt[:])
	binary.BigEndian.PutUint64(buffer[merkle.DigestLength+address.SaltLength:], uint64(d.CreatedAt.Unix()))
	return append(buffer, d.Code...)
}

func unpackDeployment(addr address.Address, buffer []byte) (Deployment, error) {
	if len(buffer) < packedDeploymentHeader {
		return Deployment{}, fault.ProcessErrorf("corrupt deployment record: length: %d  minimum: %d", len(buffer), packedDeploymentHeader)
	}
	d := Deployment{
		Address:   addr,
		CreatedAt: time.Unix(int64(binary.BigEndian.Uint64(buffer[merkle.DigestLength+address.SaltLength:])), 0).UTC(),
	}
	copy(d.CodeHash[:], buffer[:merkle.DigestLength])
	copy(d.Salt[:], buffer[merkle.DigestLength:])
	code := buffer[packedDeploymentHeader:]
	d.Code = make([]byte, len(code))
	copy(d.Code, code)
	return d, nil
}
