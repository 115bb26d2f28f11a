// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/registry"
)

const (
	rateLimitRegistry = 200
	rateBurstRegistry = 100
)

// Registry - deployment registry RPC calls
type Registry struct {
	log      *logger.L
	limiter  *rate.Limiter
	registry *registry.Registry
}

func newRegistry(log *logger.L, reg *registry.Registry) *Registry {
	return &Registry{
		log:      log,
		limiter:  rate.NewLimiter(rateLimitRegistry, rateBurstRegistry),
		registry: reg,
	}
}

// PredictArguments - content for address prediction
type PredictArguments struct {
	Content []byte `json:"content"`
}

// PredictReply - where the content would be staged
type PredictReply struct {
	Address     address.Address `json:"address"`
	ContentHash merkle.Digest   `json:"contentHash"`
	Exists      bool            `json:"exists"`
}

// Predict - the address staged content will occupy
func (r *Registry) Predict(arguments *PredictArguments, reply *PredictReply) error {
	if err := rateLimit(r.limiter); nil != err {
		return err
	}
	addr, contentHash := r.registry.Predict(arguments.Content)
	reply.Address = addr
	reply.ContentHash = contentHash
	reply.Exists = r.registry.Exists(contentHash)
	return nil
}

// PredictAddressArguments - salt and code hash for address prediction
type PredictAddressArguments struct {
	Salt     address.Salt  `json:"salt"`
	CodeHash merkle.Digest `json:"codeHash"`
}

// PredictAddressReply - the deterministic deployment address
type PredictAddressReply struct {
	Address  address.Address `json:"address"`
	Deployed bool            `json:"deployed"`
}

// PredictAddress - the address a deterministic deployment will occupy
func (r *Registry) PredictAddress(arguments *PredictAddressArguments, reply *PredictAddressReply) error {
	if err := rateLimit(r.limiter); nil != err {
		return err
	}
	addr := r.registry.PredictAddress(arguments.Salt, arguments.CodeHash)
	reply.Address = addr
	reply.Deployed = r.registry.IsDeployed(addr)
	return nil
}

// ChunkArguments - content hash to look up
type ChunkArguments struct {
	ContentHash merkle.Digest `json:"contentHash"`
}

// ChunkReply - the recorded chunk mapping
type ChunkReply struct {
	Chunk registry.Chunk `json:"chunk"`
}

// Chunk - the chunk mapping for a content hash
func (r *Registry) Chunk(arguments *ChunkArguments, reply *ChunkReply) error {
	if err := rateLimit(r.limiter); nil != err {
		return err
	}
	chunk, err := r.registry.ChunkAt(arguments.ContentHash)
	if nil != err {
		return err
	}
	reply.Chunk = chunk
	return nil
}

// FeesArguments - empty arguments for the fee totals
type FeesArguments struct{}

// FeesReply - fee accounting totals
type FeesReply struct {
	Collected uint64 `json:"collected,string"`
}

// Fees - collected fee total
func (r *Registry) Fees(_ *FeesArguments, reply *FeesReply) error {
	if err := rateLimit(r.limiter); nil != err {
		return err
	}
	reply.Collected = r.registry.Collected()
	return nil
}
