// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - content addressed deployment of handler code
//
// staging and deterministic deployment both resolve to addresses that
// are pure functions of the registry identity and the hashed inputs,
// so restaging identical content is a no-op and independent instances
// sharing an identity converge on identical addresses
package registry

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/handler"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/storage"
)

// limits for a single mutating call
const (
	// hard ceiling on one deployed code unit, rejected before any
	// deployment work happens
	MaximumCodeSize = 24576

	// most items in one batch call
	MaximumBatchItems = 64

	// aggregate code bytes in one batch call
	MaximumBatchCode = 262144
)

// Registry - one instance's deployment registry
type Registry struct {
	sync.RWMutex
	log         *logger.L
	id          address.Address
	grants      *access.Grants
	schedule    FeeSchedule
	chunks      *storage.PoolHandle
	deployments *storage.PoolHandle
	fees        *storage.PoolHandle
	nowFunc     func() time.Time
}

// New - create a registry over its storage pools
//
// a nil fee schedule disables fee collection
func New(id address.Address, grants *access.Grants, schedule FeeSchedule, chunks *storage.PoolHandle, deployments *storage.PoolHandle, fees *storage.PoolHandle) *Registry {
	return &Registry{
		log:         logger.New("registry"),
		id:          id,
		grants:      grants,
		schedule:    schedule,
		chunks:      chunks,
		deployments: deployments,
		fees:        fees,
		nowFunc:     time.Now,
	}
}

// Identity - the registry identity all addresses derive from
func (r *Registry) Identity() address.Address {
	return r.id
}

// Exists - true if content with this hash has been staged
func (r *Registry) Exists(contentHash merkle.Digest) bool {
	r.RLock()
	defer r.RUnlock()
	return r.chunks.Has(contentHash[:])
}

// IsDeployed - true if code is present at an address
func (r *Registry) IsDeployed(addr address.Address) bool {
	r.RLock()
	defer r.RUnlock()
	return r.deployments.Has(addr[:])
}

// ChunkAt - the chunk mapping for a content hash
func (r *Registry) ChunkAt(contentHash merkle.Digest) (Chunk, error) {
	r.RLock()
	defer r.RUnlock()

	buffer := r.chunks.Get(contentHash[:])
	if nil == buffer {
		return Chunk{}, fault.ErrUnknownChunk
	}
	return unpackChunk(contentHash, buffer)
}

// DeploymentAt - the deployment record at an address
func (r *Registry) DeploymentAt(addr address.Address) (Deployment, error) {
	r.RLock()
	defer r.RUnlock()

	buffer := r.deployments.Get(addr[:])
	if nil == buffer {
		return Deployment{}, fault.ErrUnknownDeployment
	}
	return unpackDeployment(addr, buffer)
}

// CodeFingerprint - fingerprint of the live code at an address
//
// the routing table calls this at apply and at activate to detect
// code substitution between the two stages
func (r *Registry) CodeFingerprint(addr address.Address) (merkle.Digest, error) {
	r.RLock()
	defer r.RUnlock()

	buffer := r.deployments.Get(addr[:])
	if nil == buffer {
		return merkle.Digest{}, fault.ErrUnknownHandler
	}
	deployment, err := unpackDeployment(addr, buffer)
	if nil != err {
		return merkle.Digest{}, err
	}
	return handler.Fingerprint(deployment.Code), nil
}

// HandlerAt - an invocable handler for the code at an address
func (r *Registry) HandlerAt(addr address.Address) (handler.Handler, error) {
	r.RLock()
	defer r.RUnlock()

	buffer := r.deployments.Get(addr[:])
	if nil == buffer {
		return nil, fault.ErrUnknownHandler
	}
	deployment, err := unpackDeployment(addr, buffer)
	if nil != err {
		return nil, err
	}
	return handler.NewLua(deployment.Code), nil
}
