// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"bytes"

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/handler"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/messagebus"
	"github.com/routemark-network/routemarkd/storage"
)

// DeployItem - one element of a deterministic batch deployment
type DeployItem struct {
	Salt      address.Salt
	Code      []byte
	Arguments []byte
}

// DeployedEvent - payload of a contract-deployed event
type DeployedEvent struct {
	Address  address.Address `json:"address"`
	CodeHash merkle.Digest   `json:"codeHash"`
	Salt     address.Salt    `json:"salt"`
}

// DeployDeterministic - deploy code at its salt derived address
//
// the address is a pure function of (registry identity, salt, code
// hash) and independent of deployment order or prior state; deploying
// the same inputs twice returns the same address without re-running
// the initialisation step
func (r *Registry) DeployDeterministic(ctx access.Context, salt address.Salt, code []byte, arguments []byte) (address.Address, error) {
	if err := r.grants.Check(ctx, access.Commit); nil != err {
		return address.Address{}, err
	}

	r.Lock()
	defer r.Unlock()

	trx, err := storage.NewTransaction()
	if nil != err {
		return address.Address{}, err
	}

	addr, deployed, err := r.deploy(trx, ctx, salt, code, arguments)
	if nil != err {
		trx.Abort()
		return address.Address{}, err
	}
	if err := trx.Commit(); nil != err {
		return address.Address{}, err
	}

	if deployed {
		messagebus.Send(messagebus.TopicContractDeployed, DeployedEvent{
			Address:  addr,
			CodeHash: CodeHash(code, arguments),
			Salt:     salt,
		})
	}
	return addr, nil
}

// DeployDeterministicBatch - batch variant with identical per-item guarantees
//
// the full fee for every item is reserved up front and the unused
// remainder refunded in the same transaction, so an overestimate can
// never be lost to a partial failure
func (r *Registry) DeployDeterministicBatch(ctx access.Context, items []DeployItem) ([]address.Address, error) {
	if err := r.grants.Check(ctx, access.Commit); nil != err {
		return nil, err
	}
	if 0 == len(items) {
		return nil, fault.ErrEmptyBatch
	}
	if len(items) > MaximumBatchItems {
		return nil, fault.ErrBatchTooLarge
	}
	total := 0
	for _, item := range items {
		if len(item.Code) > MaximumCodeSize {
			return nil, fault.ErrCodeTooLarge
		}
		total += len(item.Code)
	}
	if total > MaximumBatchCode {
		return nil, fault.ResourceErrorf("batch code size: %d exceeds maximum: %d", total, MaximumBatchCode)
	}

	r.Lock()
	defer r.Unlock()

	trx, err := storage.NewTransaction()
	if nil != err {
		return nil, err
	}

	// reserve the worst case fee for the whole batch
	reserve := uint64(len(items)) * r.schedule.top()
	if err := r.debit(trx, ctx.Caller, reserve); nil != err {
		trx.Abort()
		return nil, err
	}

	addresses := make([]address.Address, len(items))
	events := make([]DeployedEvent, 0, len(items))
	var actual uint64

	for i, item := range items {
		addr, deployed, err := r.deployUncharged(trx, item.Salt, item.Code, item.Arguments)
		if nil != err {
			trx.Abort()
			return nil, err
		}
		addresses[i] = addr
		if deployed {
			actual += r.schedule.FeeFor(len(item.Code))
			events = append(events, DeployedEvent{
				Address:  addr,
				CodeHash: CodeHash(item.Code, item.Arguments),
				Salt:     item.Salt,
			})
		}
	}

	// refund the overestimate
	r.credit(trx, ctx.Caller, reserve-actual)

	if err := trx.Commit(); nil != err {
		return nil, err
	}
	for _, event := range events {
		messagebus.Send(messagebus.TopicContractDeployed, event)
	}
	return addresses, nil
}

// deploy one code unit inside an open transaction, charging its fee
func (r *Registry) deploy(trx storage.Transaction, ctx access.Context, salt address.Salt, code []byte, arguments []byte) (address.Address, bool, error) {

	addr, deployed, err := r.deployUncharged(trx, salt, code, arguments)
	if nil != err {
		return address.Address{}, false, err
	}
	if deployed {
		if err := r.debit(trx, ctx.Caller, r.schedule.FeeFor(len(code))); nil != err {
			return address.Address{}, false, err
		}
	}
	return addr, deployed, nil
}

// deploy one code unit inside an open transaction without fee handling
//
// the returned flag is false when an identical deployment was already
// present - nothing is written and initialisation does not run again
func (r *Registry) deployUncharged(trx storage.Transaction, salt address.Salt, code []byte, arguments []byte) (address.Address, bool, error) {

	// deployment bomb guard: reject before any further work
	if len(code) > MaximumCodeSize {
		return address.Address{}, false, fault.ErrCodeTooLarge
	}
	if 0 == len(code) {
		return address.Address{}, false, fault.ErrMissingParameters
	}

	codeHash := CodeHash(code, arguments)
	addr := address.FromSalt(r.id, salt, codeHash)

	if existing := trx.Get(r.deployments, addr[:]); nil != existing {
		deployment, err := unpackDeployment(addr, existing)
		if nil != err {
			return address.Address{}, false, err
		}
		if deployment.CodeHash == codeHash && bytes.Equal(deployment.Code, code) {
			// already deployed: idempotent success
			return addr, false, nil
		}
		return address.Address{}, false, fault.ErrDeployedContentMismatch
	}

	// initialisation step: the code must be a loadable chunk
	if err := handler.Compile(code); nil != err {
		return address.Address{}, false, err
	}

	trx.Put(r.deployments, addr[:], packDeployment(Deployment{
		Address:   addr,
		CodeHash:  codeHash,
		Salt:      salt,
		CreatedAt: r.nowFunc(),
		Code:      code,
	}))

	r.log.Infof("deployed: %s code hash: %s", addr, codeHash)
	return addr, true, nil
}
