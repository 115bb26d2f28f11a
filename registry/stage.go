// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/messagebus"
	"github.com/routemark-network/routemarkd/storage"
)

// StagedEvent - payload of a chunk-staged event
type StagedEvent struct {
	ContentHash merkle.Digest   `json:"contentHash"`
	Address     address.Address `json:"address"`
	Size        uint64          `json:"size"`
}

// Stage - store content as an immutable code unit at its content address
//
// idempotent by construction: restaging identical content returns the
// existing mapping without writing or charging anything
func (r *Registry) Stage(ctx access.Context, content []byte) (address.Address, merkle.Digest, error) {
	if err := r.grants.Check(ctx, access.Commit); nil != err {
		return address.Address{}, merkle.Digest{}, err
	}
	if len(content) > MaximumCodeSize {
		return address.Address{}, merkle.Digest{}, fault.ErrCodeTooLarge
	}

	r.Lock()
	defer r.Unlock()

	trx, err := storage.NewTransaction()
	if nil != err {
		return address.Address{}, merkle.Digest{}, err
	}

	addr, contentHash, staged, err := r.stage(trx, ctx, content)
	if nil != err {
		trx.Abort()
		return address.Address{}, merkle.Digest{}, err
	}
	if err := trx.Commit(); nil != err {
		return address.Address{}, merkle.Digest{}, err
	}

	if staged {
		messagebus.Send(messagebus.TopicChunkStaged, StagedEvent{
			ContentHash: contentHash,
			Address:     addr,
			Size:        uint64(len(content)),
		})
	}
	return addr, contentHash, nil
}

// StageBatch - stage several contents with all-or-nothing semantics
//
// any failure aborts the whole batch: either every content is staged
// and charged or the registry is byte for byte unchanged
func (r *Registry) StageBatch(ctx access.Context, contents [][]byte) ([]address.Address, error) {
	if err := r.grants.Check(ctx, access.Commit); nil != err {
		return nil, err
	}
	if 0 == len(contents) {
		return nil, fault.ErrEmptyBatch
	}
	if len(contents) > MaximumBatchItems {
		return nil, fault.ErrBatchTooLarge
	}
	total := 0
	for _, content := range contents {
		if len(content) > MaximumCodeSize {
			return nil, fault.ErrCodeTooLarge
		}
		total += len(content)
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

	addresses := make([]address.Address, len(contents))
	events := make([]StagedEvent, 0, len(contents))

	for i, content := range contents {
		addr, contentHash, staged, err := r.stage(trx, ctx, content)
		if nil != err {
			trx.Abort()
			return nil, err
		}
		addresses[i] = addr
		if staged {
			events = append(events, StagedEvent{
				ContentHash: contentHash,
				Address:     addr,
				Size:        uint64(len(content)),
			})
		}
	}

	if err := trx.Commit(); nil != err {
		return nil, err
	}
	for _, event := range events {
		messagebus.Send(messagebus.TopicChunkStaged, event)
	}
	return addresses, nil
}

// stage one content inside an open transaction
//
// the returned flag is false when the content was already present
func (r *Registry) stage(trx storage.Transaction, ctx access.Context, content []byte) (address.Address, merkle.Digest, bool, error) {

	contentHash := ContentHash(content)

	// identical content already staged: return the recorded address
	if existing := trx.Get(r.chunks, contentHash[:]); nil != existing {
		chunk, err := unpackChunk(contentHash, existing)
		if nil != err {
			return address.Address{}, merkle.Digest{}, false, err
		}
		return chunk.Address, contentHash, false, nil
	}

	if err := r.debit(trx, ctx.Caller, r.schedule.FeeFor(len(content))); nil != err {
		return address.Address{}, merkle.Digest{}, false, err
	}

	addr := address.FromContent(r.id, contentHash)
	now := r.nowFunc()

	trx.Put(r.chunks, contentHash[:], packChunk(Chunk{
		ContentHash: contentHash,
		Address:     addr,
		Size:        uint64(len(content)),
		CreatedAt:   now,
	}))
	trx.Put(r.deployments, addr[:], packDeployment(Deployment{
		Address:   addr,
		CodeHash:  contentHash,
		CreatedAt: now,
		Code:      content,
	}))

	r.log.Infof("staged: %s at: %s size: %d", contentHash, addr, len(content))
	return addr, contentHash, true, nil
}
