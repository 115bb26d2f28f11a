// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"time"

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/messagebus"
	"github.com/routemark-network/routemarkd/storage"
)

// CommittedEvent - payload of a root-committed event
type CommittedEvent struct {
	Root  merkle.Digest `json:"root"`
	Epoch uint64        `json:"epoch"`
	Since time.Time     `json:"since"`
}

// Commit - record a manifest root as pending and start the timelock
//
// the epoch must be exactly one past the active epoch; a root that was
// already activated once is rejected forever; replacing an existing
// different pending root requires the overwrite flag and discards any
// keys already staged against the old root
func (t *Table) Commit(ctx access.Context, root merkle.Digest, epoch uint64, overwrite bool) error {
	if err := t.grants.Check(ctx, access.Commit); nil != err {
		return err
	}

	t.Lock()
	defer t.Unlock()

	if epoch != t.state.activeEpoch+1 {
		t.log.Warnf("commit epoch: %d  expected: %d", epoch, t.state.activeEpoch+1)
		return fault.ErrWrongEpoch
	}
	if t.consumedPool.Has(root[:]) {
		return fault.ErrRootAlreadyConsumed
	}
	if t.state.hasPending() && root != t.state.pendingRoot && !overwrite {
		return fault.ErrPendingRootExists
	}

	trx, err := storage.NewTransaction()
	if nil != err {
		return err
	}

	saved := t.state
	since := t.nowFunc().Truncate(time.Second).UTC()
	t.state.pendingRoot = root
	t.state.pendingEpoch = epoch
	t.state.pendingSince = since
	t.writeState(trx)

	// keys staged against a previous pending root are void
	t.purgeStaged(trx)

	if err := trx.Commit(); nil != err {
		t.state = saved
		return err
	}
	t.clearStaged()

	t.log.Infof("committed root: %s epoch: %d", root, epoch)
	messagebus.Send(messagebus.TopicRootCommitted, CommittedEvent{
		Root:  root,
		Epoch: epoch,
		Since: since,
	})
	return nil
}
