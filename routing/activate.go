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

// ActivatedEvent - payload of a root-activated event
type ActivatedEvent struct {
	Root  merkle.Digest `json:"root"`
	Epoch uint64        `json:"epoch"`
}

// Activate - promote the pending root once the timelock has elapsed
//
// every staged key is fingerprint checked again right before the
// promotion: code swapped between apply and activate aborts the whole
// activation; a promoted root is marked consumed and can never be
// activated a second time
func (t *Table) Activate(ctx access.Context) error {
	if err := t.grants.Check(ctx, access.Apply); nil != err {
		return err
	}

	t.Lock()
	defer t.Unlock()

	if !t.state.hasPending() {
		return fault.ErrNoPendingRoot
	}

	now := t.nowFunc()
	eligible := t.state.pendingSince.Add(t.activationDelay + t.state.graceWindow)
	if now.Before(eligible) {
		return fault.TimingErrorf("activation in: %s", eligible.Sub(now).Truncate(time.Millisecond))
	}

	// code substitution between apply and activate aborts here
	for _, key := range t.staged {
		entry, ok := t.routeMap[key]
		if !ok {
			return fault.IntegrityErrorf("staged key vanished: %s", key)
		}
		live, err := t.resolver.CodeFingerprint(entry.Handler)
		if nil != err {
			return err
		}
		if live != entry.Fingerprint {
			t.log.Errorf("activate: fingerprint drift for key: %s  pinned: %s  live: %s", key, entry.Fingerprint, live)
			return fault.ErrCodeFingerprintMismatch
		}
	}

	trx, err := storage.NewTransaction()
	if nil != err {
		return err
	}

	root := t.state.pendingRoot
	epoch := t.state.pendingEpoch

	saved := t.state
	t.state.activeRoot = root
	t.state.activeEpoch = epoch
	t.state.pendingRoot = merkle.Digest{}
	t.state.pendingEpoch = 0
	t.state.pendingSince = time.Time{}
	t.writeState(trx)
	trx.PutN(t.consumedPool, root[:], epoch)
	t.purgeStaged(trx)

	if err := trx.Commit(); nil != err {
		t.state = saved
		return err
	}
	t.clearStaged()

	t.log.Infof("activated root: %s epoch: %d", root, epoch)
	messagebus.Send(messagebus.TopicRootActivated, ActivatedEvent{
		Root:  root,
		Epoch: epoch,
	})
	return nil
}
