// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"strconv"
	"time"

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/messagebus"
	"github.com/routemark-network/routemarkd/storage"
)

// ConfigurationEvent - payload of a configuration-changed event
type ConfigurationEvent struct {
	Name      string `json:"name"`
	Requested string `json:"requested"`
	Effective string `json:"effective"`
}

// Freeze - stop dispatching
//
// the upgrade protocol keeps working while frozen so a bad manifest
// can be replaced during an incident
func (t *Table) Freeze(ctx access.Context) error {
	return t.setFrozen(ctx, true, messagebus.TopicFrozen)
}

// Thaw - resume dispatching
func (t *Table) Thaw(ctx access.Context) error {
	return t.setFrozen(ctx, false, messagebus.TopicThawed)
}

func (t *Table) setFrozen(ctx access.Context, frozen bool, topic string) error {
	if err := t.grants.Check(ctx, access.Emergency); nil != err {
		return err
	}

	t.Lock()
	defer t.Unlock()

	if frozen == t.state.frozen {
		return nil
	}

	trx, err := storage.NewTransaction()
	if nil != err {
		return err
	}
	t.state.frozen = frozen
	t.writeState(trx)
	if err := trx.Commit(); nil != err {
		t.state.frozen = !frozen
		return err
	}

	t.log.Warnf("frozen: %t", frozen)
	messagebus.Send(topic, nil)
	return nil
}

// SetGraceWindow - adjust the extra delay added to the timelock
//
// clamped to the safe range rather than rejected
func (t *Table) SetGraceWindow(ctx access.Context, window time.Duration) error {
	if err := t.grants.Check(ctx, access.Admin); nil != err {
		return err
	}

	t.Lock()
	defer t.Unlock()

	effective := access.ClampGraceWindow(window)

	trx, err := storage.NewTransaction()
	if nil != err {
		return err
	}
	saved := t.state.graceWindow
	t.state.graceWindow = effective
	t.writeState(trx)
	if err := trx.Commit(); nil != err {
		t.state.graceWindow = saved
		return err
	}

	t.log.Infof("grace window: %s (requested: %s)", effective, window)
	messagebus.Send(messagebus.TopicConfigurationChanged, ConfigurationEvent{
		Name:      "graceWindow",
		Requested: window.String(),
		Effective: effective.String(),
	})
	return nil
}

// SetMaxBatchSize - adjust the apply batch ceiling
//
// clamped to the safe range rather than rejected
func (t *Table) SetMaxBatchSize(ctx access.Context, size int) error {
	if err := t.grants.Check(ctx, access.Admin); nil != err {
		return err
	}

	t.Lock()
	defer t.Unlock()

	effective := access.ClampBatchSize(size)

	trx, err := storage.NewTransaction()
	if nil != err {
		return err
	}
	saved := t.state.maxBatchSize
	t.state.maxBatchSize = effective
	t.writeState(trx)
	if err := trx.Commit(); nil != err {
		t.state.maxBatchSize = saved
		return err
	}

	t.log.Infof("max batch size: %d (requested: %d)", effective, size)
	messagebus.Send(messagebus.TopicConfigurationChanged, ConfigurationEvent{
		Name:      "maxBatchSize",
		Requested: strconv.Itoa(size),
		Effective: strconv.Itoa(effective),
	})
	return nil
}
