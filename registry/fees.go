// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/identity"
	"github.com/routemark-network/routemarkd/storage"
)

// FeeTier - one step of the deployment fee schedule
type FeeTier struct {
	MaximumSize int    `gluamapper:"maximum_size" json:"maximumSize"`
	Fee         uint64 `gluamapper:"fee" json:"fee"`
}

// FeeSchedule - ascending tiers; code larger than every tier pays the
// top fee
type FeeSchedule []FeeTier

// FeeFor - the fee for a code unit of the given size
func (schedule FeeSchedule) FeeFor(size int) uint64 {
	if 0 == len(schedule) {
		return 0
	}
	for _, tier := range schedule {
		if size <= tier.MaximumSize {
			return tier.Fee
		}
	}
	return schedule[len(schedule)-1].Fee
}

// top - the largest fee of the schedule, used for batch reservations
func (schedule FeeSchedule) top() uint64 {
	if 0 == len(schedule) {
		return 0
	}
	return schedule[len(schedule)-1].Fee
}

// key under which the collected total is accumulated
//
// shorter than an identity so it can never collide with a balance key
var collectedKey = []byte("collected")

// Deposit - credit the caller's own fee balance
func (r *Registry) Deposit(ctx access.Context, amount uint64) {
	r.Lock()
	defer r.Unlock()

	balance, _ := r.fees.GetN(ctx.Caller[:])
	r.fees.PutN(ctx.Caller[:], balance+amount)
	r.log.Infof("deposit: %d for: %s", amount, ctx.Caller)
}

// Balance - the fee balance of an identity
func (r *Registry) Balance(id identity.Identity) uint64 {
	r.RLock()
	defer r.RUnlock()
	balance, _ := r.fees.GetN(id[:])
	return balance
}

// Collected - total fees collected and not yet withdrawn
func (r *Registry) Collected() uint64 {
	r.RLock()
	defer r.RUnlock()
	collected, _ := r.fees.GetN(collectedKey)
	return collected
}

// Withdraw - move collected fees to an identity's balance
//
// admin role only
func (r *Registry) Withdraw(ctx access.Context, to identity.Identity, amount uint64) error {
	if err := r.grants.Check(ctx, access.Admin); nil != err {
		return err
	}

	r.Lock()
	defer r.Unlock()

	collected, _ := r.fees.GetN(collectedKey)
	if amount > collected {
		return fault.ResourceErrorf("withdraw: %d exceeds collected: %d", amount, collected)
	}

	trx, err := storage.NewTransaction()
	if nil != err {
		return err
	}
	balance, _ := trx.GetN(r.fees, to[:])
	trx.PutN(r.fees, collectedKey, collected-amount)
	trx.PutN(r.fees, to[:], balance+amount)
	if err := trx.Commit(); nil != err {
		return err
	}

	r.log.Infof("withdraw: %d to: %s", amount, to)
	return nil
}

// debit a fee inside an open transaction
//
// moves amount from the caller's balance to the collected total;
// aborting the transaction also discards the debit
func (r *Registry) debit(trx storage.Transaction, caller identity.Identity, amount uint64) error {
	if 0 == amount {
		return nil
	}
	balance, _ := trx.GetN(r.fees, caller[:])
	if balance < amount {
		return fault.ErrFeeNotSatisfied
	}
	collected, _ := trx.GetN(r.fees, collectedKey)
	trx.PutN(r.fees, caller[:], balance-amount)
	trx.PutN(r.fees, collectedKey, collected+amount)
	return nil
}

// credit a refund inside an open transaction
func (r *Registry) credit(trx storage.Transaction, caller identity.Identity, amount uint64) {
	if 0 == amount {
		return
	}
	balance, _ := trx.GetN(r.fees, caller[:])
	collected, _ := trx.GetN(r.fees, collectedKey)
	trx.PutN(r.fees, caller[:], balance+amount)
	trx.PutN(r.fees, collectedKey, collected-amount)
}
