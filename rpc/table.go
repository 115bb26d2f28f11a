// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/route"
	"github.com/routemark-network/routemarkd/routing"
)

const (
	rateLimitTable = 200
	rateBurstTable = 100

	// limit for discovery listing
	maximumHandlerList = 100
)

// Table - routing table RPC calls
type Table struct {
	log     *logger.L
	limiter *rate.Limiter
	table   *routing.Table
}

func newTable(log *logger.L, table *routing.Table) *Table {
	return &Table{
		log:     log,
		limiter: rate.NewLimiter(rateLimitTable, rateBurstTable),
		table:   table,
	}
}

// StatusArguments - empty arguments for status request
type StatusArguments struct{}

// Status - the manifest state snapshot
func (t *Table) Status(_ *StatusArguments, reply *routing.Snapshot) error {
	if err := rateLimit(t.limiter); nil != err {
		return err
	}
	*reply = t.table.State()
	return nil
}

// ResolveArguments - arguments for route resolution
type ResolveArguments struct {
	Key route.Key `json:"key"`
}

// ResolveReply - the bound route entry
type ResolveReply struct {
	Entry route.Entry `json:"entry"`
}

// Resolve - the handler bound to a route key
func (t *Table) Resolve(arguments *ResolveArguments, reply *ResolveReply) error {
	if err := rateLimit(t.limiter); nil != err {
		return err
	}
	entry, err := t.table.Resolve(arguments.Key)
	if nil != err {
		return err
	}
	reply.Entry = entry
	return nil
}

// HandlersArguments - arguments for handler listing
type HandlersArguments struct {
	Count int `json:"count"`
}

// HandlersReply - all handlers with bound routes
type HandlersReply struct {
	Handlers []address.Address `json:"handlers"`
}

// Handlers - list handlers with at least one bound route key
func (t *Table) Handlers(arguments *HandlersArguments, reply *HandlersReply) error {
	if err := rateLimitN(t.limiter, arguments.Count, maximumHandlerList); nil != err {
		return err
	}
	handlers := t.table.Handlers()
	if len(handlers) > arguments.Count {
		handlers = handlers[:arguments.Count]
	}
	reply.Handlers = handlers
	return nil
}

// RoutesArguments - arguments for per handler route listing
type RoutesArguments struct {
	Handler address.Address `json:"handler"`
}

// RoutesReply - route keys bound to one handler
type RoutesReply struct {
	Keys []route.Key `json:"keys"`
}

// Routes - the route keys bound to a handler
func (t *Table) Routes(arguments *RoutesArguments, reply *RoutesReply) error {
	if err := rateLimit(t.limiter); nil != err {
		return err
	}
	reply.Keys = t.table.RoutesFor(arguments.Handler)
	return nil
}

// DispatchArguments - arguments for a dispatch
type DispatchArguments struct {
	Key     route.Key `json:"key"`
	Payload []byte    `json:"payload"`
}

// DispatchReply - handler result
type DispatchReply struct {
	Result []byte `json:"result"`
}

// Dispatch - forward a payload to the handler bound to a route key
func (t *Table) Dispatch(arguments *DispatchArguments, reply *DispatchReply) error {
	if err := rateLimit(t.limiter); nil != err {
		return err
	}
	result, err := t.table.Dispatch(arguments.Key, arguments.Payload)
	if nil != err {
		return err
	}
	reply.Result = result
	return nil
}
