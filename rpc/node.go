// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/routemark-network/routemarkd/counter"
	"github.com/routemark-network/routemarkd/routing"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Node - type for RPC calls
type Node struct {
	log         *logger.L
	limiter     *rate.Limiter
	start       time.Time
	version     string
	table       *routing.Table
	connections *counter.Counter
}

func newNode(log *logger.L, version string, start time.Time, table *routing.Table, connections *counter.Counter) *Node {
	return &Node{
		log:         log,
		limiter:     rate.NewLimiter(rateLimitNode, rateBurstNode),
		start:       start,
		version:     version,
		table:       table,
		connections: connections,
	}
}

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Connections uint64 `json:"connections"`
	ActiveEpoch uint64 `json:"activeEpoch,string"`
	Routes      int    `json:"routes"`
	Frozen      bool   `json:"frozen"`
}

// Info - enough information for a client to determine instance state
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {
	if err := rateLimit(node.limiter); nil != err {
		return err
	}

	state := node.table.State()
	reply.Version = node.version
	reply.Uptime = time.Since(node.start).String()
	reply.Connections = node.connections.Uint64()
	reply.ActiveEpoch = state.ActiveEpoch
	reply.Routes = state.Routes
	reply.Frozen = state.Frozen
	return nil
}
