// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - internal event queue
//
// state changing operations post their events here and the publish
// process broadcasts them to external observers; delivery is best
// effort, a stalled or absent consumer never blocks an operation
package messagebus

// internal constants
const (
	queueSize = 1000
)

// event topics
const (
	TopicRootCommitted        = "root-committed"
	TopicRoutesApplied        = "routes-applied"
	TopicRootActivated        = "root-activated"
	TopicRouteBound           = "route-bound"
	TopicRouteUnbound         = "route-unbound"
	TopicConfigurationChanged = "configuration-changed"
	TopicChunkStaged          = "chunk-staged"
	TopicContractDeployed     = "contract-deployed"
	TopicFrozen               = "frozen"
	TopicThawed               = "thawed"
)

// Message - one queued event
type Message struct {
	Topic string
	Item  interface{}
}

var (
	// for queueing data
	queue = make(chan Message, queueSize)
)

// Send - post an event
//
// drops the event if the queue is full so a slow consumer cannot
// stall a mutating operation
func Send(topic string, item interface{}) {
	select {
	case queue <- Message{Topic: topic, Item: item}:
	default:
	}
}

// Chan - channel to read from
func Chan() <-chan Message {
	return queue
}
