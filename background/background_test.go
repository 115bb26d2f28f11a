// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/routemark-network/routemarkd/background"
)

type counter struct {
	started uint32
	stopped uint32
}

func (c *counter) Run(args interface{}, shutdown <-chan struct{}) {
	atomic.AddUint32(&c.started, 1)
	<-shutdown
	atomic.AddUint32(&c.stopped, 1)
}

func TestStartStop(t *testing.T) {
	one := new(counter)
	two := new(counter)

	processes := background.Processes{one, two}
	register := background.Start(processes, nil)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, uint32(1), atomic.LoadUint32(&one.started), "first started")
	assert.Equal(t, uint32(1), atomic.LoadUint32(&two.started), "second started")

	register.Stop()
	assert.Equal(t, uint32(1), atomic.LoadUint32(&one.stopped), "first stopped")
	assert.Equal(t, uint32(1), atomic.LoadUint32(&two.stopped), "second stopped")
}

func TestStopNil(t *testing.T) {
	var register *background.T
	assert.NotPanics(t, func() { register.Stop() }, "nil handle")
}
