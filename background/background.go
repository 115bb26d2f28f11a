// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run long lived goroutines with orderly shutdown
package background

// T - handle for the running processes
type T struct {
	shutdown []chan struct{}
	finished []chan struct{}
}

// Process - something that runs until told to shut down
//
// Run must return promptly after the shutdown channel closes
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - the list to start
type Processes []Process

// Start - run each process in its own goroutine
func Start(processes Processes, args interface{}) *T {

	register := &T{
		shutdown: make([]chan struct{}, len(processes)),
		finished: make([]chan struct{}, len(processes)),
	}

	for i, p := range processes {
		shutdown := make(chan struct{})
		finished := make(chan struct{})
		register.shutdown[i] = shutdown
		register.finished[i] = finished
		go func(p Process) {
			p.Run(args, shutdown)
			close(finished)
		}(p)
	}
	return register
}

// Stop - signal every process and wait until all have returned
func (t *T) Stop() {
	if nil == t {
		return
	}

	for _, shutdown := range t.shutdown {
		close(shutdown)
	}
	for _, finished := range t.finished {
		<-finished
	}
}
