// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - long-running subsystem tasks with clean stop
package background

// Task - one long-running routine
//
// the routine must return promptly after the shutdown channel closes
type Task func(shutdown <-chan struct{})

// handle over a set of running tasks
type T struct {
	shutdown chan struct{}
	finished []chan struct{}
}

// Start - run every task in its own goroutine
func Start(tasks []Task) *T {
	register := &T{
		shutdown: make(chan struct{}),
		finished: make([]chan struct{}, len(tasks)),
	}

	for i, task := range tasks {
		finished := make(chan struct{})
		register.finished[i] = finished
		go func(run Task, finished chan<- struct{}) {
			defer close(finished)
			run(register.shutdown)
		}(task, finished)
	}
	return register
}

// Stop - signal all tasks and wait for each to finish
func (register *T) Stop() {
	if nil == register {
		return
	}
	close(register.shutdown)
	for _, finished := range register.finished {
		<-finished
	}
}
