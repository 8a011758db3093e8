// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import "sync"

// Idle is the suspension point a worker uses when two consecutive
// passes over its connections have found nothing. It is the Go shape
// of Executor.h's ThreadModel::Idle, pluggable so a caller
// benchmarking latency under a fixed core budget can swap in a
// spinning implementation instead of the default blocking one.
//
// Wait must not miss an Interrupt that happens concurrently with a
// worker arming its sentinels and entering Wait — that race is the
// only reason this is an interface and not a bare channel. The
// default implementation closes it with a level-triggered flag under
// a mutex rather than a two-phase arm/disarm protocol: Interrupt
// always leaves the flag set until the next Wait consumes it, so
// calling Interrupt before Wait is observed, not lost.
type Idle interface {
	// Wait blocks until Interrupt has been called at least once since
	// the last Wait returned, or until Enable(false) disables this
	// Idle, whichever happens first. It reports whether the caller
	// should continue running: false means the worker is shutting
	// down and must not wait again.
	Wait() bool
	// Interrupt wakes a blocked or future Wait. Safe to call from any
	// goroutine, any number of times; excess calls before the next
	// Wait collapse into one.
	Interrupt()
	// Enable arms or disarms shutdown. Disabling wakes an in-progress
	// Wait immediately and makes every Wait call from then on return
	// false without blocking, until re-enabled.
	Enable(enabled bool)
}

type condIdle struct {
	mu      sync.Mutex
	cond    *sync.Cond
	woken   bool
	enabled bool
}

func newCondIdle() *condIdle {
	idle := &condIdle{enabled: true}
	idle.cond = sync.NewCond(&idle.mu)
	return idle
}

func (idle *condIdle) Wait() bool {
	idle.mu.Lock()
	for !idle.woken && idle.enabled {
		idle.cond.Wait()
	}
	cont := idle.enabled
	idle.woken = false
	idle.mu.Unlock()
	return cont
}

func (idle *condIdle) Interrupt() {
	idle.mu.Lock()
	idle.woken = true
	idle.mu.Unlock()
	idle.cond.Signal()
}

func (idle *condIdle) Enable(enabled bool) {
	idle.mu.Lock()
	idle.enabled = enabled
	idle.mu.Unlock()
	idle.cond.Signal()
}
