// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import "runtime"

// options holds an Executor's construction-time configuration. See
// Option.
type options struct {
	concurrency int
	affinity    bool
	idleFactory func() Idle
}

func defaultOptions() options {
	return options{
		concurrency: runtime.NumCPU(),
		affinity:    true,
		idleFactory: func() Idle { return newCondIdle() },
	}
}

// Option configures a Builder. Pass zero or more to New.
type Option func(*options)

// Concurrency sets the number of workers. The default is
// runtime.NumCPU(). n must be at least 1.
func Concurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			panic("rabid: Concurrency must be at least 1")
		}
		o.concurrency = n
	}
}

// Affinity enables or disables pinning each worker's OS thread to its
// own CPU. It is enabled by default; disable it on platforms where
// CPU pinning is unavailable or undesirable (containers with a
// fractional CPU quota, for instance, where pinning a whole core
// wastes the quota the scheduler would otherwise have shared out).
func Affinity(enabled bool) Option {
	return func(o *options) {
		o.affinity = enabled
	}
}

// IdleStrategy replaces the default condition-variable Idle every
// worker parks on with one built by factory, called once per worker
// at Build time. Swap in a spinning implementation to trade CPU for
// lower wakeup latency, or a counting one for benchmarking how often
// a workload actually sleeps.
func IdleStrategy(factory func() Idle) Option {
	return func(o *options) {
		o.idleFactory = factory
	}
}
