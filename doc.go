// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rabid is a thread-per-core concurrency runtime for
// throughput-oriented, in-memory workloads.
//
// Rabid pins one worker goroutine to one OS thread per hardware thread
// and avoids kernel synchronization on the hot path. Mutual exclusion
// is expressed as affinity: data is owned by a worker, and work
// migrates to data rather than the reverse. The unit of work is a
// small task carrying a function, an optional argument, a result
// cell, and a list of successors. Tasks flow between workers over a
// precomputed, fully-connected mesh of single-producer/single-consumer
// lock-free buffers.
//
// # Quick Start
//
//	ex := rabid.New(rabid.Concurrency(4)).Build()
//	defer ex.Close()
//
//	ex.Inject(0, func() {
//	    fmt.Println("running on worker 0")
//	})
//
// # Futures and continuations
//
// Inside a worker, Async dispatches a function to a destination worker
// and returns a Future bound to its eventual result. Futures chain
// with the free function Then, which builds a lock-free expression
// graph: each node joins exactly once, and joining dispatches every
// waiting successor to the worker that owns it. Then is a function
// rather than a method because it introduces a new result type
// parameter a method on Future[Arg] could never infer.
//
//	f := rabid.Async(ex, 1, func() int { return 41 })
//	g := rabid.Then(f, func(v int) int { return v + 1 })
//	rabid.Then(g, func(v int) struct{} { fmt.Println(v); return struct{}{} }) // 42
//
// Future and Promise also work standalone, outside any executor: a
// Promise created with NewPromise evaluates its continuations
// synchronously on whichever goroutine completes it.
//
// # Worker affinity
//
// Async(ex, i, fn) always evaluates fn on worker i. Defer(ex, j),
// called from inside fn, relocates where the task's own reference is
// finally released: instead of freeing it on worker i once fn
// returns, the task travels to worker j and is released there. It
// does not move any chained continuation, which has already been
// dispatched by the time Defer runs. Current() and Available() report
// the calling goroutine's worker, when it is one.
//
// # Idle and wakeup
//
// A worker that drains every inbound buffer and finds nothing posts a
// Reverse-tagged sentinel on each buffer and sleeps. The next producer
// to send to that worker consumes the sentinel in the same atomic
// step that publishes its message, and wakes the worker — no syscall
// on the send side unless a wakeup is actually owed. See Idle for the
// pluggable wait/interrupt contract this relies on.
//
// # What this package does not do
//
// No fair scheduling, no preemption, no work stealing, no priorities,
// no cancellation of in-flight tasks, no distributed operation. The
// only suspension point in the whole runtime is a worker's own idle
// wait; no task body ever blocks inside this package's API.
package rabid
