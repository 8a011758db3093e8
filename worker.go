// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import "runtime"

// worker is one thread-per-core event loop: drain every connection,
// run what was found, and otherwise arm idle sentinels and sleep. This
// is spec.md §4.4's loop, translated directly — two consecutive empty
// passes before a worker actually parks, the second pass arming a
// Reverse sentinel on every connection in the exact same atomic step
// that drains it, so a connection is never observed holding neither
// the sentinel about to be consumed nor the tasks about to be
// processed:
//
//	for {
//	    processed := 0
//	    for each connection:
//	        sentinel := prepareIdle ? take-or-make-sentinel : nil
//	        batch := connection.clear(sentinel)
//	        for entry in batch:
//	            if entry.tag == Normal: run it; processed++
//	            else: cache the recovered sentinel for reuse
//	    if processed > 0 { prepareIdle = false; continue }
//	    if prepareIdle {
//	        if !idle.Wait() { shut down }
//	        prepareIdle = false
//	    } else {
//	        prepareIdle = true
//	    }
//	}
type worker struct {
	id int
	ex *Executor

	inbound       []*Buffer
	sentinelCache []*base
	prepareIdle   bool

	idle Idle

	current Task

	ready chan struct{}
	done  chan struct{}
}

func newWorker(id int, ex *Executor) *worker {
	return &worker{
		id:    id,
		ex:    ex,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (w *worker) start() {
	w.inbound = w.ex.mesh.inbound(w.id)
	w.idle = w.ex.options.idleFactory()
	go w.loop()
}

func (w *worker) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	if w.ex.options.affinity {
		_ = pinCurrentThread(w.id)
	}
	registerWorker(w)
	defer unregisterWorker()
	close(w.ready)

	for {
		if w.drainAll() > 0 {
			w.prepareIdle = false
			continue
		}
		if w.prepareIdle {
			if !w.idle.Wait() {
				w.shutdown()
				return
			}
			w.prepareIdle = false
		} else {
			w.prepareIdle = true
		}
	}
}

// drainAll clears every connection once, running whatever Normal
// tasks were found and caching whatever unconsumed sentinels came
// back. It reports how many tasks ran.
func (w *worker) drainAll() int {
	processed := 0
	for _, buf := range w.inbound {
		var s *base
		if w.prepareIdle {
			s = w.takeSentinel()
		}
		batch := buf.clear(s)
		batch.Each(func(t Task, tag Tag) {
			if tag == TagNormal {
				w.run(t)
				processed++
			} else {
				w.cacheSentinel(t.link())
			}
		})
	}
	return processed
}

// takeSentinel reuses a sentinel a prior clear recovered unconsumed,
// or allocates a fresh one — spec.md's make_sentinel, "reuse, don't
// re-allocate."
func (w *worker) takeSentinel() *base {
	if n := len(w.sentinelCache); n > 0 {
		s := w.sentinelCache[n-1]
		w.sentinelCache = w.sentinelCache[:n-1]
		return s
	}
	return newSentinel(w.idle).link()
}

func (w *worker) cacheSentinel(b *base) {
	w.sentinelCache = append(w.sentinelCache, b)
}

// run evaluates t with w installed as the currently evaluating
// worker, then either releases t's reference (the ordinary case) or
// forwards that same reference to t's deferred destination, as set by
// a call to Defer during Evaluate.
func (w *worker) run(t Task) {
	tb := t.link()
	prevCurrent := w.current
	tb.deferred = false
	w.current = t
	t.Evaluate()
	w.current = prevCurrent

	if !tb.deferred {
		release(tb)
		return
	}
	dest := tb.deferTo
	consumeSentinel(w.ex.mesh.buffer(w.id, int(dest)).send(tb, TagNormal))
}

// shutdown runs once, right after idle.Wait reports this worker is
// disabled: every connection is cleared a final time and every
// residual message, plus every cached sentinel, is released without
// being evaluated — spec.md's "draining and releasing any residual
// messages ... in its destructor."
func (w *worker) shutdown() {
	for _, buf := range w.inbound {
		batch := buf.clear(nil)
		batch.Each(func(t Task, _ Tag) { release(t.link()) })
	}
	for _, s := range w.sentinelCache {
		release(s)
	}
	w.sentinelCache = nil
}

// sentinel is the Reverse-tagged wakeup token a worker arms on a
// connection before parking. Evaluating it calls Interrupt on the
// Idle that armed it — this is how a sender that evicts one (see
// Buffer.send/consumeSentinel) wakes the destination worker's next
// Wait without the destination ever polling for it. Nothing ever
// dispatches one through a Dispatcher; only send and clear touch it.
type sentinel struct {
	base
	idle Idle
}

func newSentinel(idle Idle) *sentinel {
	s := &sentinel{idle: idle}
	s.init(s, nil)
	return s
}

func (s *sentinel) Evaluate() { s.idle.Interrupt() }

// workerDispatch routes a task to its destination worker's connection
// from the current worker, or through the destination's own self-loop
// connection when the call did not originate from inside the mesh (an
// Async or Inject call made from a goroutine that is not itself a
// worker) — spec.md's "loopback-style send path" for external entry.
// Unlike every other connection, a worker's self-loop buffer sees
// concurrent producers: the worker's own internal self-sends and any
// number of external callers. The CAS retry loop in Buffer.send
// handles that correctly; it is just not latency-bounded there the
// way a true single-producer connection is.
type workerDispatch struct {
	ex *Executor
}

func (d workerDispatch) dispatch(t Task) {
	tb := t.link()
	dest := tb.address
	from := lookupWorker()
	if from == nil || from.ex != d.ex {
		consumeSentinel(d.ex.mesh.buffer(int(dest), int(dest)).send(tb, TagNormal))
		return
	}
	consumeSentinel(d.ex.mesh.buffer(from.id, int(dest)).send(tb, TagNormal))
}
