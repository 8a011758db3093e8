// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import "errors"

// Executor owns a fixed mesh of workers, one per configured core, and
// the fully connected interconnect joining them. It is the Go shape
// of Executor.h's static Executor, built through a Builder instead of
// the original's compile-time configuration.
type Executor struct {
	options options
	workers []*worker
	mesh    *mesh
}

// New starts a Builder for an Executor, defaulting to one worker per
// reported CPU with affinity pinning enabled. Apply Option values to
// override either.
func New(opts ...Option) *Builder {
	b := &Builder{options: defaultOptions()}
	for _, opt := range opts {
		opt(&b.options)
	}
	return b
}

// Builder configures and constructs an Executor. See New.
type Builder struct {
	options options
}

// Build starts every worker and returns the running Executor.
func (b *Builder) Build() *Executor {
	n := b.options.concurrency
	ex := &Executor{
		options: b.options,
		workers: make([]*worker, n),
		mesh:    newMesh(n),
	}
	for i := 0; i < n; i++ {
		ex.workers[i] = newWorker(i, ex)
	}
	for _, w := range ex.workers {
		w.start()
	}
	for _, w := range ex.workers {
		<-w.ready
	}
	return ex
}

// Close disables every worker's Idle, waking any that are currently
// parked, and waits for each to observe the disable and exit. Per
// spec.md §5, a worker that is busy when Close is called keeps
// draining and running tasks as usual until two consecutive passes
// find nothing; its next Wait then reports the disable, and it clears
// its connections one last time, releasing every residual message and
// cached sentinel without evaluating them. A task sent to a worker
// after it has exited is neither run nor released.
func (ex *Executor) Close() {
	for _, w := range ex.workers {
		w.idle.Enable(false)
	}
	for _, w := range ex.workers {
		<-w.done
	}
}

// Concurrency reports how many workers this executor runs.
func (ex *Executor) Concurrency() int {
	return len(ex.workers)
}

// ErrBadWorker reports an address outside [0, Concurrency()).
var ErrBadWorker = errors.New("rabid: worker address out of range")

func (ex *Executor) checkAddress(id int) {
	if id < 0 || id >= len(ex.workers) {
		panic(ErrBadWorker)
	}
}

// Inject runs fn on worker id and discards its result. It is the
// entry point for code running outside any worker — a program's
// main goroutine, an HTTP handler, a timer callback — to get work
// onto the mesh at all. Inject never blocks on the task finishing;
// queuing fn is a CAS loop on worker id's self-loop buffer (see
// workerDispatch in worker.go), which retries only while other
// senders to that buffer contend with it.
func (ex *Executor) Inject(id int, fn func()) {
	ex.checkAddress(id)
	Async(ex, id, func() struct{} { fn(); return struct{}{} })
}

// Async allocates a task for fn addressed to worker dest and
// dispatches it immediately, returning a Future bound to its result.
// Calling it from inside one of ex's own workers routes the task over
// the mesh directly; calling it from any other goroutine queues it on
// dest's external entry point.
func Async[Result any](ex *Executor, dest int, fn func() Result) Future[Result] {
	ex.checkAddress(dest)
	origin := &Origin[Result]{function: fn}
	origin.init(origin, workerDispatch{ex: ex})
	origin.address = int32(dest)
	acquire(origin.link())
	dispatchTask(origin)
	return newFuture[Result](origin)
}

// Current reports the worker the calling goroutine is running on, and
// whether it is running on one at all.
func Current() (id int, ok bool) {
	w := lookupWorker()
	if w == nil {
		return 0, false
	}
	return w.id, true
}

// Available reports whether the calling goroutine is running inside
// some worker's event loop.
func Available() bool {
	_, ok := Current()
	return ok
}

// Defer relocates the task currently being evaluated on the calling
// worker to worker dest once Evaluate returns, instead of releasing
// its reference on the spot. The task has already completed and
// dispatched its successors by the time Defer runs; what moves is
// only the final handling of its own reference, which lands and is
// released on dest instead of on the calling worker. Defer must be
// called from inside a task's own Evaluate method; calling it from
// outside a worker, or more than once during a single evaluation,
// panics.
func Defer(ex *Executor, dest int) {
	ex.checkAddress(dest)
	w := lookupWorker()
	if w == nil || w.ex != ex || w.current == nil {
		panic(ErrNotWorker)
	}
	tb := w.current.link()
	if tb.deferred {
		panic("rabid: Defer called twice for the same evaluation")
	}
	tb.deferred = true
	tb.deferTo = int32(dest)
}

// ErrNotWorker reports an operation that requires running inside a
// worker's event loop attempted from somewhere else.
var ErrNotWorker = errors.New("rabid: not running on a worker")
