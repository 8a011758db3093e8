// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

// Dispatcher is the extension point chain() and complete() use to
// hand a newly-ready task off to whatever runs it. The original
// source bakes this choice in at compile time as the Dispatch type
// parameter of Expression<Dispatch>; Go has no equivalent of a
// template parameter fixed per instantiation, so it is carried as a
// field on base instead, set once at the root of a graph (NewPromise,
// Async) and propagated to every successor created by Then.
//
// There are exactly two implementations: immediateDispatch, used by
// any future/promise graph rooted at NewPromise, and workerDispatch
// (worker.go), installed by Async — whichever goroutine calls it —
// and inherited by every Then chained from an Async future.
type Dispatcher interface {
	dispatch(t Task)
}

// dispatchTask hands t to its own dispatcher and, once Evaluate
// returns — synchronously for an immediate dispatch, or after a later
// drain for a worker-routed one — releases the reference that chain
// or Async acquired for it. immediateDispatch releases right here;
// the worker-routed dispatcher defers the release to the worker loop
// that eventually drains t (see worker.go), since by the time
// dispatchTask returns here the task may already be sitting in
// another thread's buffer.
func dispatchTask(t Task) {
	t.link().dispatcher.dispatch(t)
}

// immediateDispatch evaluates a task synchronously on the calling
// goroutine. This is the dispatch strategy for every future/promise
// graph built with NewPromise, or any Then chained from one — there
// is no worker to route to.
type immediateDispatch struct{}

func (immediateDispatch) dispatch(t Task) {
	t.Evaluate()
	release(t.link())
}
