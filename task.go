// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import (
	"runtime"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// noAddress marks a task with no destination worker — the promise
// input cell and any task evaluated outside an executor.
const noAddress int32 = -1

// Task is the polymorphic unit of work carried through the
// interconnect and the expression graph. Concrete types are
// Continuation[Arg, Result] (consumes a predecessor's value),
// Origin[Result] (a zero-argument root, used by Async and NewPromise)
// and the worker's idle sentinel (worker.go). The base
// holding all the intrusive/lifecycle state is embedded, not
// inherited — Go has no base classes, so the "uniform container
// offset" trick from the original source's detail/expression.h is
// unnecessary; callers that need a task's typed result use the
// value() method of the concrete type directly, or type-assert to
// valueTask[T] when only the produced type, not the concrete type,
// is statically known.
type Task interface {
	// Evaluate runs this task's function exactly once, stores its
	// result, and completes — dispatching any successors queued
	// before completion.
	Evaluate()

	link() *base
}

// valueTask is satisfied by any Task producing a T, independent of
// whether it is a Continuation, an Origin, or a promise's Argument
// cell. A successor recovers its predecessor's value through this
// interface rather than through runtime type introspection: the
// generic Then[Arg, Result] that builds the successor already knows
// Arg statically, so the type assertion it performs is a contract the
// caller cannot violate through the public API.
type valueTask[T any] interface {
	Task
	value() T
}

// base is the intrusive link and lifecycle state shared by every
// concrete task type — the Go analogue of expression.h's
// Expression<Dispatch>, minus the dispatch strategy baked in as a
// type parameter (kept instead as a field, propagated down a chain
// from whichever root created it).
type base struct {
	_       pad
	next    uintptr // interconnect buffer link; single-writer, see buffer.go
	address int32   // destination worker, or noAddress
	deferTo int32   // Defer's destination, or noAddress
	_       padAfterWord

	refs atomix.Int32
	_    pad

	pending atomic.Pointer[base] // nil | chain-head | self (completed sentinel)
	_       pad

	variable   Task // dual use: pending-chain link, then predecessor reference
	self       Task // this task's own Task interface value (see asTask)
	dispatcher Dispatcher
	deferred   bool

	pin runtime.Pinner
}

func (b *base) link() *base { return b }

// asTask recovers the Task interface value for this base. Set once
// by every concrete constructor right after allocation.
func (b *base) asTask() Task { return b.self }

// sentinel returns the "completed" marker b.pending holds once b has
// completed: b itself.
func (b *base) sentinel() *base { return b }

func (b *base) isComplete() bool {
	return b.pending.Load() == b.sentinel()
}

// init finishes constructing a freshly allocated base and records its
// own Task identity for asTask. The base's Pinner is used only for
// the narrow window a task's address is held as a bare Word inside a
// Buffer (see buffer.go's send/reverse); it is not pinned here.
func (b *base) init(self Task, dispatcher Dispatcher) {
	b.address = noAddress
	b.deferTo = noAddress
	b.refs.StoreRelaxed(1)
	b.self = self
	b.dispatcher = dispatcher
	liveTasks.Add(1)
}

// resultDestructor is implemented by any concrete task type holding a
// Container[T] result cell — Origin and Continuation, not sentinel,
// which has none. destroy() type-asserts for it rather than requiring
// every Task to carry a Container, the way capture.h's Captured<Type>
// is a data member of Expression<Dispatch>, not the base itself.
type resultDestructor interface {
	destructResult()
}

// destroy runs when the reference count reaches zero: destructs the
// captured result, if this task has one, and releases any successors
// that never got a chance to run. A task that completed normally has
// already dispatched every successor out of pending by the time its
// last reference goes away, so the successor walk only matters for a
// task destroyed while still incomplete.
func (b *base) destroy() {
	if d, ok := b.self.(resultDestructor); ok {
		d.destructResult()
	}
	if !b.isComplete() {
		for w := b.pending.Load(); w != nil; {
			next := w.variable
			release(w)
			if next == nil {
				break
			}
			w = next.link()
		}
	}
	liveTasks.Add(-1)
}

// chain appends succ as a successor of pred, or dispatches it
// immediately if pred has already completed. This is spec.md
// §4.3's chain(succ), implemented exactly as specified:
//
//  1. Load pending.
//  2. If self, the result is already present: set succ.variable =
//     this, dispatch succ, done.
//  3. Otherwise set succ.variable = prior and CAS pending: prior →
//     succ; on CAS failure undo and retry.
func chain(pred, succ Task) {
	predBase, succBase := pred.link(), succ.link()
	acquire(succBase) // pred's pending list, or the immediate dispatch below, now owns a reference
	sw := spin.Wait{}
	for {
		prior := predBase.pending.Load()
		if prior == predBase.sentinel() {
			acquire(predBase) // succ's variable now holds a reference, matching Continuation.Evaluate's release
			succBase.variable = pred
			dispatchTask(succ)
			return
		}
		if prior == nil {
			succBase.variable = nil
		} else {
			succBase.variable = prior.asTask()
		}
		if predBase.pending.CompareAndSwap(prior, succBase) {
			return
		}
		sw.Once()
	}
}

// complete publishes pred's result: spec.md §4.3's complete(),
// called exactly once per task, from Evaluate() or Promise.Complete.
func complete(pred Task) {
	predBase := pred.link()
	waiting := predBase.pending.Swap(predBase.sentinel())
	for waiting != nil {
		w := waiting.asTask()
		next := waiting.variable
		acquire(predBase) // waiting's variable now holds a reference, matching Continuation.Evaluate's release
		waiting.variable = pred
		dispatchTask(w)
		waiting = nil
		if next != nil {
			waiting = next.link()
		}
	}
}
