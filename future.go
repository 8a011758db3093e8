// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import "runtime"

// Origin is a task with no predecessor: its function takes no
// argument. Async builds one to carry work across to a destination
// worker; NewPromise builds one with no function at all, used purely
// as the input cell of a standalone future graph — the Go shape of
// detail/expression.h's Argument<Dispatch, Result>.
type Origin[Result any] struct {
	base
	function func() Result
	result   Container[Result]
	ran      bool
}

// Evaluate runs function and completes, exactly once. Defer delivers
// this same task a second time, to relocate where its reference is
// finally released rather than to run its function again; ran guards
// against that second delivery repeating the work or completing twice.
func (o *Origin[Result]) Evaluate() {
	if o.ran {
		return
	}
	o.ran = true
	if o.function != nil {
		o.result.Capture(o.function)
	}
	complete(o)
}

func (o *Origin[Result]) link() *base   { return &o.base }
func (o *Origin[Result]) value() Result { return o.result.Value() }

// destructResult clears the captured value, matching capture.h's
// Captured<Type>::destruct(). Called once from base.destroy() as each
// task's last reference goes away.
func (o *Origin[Result]) destructResult() { o.result.Destruct() }

// Continuation consumes a predecessor's value and produces its own.
// It is the Go shape of expression.h's Expression<Dispatch> as used
// by Then: function runs once the predecessor completes, its
// argument read straight out of the predecessor's container.
type Continuation[Arg, Result any] struct {
	base
	function func(Arg) Result
	result   Container[Result]
	ran      bool
}

func (c *Continuation[Arg, Result]) Evaluate() {
	if c.ran {
		return
	}
	c.ran = true
	pred := c.variable.(valueTask[Arg])
	c.result.Capture(func() Result { return c.function(pred.value()) })
	release(pred.link())
	c.variable = nil
	complete(c)
}

func (c *Continuation[Arg, Result]) link() *base   { return &c.base }
func (c *Continuation[Arg, Result]) value() Result { return c.result.Value() }

// destructResult clears the captured value, matching capture.h's
// Captured<Type>::destruct(). Called once from base.destroy() as each
// task's last reference goes away.
func (c *Continuation[Arg, Result]) destructResult() { c.result.Destruct() }

// Future is a read handle on a task's eventual result. It carries no
// ownership of its own beyond the single reference every task starts
// with at construction — released automatically once the Future
// becomes unreachable, via runtime.AddCleanup, the closest Go
// equivalent to referenced::Pointer's destructor.
type Future[T any] struct {
	task valueTask[T]
}

func newFuture[T any](t valueTask[T]) Future[T] {
	tb := t.link()
	runtime.AddCleanup(tb, func(b *base) { release(b) }, tb)
	return Future[T]{task: t}
}

// Then chains fn as a successor: fn runs once this future's task
// completes, on whichever dispatcher this graph was built with, and
// the returned Future is bound to fn's result.
func Then[Arg, Result any](f Future[Arg], fn func(Arg) Result) Future[Result] {
	succ := &Continuation[Arg, Result]{function: fn}
	succ.init(succ, f.task.link().dispatcher)
	succ.address = f.task.link().address
	chain(f.task, succ)
	return newFuture[Result](succ)
}

// Get blocks the calling goroutine until f's task has completed and
// returns its value. It is meant for use outside a worker — calling
// it from inside one that is itself on the path to completing f would
// deadlock, since nothing else advances the executor's workers.
func (f Future[T]) Get() T {
	done := make(chan struct{})
	Then(f, func(v T) T { close(done); return v })
	<-done
	return f.task.value()
}

// Promise is the write side of a standalone future graph: a task with
// no function, completed exactly once by calling Complete.
type Promise[T any] struct {
	arg *Origin[T]
}

// NewPromise creates a Promise/Future pair dispatched immediately:
// any Then chained from the returned Future runs synchronously, on
// whichever goroutine calls Complete — or, for a Then chained after
// Complete, on the goroutine calling Then.
func NewPromise[T any]() (Promise[T], Future[T]) {
	arg := &Origin[T]{}
	arg.init(arg, immediateDispatch{})
	return Promise[T]{arg: arg}, newFuture[T](arg)
}

// Complete stores v and dispatches every successor chained so far.
// Calling it more than once panics, matching the monotone pending
// transition every task enforces: a result is produced exactly once.
func (p Promise[T]) Complete(v T) {
	if p.arg.isComplete() {
		panic("rabid: promise already completed")
	}
	p.arg.result.Construct(v)
	complete(p.arg)
}
