// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Buffer is a lock-free exchange joining one connection's worth of
// traffic: ordinarily one producer worker sending to one consumer
// worker, except the self-loop connection a worker uses for its own
// internal sends and for Inject/Async called from outside any worker,
// which both route through it concurrently (spec.md's "loopback-style
// send path" for external entry). It is the Go shape of
// intrusive.h's Exchange<Link, Dimension>: send is insert with a
// prepare hook, clear is exchange.
//
// head holds a Word: the most recently sent task, tagged, with its
// own next field threading back to whatever was sent before it. The
// list therefore drains in reverse send order; nothing in this
// package depends on send order between distinct senders, only on
// per-sender order, which is preserved trivially since each producer
// is the only writer of its own successive next links.
//
// While a task's address is held only as the uintptr bits of a Word —
// between send publishing it and clear recovering a typed *base back
// out of it — nothing in the Go object graph points at it with a
// pointer the garbage collector can see. Each base carries its own
// runtime.Pinner for exactly this window: send and clear pin when
// publishing, and reverse (or send's eviction path) unpins as soon as
// it has rebuilt a typed reference.
type Buffer struct {
	_    pad
	head atomix.Uintptr
	_    pad
}

// send publishes node with tag, threading it onto whatever is
// currently at the head — unless that head is a Reverse-tagged
// sentinel, in which case node evicts it instead of chaining onto it
// and send returns it. This is spec.md's prepare hook: the sender
// observes the prior head and, on seeing Reverse, atomically both
// removes the sentinel from the list and publishes its own message in
// the same CAS. The caller owns evaluating and releasing whatever is
// returned (see consumeSentinel) — this is how a sender wakes a
// sleeping consumer without the consumer ever polling for it.
func (buf *Buffer) send(node *base, tag Tag) (evicted *base) {
	node.pin.Pin(node)
	sw := spin.Wait{}
	for {
		prior := Word(buf.head.LoadRelaxed())
		if prior.tag() == TagReverse {
			node.next = uintptr(nullWord)
			evicted = prior.ptr()
		} else {
			node.next = uintptr(prior)
			evicted = nil
		}
		w := newWord(node, tag)
		if buf.head.CompareAndSwapRelease(uintptr(prior), uintptr(w)) {
			return evicted
		}
		sw.Once()
	}
}

// consumeSentinel evaluates and releases a sentinel send evicted: the
// sender's half of the wakeup protocol. Evaluating a sentinel calls
// Interrupt on whichever Idle armed it, waking the destination
// worker's next Wait; this costs one cross-core cache-line transfer
// and no kernel call, since the sender does the waking inline instead
// of the destination polling for it.
func consumeSentinel(b *base) {
	if b == nil {
		return
	}
	b.pin.Unpin()
	b.asTask().Evaluate()
	release(b)
}

// clear exchanges the entire list for sentinel (which may be nil) in
// one atomic step and returns the old list as a Batch, oldest first.
// This is spec.md's clear(sentinel): drain and re-arm are the same
// operation, so a producer can never observe a window where the
// buffer holds neither the sentinel it is about to consume nor the
// tasks a consumer is about to process — the two states are never
// simultaneously absent.
func (buf *Buffer) clear(sentinel *base) Batch {
	var w Word
	if sentinel != nil {
		sentinel.pin.Pin(sentinel)
		w = newWord(sentinel, TagReverse)
	}
	prior := Word(buf.head.SwapAcqRel(uintptr(w)))
	return reverse(prior)
}

// entry is one drained buffer slot together with the tag it carried:
// Normal for a real task, Reverse for an unconsumed sentinel this
// connection's own owner armed and nobody sent into before the next
// clear recovered it (destined for the sentinel cache, not Evaluate).
type entry struct {
	task Task
	tag  Tag
}

// Batch is a drained list of buffer entries in send order (oldest
// first).
type Batch struct {
	entries []entry
}

// reverse walks a buffer's singly linked list from newest to oldest —
// the order it was built in — recovering a typed, unpinned *base for
// each entry and collecting them oldest-first.
func reverse(w Word) Batch {
	var rev []entry
	for !w.isNull() {
		b := w.ptr()
		next := Word(b.next)
		b.pin.Unpin()
		rev = append(rev, entry{task: b.asTask(), tag: w.tag()})
		w = next
	}
	entries := make([]entry, len(rev))
	for i, e := range rev {
		entries[len(rev)-1-i] = e
	}
	return Batch{entries: entries}
}

// Empty reports whether the batch drained nothing.
func (batch Batch) Empty() bool { return len(batch.entries) == 0 }

// Each calls fn once per entry in the batch, oldest first, with the
// tag it carried. fn owns the reference the buffer held on each
// entry: a Normal task must be run and released (or have its
// reference transferred onward, as Defer does); a Reverse entry is an
// unconsumed sentinel that must be cached for reuse, never evaluated
// by its own owner.
func (batch Batch) Each(fn func(t Task, tag Tag)) {
	for _, e := range batch.entries {
		fn(e.task, e.tag)
	}
}
