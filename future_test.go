// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid_test

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"code.hybscloud.com/rabid"
)

// =============================================================================
// Standalone Promise/Future graphs
// =============================================================================

func TestPromiseCompleteBeforeThen(t *testing.T) {
	p, f := rabid.NewPromise[int]()
	p.Complete(41)

	g := rabid.Then(f, func(v int) int { return v + 1 })
	if got := g.Get(); got != 42 {
		t.Fatalf("Get(): got %d, want 42", got)
	}
}

func TestPromiseThenBeforeComplete(t *testing.T) {
	p, f := rabid.NewPromise[int]()
	g := rabid.Then(f, func(v int) int { return v * 2 })

	go p.Complete(21)

	if got := g.Get(); got != 42 {
		t.Fatalf("Get(): got %d, want 42", got)
	}
}

func TestPromiseCompleteTwicePanics(t *testing.T) {
	p, _ := rabid.NewPromise[int]()
	p.Complete(1)

	defer func() {
		if recover() == nil {
			t.Fatal("Complete twice: expected panic, got none")
		}
	}()
	p.Complete(2)
}

func TestFutureTryGet(t *testing.T) {
	p, f := rabid.NewPromise[string]()

	if _, err := f.TryGet(); !rabid.IsWouldBlock(err) {
		t.Fatalf("TryGet before Complete: got %v, want ErrWouldBlock", err)
	}

	p.Complete("done")

	got, err := f.TryGet()
	if err != nil {
		t.Fatalf("TryGet after Complete: %v", err)
	}
	if got != "done" {
		t.Fatalf("TryGet after Complete: got %q, want %q", got, "done")
	}
}

func TestFutureChainFanOut(t *testing.T) {
	p, f := rabid.NewPromise[int]()

	left := rabid.Then(f, func(v int) int { return v + 1 })
	right := rabid.Then(f, func(v int) int { return v * 10 })

	p.Complete(1)

	if got := left.Get(); got != 2 {
		t.Fatalf("left.Get(): got %d, want 2", got)
	}
	if got := right.Get(); got != 10 {
		t.Fatalf("right.Get(): got %d, want 10", got)
	}
}

// TestPromiseChainLeakCheck is spec.md's S4: a thousand cycles of a
// promise fanning one chain of four Thens, each cycle completed and
// let go. Every base created in a cycle is only actually destroyed
// once its owning Future becomes unreachable and runtime.AddCleanup
// fires (see future.go), so this polls LiveTasks across a few forced
// GCs rather than checking once — the same pattern the standard
// library's own finalizer tests use, since a cleanup is guaranteed to
// run eventually but not synchronously within a single GC() call.
func TestPromiseChainLeakCheck(t *testing.T) {
	before := rabid.LiveTasks()

	const cycles = 1000
	for i := 0; i < cycles; i++ {
		p, f := rabid.NewPromise[int]()
		c := rabid.Then(f, func(v int) int { return v })
		c = rabid.Then(c, func(v int) int { return v + 1 })
		c = rabid.Then(c, func(v int) int { return v + 1 })
		c = rabid.Then(c, func(v int) int { return v * 10 })
		p.Complete(0)
		if got := c.Get(); got != 20 {
			t.Fatalf("cycle %d: Get(): got %d, want 20", i, got)
		}
	}

	var got int64
	for attempt := 0; attempt < 20; attempt++ {
		runtime.GC()
		got = rabid.LiveTasks()
		if got == before {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got != before {
		t.Fatalf("LiveTasks() after %d cycles: got %d, want %d (leaked %d)", cycles, got, before, got-before)
	}
}

// TestPromiseChainCompleteRace is spec.md's S6: for many iterations, a
// helper goroutine calls Then (chain) concurrently with the main
// goroutine calling Complete (complete) on the same predecessor. The
// successor must be evaluated exactly once every time, regardless of
// which side of the race wins.
func TestPromiseChainCompleteRace(t *testing.T) {
	const iterations = 2000

	for i := 0; i < iterations; i++ {
		p, f := rabid.NewPromise[int]()
		var ran atomic.Int32
		chained := make(chan struct{})

		go func() {
			rabid.Then(f, func(v int) int {
				ran.Add(1)
				return v
			})
			close(chained)
		}()

		p.Complete(i)
		<-chained

		if n := ran.Load(); n != 1 {
			t.Fatalf("iteration %d: successor evaluated %d times, want 1", i, n)
		}
		if _, err := f.TryGet(); err != nil {
			t.Fatalf("iteration %d: TryGet after race: %v", i, err)
		}
	}
}
