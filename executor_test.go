// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/rabid"
)

// =============================================================================
// Executor smoke tests
// =============================================================================

func TestAsyncRunsOnDestinationWorker(t *testing.T) {
	ex := rabid.New(rabid.Concurrency(4), rabid.Affinity(false)).Build()
	defer ex.Close()

	for dest := 0; dest < ex.Concurrency(); dest++ {
		dest := dest
		f := rabid.Async(ex, dest, func() int {
			id, ok := rabid.Current()
			if !ok {
				t.Errorf("worker %d: Current() reported not available", dest)
			}
			return id
		})
		if got := f.Get(); got != dest {
			t.Fatalf("Async(%d): ran on worker %d", dest, got)
		}
	}
}

func TestAsyncThenChain(t *testing.T) {
	ex := rabid.New(rabid.Concurrency(4), rabid.Affinity(false)).Build()
	defer ex.Close()

	f := rabid.Async(ex, 0, func() int { return 1 })
	g := rabid.Then(f, func(v int) int { return v + 1 })
	h := rabid.Then(g, func(v int) int { return v + 1 })

	if got := h.Get(); got != 3 {
		t.Fatalf("Get(): got %d, want 3", got)
	}
}

func TestInjectFanOut(t *testing.T) {
	ex := rabid.New(rabid.Concurrency(4), rabid.Affinity(false)).Build()
	defer ex.Close()

	const n = 1000
	var done sync.WaitGroup
	var count atomic.Int64
	done.Add(n)
	for i := 0; i < n; i++ {
		ex.Inject(i%ex.Concurrency(), func() {
			count.Add(1)
			done.Done()
		})
	}
	done.Wait()

	if got := count.Load(); got != n {
		t.Fatalf("count: got %d, want %d", got, n)
	}
}

func TestDeferMovesTask(t *testing.T) {
	ex := rabid.New(rabid.Concurrency(4), rabid.Affinity(false)).Build()
	defer ex.Close()

	var evaluated atomic.Int32
	f := rabid.Async(ex, 0, func() int {
		evaluated.Add(1)
		rabid.Defer(ex, 1)
		return 7
	})

	if got := f.Get(); got != 7 {
		t.Fatalf("Get(): got %d, want 7", got)
	}
	if n := evaluated.Load(); n != 1 {
		t.Fatalf("evaluated %d times, want exactly 1", n)
	}

	// the mesh and worker 1 must still be healthy after absorbing the
	// deferred task's relocated reference release.
	g := rabid.Async(ex, 1, func() int { return 9 })
	if got := g.Get(); got != 9 {
		t.Fatalf("Get() after Defer: got %d, want 9", got)
	}
}

func TestAvailableOutsideWorker(t *testing.T) {
	if rabid.Available() {
		t.Fatal("Available(): got true on the test goroutine, want false")
	}
}

func TestBadWorkerAddressPanics(t *testing.T) {
	ex := rabid.New(rabid.Concurrency(2), rabid.Affinity(false)).Build()
	defer ex.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("Async with out-of-range address: expected panic, got none")
		}
	}()
	rabid.Async(ex, 99, func() int { return 0 })
}
