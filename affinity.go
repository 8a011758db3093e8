// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import (
	"runtime"
	"sync"
)

// pinCurrentThread is the one platform-specific primitive this
// package needs, for CPU affinity only; see affinity_linux.go and
// affinity_other.go. Worker identity itself is tracked independently
// of any OS thread id (below), since CPU pinning is an optional,
// Linux-only optimization that must not gate whether Current(),
// Available(), and the worker-routed Dispatcher can find the calling
// worker at all.
//
// workersByGoroutine is a map from goroutine id to the worker running
// on it, the closest Go gets to the original source's thread_local
// Worker* in Executor.h without actually having thread-local storage
// for arbitrary types. It is keyed by goroutine id rather than OS
// thread id: a worker's loop goroutine never migrates goroutines, but
// on platforms with no cheap OS thread id, or with affinity disabled,
// it is not even guaranteed to keep running on the same OS thread, so
// OS thread id is the wrong identity to track here regardless of
// platform.
var (
	workersMu          sync.RWMutex
	workersByGoroutine = map[uint64]*worker{}
)

func registerWorker(w *worker) {
	gid := goroutineID()
	workersMu.Lock()
	workersByGoroutine[gid] = w
	workersMu.Unlock()
}

func unregisterWorker() {
	gid := goroutineID()
	workersMu.Lock()
	delete(workersByGoroutine, gid)
	workersMu.Unlock()
}

// lookupWorker returns the worker running on the calling goroutine, or
// nil if the calling goroutine is not a worker's own loop goroutine.
func lookupWorker() *worker {
	gid := goroutineID()
	workersMu.RLock()
	w := workersByGoroutine[gid]
	workersMu.RUnlock()
	return w
}

// goroutineID parses the current goroutine's id out of its own stack
// trace header ("goroutine 123 [running]:"). This is the same
// technique eventloop.Loop.getGoroutineID uses to recognize its own
// loop goroutine: the runtime exposes no public accessor for
// goroutine id, but runtime.Stack always prints one, on every
// platform this package builds for.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
