// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import "sync/atomic"

// liveTasks counts every base currently between init and destroy,
// across every graph and executor in the process.
var liveTasks atomic.Int64

// LiveTasks reports how many task objects are currently allocated and
// not yet destroyed. It exists to make spec.md's reference-count
// balance invariant mechanically checkable from tests; production
// code has no use for it.
func LiveTasks() int64 {
	return liveTasks.Load()
}
