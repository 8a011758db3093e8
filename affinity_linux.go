// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package rabid

import "golang.org/x/sys/unix"

// pinCurrentThread binds the calling OS thread to cpu. The caller
// must have already called runtime.LockOSThread — otherwise the Go
// scheduler is free to move the goroutine to a different thread right
// after this call returns, and the pinning is lost.
func pinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
