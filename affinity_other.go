// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package rabid

// pinCurrentThread is a no-op outside Linux: CPU affinity pinning is
// Linux-only infrastructure. Worker identity (Current, Available, and
// mesh-routed dispatch) does not depend on it — see affinity.go — so
// this only costs a platform the scheduling guarantee, not the mesh.
func pinCurrentThread(cpu int) error {
	return nil
}
