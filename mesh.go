// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

// mesh is the fully connected set of buffers joining every worker to
// every other worker, including itself — the Go shape of
// interconnect.h's Direct topology: one Buffer per ordered pair
// (from, to), addressed by a closed-form index instead of a
// two-dimensional lookup, so sending never indirects through a slice
// of slices.
//
// The self-pair (from == to) is not special-cased away: a worker
// sending to itself still goes through a real Buffer, the same way
// Async(ex, i, fn) called from inside worker i reaches worker i.
// This keeps worker.go's send path uniform and bounds stack depth —
// nothing ever calls Evaluate reentrantly just because source and
// destination coincide.
type mesh struct {
	n       int
	buffers []Buffer
}

func newMesh(n int) *mesh {
	return &mesh{n: n, buffers: make([]Buffer, n*n)}
}

// index is the closed-form (from, to) → slot mapping. For n == 1 it
// always yields 0: the single worker's only buffer is its own
// self-loop, and the formula degenerates correctly without a
// separate branch.
func (m *mesh) index(from, to int) int {
	return from*m.n + to
}

func (m *mesh) buffer(from, to int) *Buffer {
	return &m.buffers[m.index(from, to)]
}

// inbound returns the n buffers that feed worker id, one per sender
// (including id itself), ordered by sender index.
func (m *mesh) inbound(id int) []*Buffer {
	bufs := make([]*Buffer, m.n)
	for from := 0; from < m.n; from++ {
		bufs[from] = m.buffer(from, id)
	}
	return bufs
}
