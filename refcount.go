// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

// Reference counting mirrors referenced.h's Object/Pointer pair: a
// relaxed fetch-add on acquire, a relaxed fetch-add of -1 on release
// that frees the object when the count was observed to be exactly
// one. The spec treats a generic reference-counted smart pointer as a
// stock primitive of the host language and out of scope to redesign;
// Go has none, so this is the minimal, non-generic translation rather
// than a reusable Pointer[T] — there are no destructors to drive an
// RAII wrapper with.

// acquire adds one reference. b may be nil (no-op), matching the
// friend functions in referenced.h.
func acquire(b *base) {
	if b == nil {
		return
	}
	b.refs.AddRelaxed(1)
}

// release drops one reference, destructing the task when it reaches
// zero. b may be nil.
func release(b *base) {
	if b == nil {
		return
	}
	if b.refs.AddRelaxed(-1) == 0 {
		b.destroy()
	}
}
