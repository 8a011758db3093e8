// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

// Container is a one-shot typed storage cell: construct or capture a
// value at most once, read it back any number of times, destruct it
// when the owning task goes away.
//
// Container[T] is the Go shape of capture.h's Captured<Type>. A
// Captured<void> specialization exists in the original because C++
// cannot store a value of type void; Go has no such restriction, so
// Container[struct{}] already degenerates to statelessness without a
// separate code path.
type Container[T any] struct {
	value T
}

// Construct stores v directly.
func (c *Container[T]) Construct(v T) {
	c.value = v
}

// Capture stores the result of calling fn.
func (c *Container[T]) Capture(fn func() T) {
	c.value = fn()
}

// Destruct clears the stored value so it can be garbage collected
// independently of the container itself.
func (c *Container[T]) Destruct() {
	var zero T
	c.value = zero
}

// Value returns the stored value. Calling it before Construct/Capture
// or after Destruct returns the zero value.
func (c *Container[T]) Value() T {
	return c.value
}
