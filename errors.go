// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

import "code.hybscloud.com/iox"

// ErrWouldBlock indicates a non-blocking operation could not
// complete immediately.
//
// For Future.TryGet: the task has not completed yet.
//
// ErrWouldBlock is a control flow signal, not a failure — the caller
// should retry, typically with an [iox.Backoff], rather than
// propagating the error upward.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would
// block. Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// TryGet reports f's value without blocking. It returns
// ErrWouldBlock if the task has not completed yet.
func (f Future[T]) TryGet() (T, error) {
	if !f.task.link().isComplete() {
		var zero T
		return zero, ErrWouldBlock
	}
	return f.task.value(), nil
}
