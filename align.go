// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rabid

// cacheLine is the assumed cache line size used to pad hot atomics
// apart so two workers touching adjacent fields in opposite
// directions never false-share a line.
const cacheLine = 64

// pad fills a full cache line. Used between unrelated atomic fields
// in the same struct.
type pad [cacheLine]byte

// padAfterWord pads out a single machine word to a full cache line.
type padAfterWord [cacheLine - 8]byte
