// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package access

import (
	"time"
)

// safe ranges for the runtime tunable parameters
//
// setters clamp rather than reject so an out of range request leaves
// the instance at the nearest safe value
const (
	MinimumBatchSize = 1
	DefaultBatchSize = 64
	MaximumBatchSize = 256

	MinimumGraceWindow = time.Duration(0)
	DefaultGraceWindow = time.Duration(0)
	MaximumGraceWindow = 24 * time.Hour
)

// ClampBatchSize - force a batch size into its safe range
func ClampBatchSize(n int) int {
	if n < MinimumBatchSize {
		return MinimumBatchSize
	}
	if n > MaximumBatchSize {
		return MaximumBatchSize
	}
	return n
}

// ClampGraceWindow - force a grace window into its safe range
func ClampGraceWindow(d time.Duration) time.Duration {
	if d < MinimumGraceWindow {
		return MinimumGraceWindow
	}
	if d > MaximumGraceWindow {
		return MaximumGraceWindow
	}
	return d
}
