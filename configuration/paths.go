// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"path/filepath"
)

// EnsureAbsolute - prepend a directory to a relative file name
//
// absolute names pass through unchanged
func EnsureAbsolute(directory string, fileName string) string {
	if filepath.IsAbs(fileName) {
		return filepath.Clean(fileName)
	}
	return filepath.Clean(filepath.Join(directory, fileName))
}
