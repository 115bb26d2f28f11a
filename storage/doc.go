// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - LevelDB pools for the routing and registry state
//
// every pool occupies a fixed one byte key prefix so the layout is
// explicit and can only change through a versioned migration:
//
//	M → manifest state record
//	C → consumed roots
//	R → active route map
//	H → handler index
//	K → content chunk mappings
//	D → deployment records
//	F → fee ledger
//	Z → test data
//
// the 0x00 VERSION key records the schema version; opening a database
// written by a newer binary is refused
//
// multi pool updates go through a Transaction so an apply or a batch
// deployment either lands completely or not at all
package storage
