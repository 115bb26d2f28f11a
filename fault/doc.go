// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// Errors are grouped into classes so that callers can react to the
// kind of failure without matching individual instances:
//
//	AuthorizationError - caller lacks a required role
//	ValidationError    - malformed proof, duplicate keys, bad size/format
//	StateError         - wrong epoch, consumed root, frozen instance
//	TimingError        - activation attempted before eligibility
//	IntegrityError     - code fingerprint mismatch
//	ResourceError      - batch or size limit exceeded, fee not satisfied
//	NotFoundError      - unresolvable route, handler or record
//	ProcessError       - internal processing failures
package fault
