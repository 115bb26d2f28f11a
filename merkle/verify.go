// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"github.com/routemark-network/routemarkd/fault"
)

// MaximumProofLength - longest acceptable proof
//
// 2^64 leaves is unreachable so any longer proof is malformed
const MaximumProofLength = 64

// VerifyOrdered - walk a proof bottom-up to the expected root
//
// at each level the running digest and the sibling are combined in
// the order given by the direction bit: a true bit places the sibling
// on the left
//
// a proof using the wrong direction bit at any level fails even if
// the swapped order would hash to the root
func VerifyOrdered(leaf Digest, proof []Digest, leftSibling []bool, root Digest) error {

	if len(proof) != len(leftSibling) {
		return fault.ErrProofLengthMismatch
	}
	if len(proof) > MaximumProofLength {
		return fault.ValidationErrorf("merkle proof too long: %d levels exceeds maximum: %d", len(proof), MaximumProofLength)
	}

	h := leaf
	for i, sibling := range proof {
		if leftSibling[i] {
			h = combine(sibling, h)
		} else {
			h = combine(h, sibling)
		}
	}

	if h != root {
		return fault.ErrProofVerificationFailed
	}
	return nil
}
