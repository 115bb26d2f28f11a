// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"github.com/routemark-network/routemarkd/fault"
)

// combine two digests preserving their order
//
// order matters: the tree is built with explicit left/right
// assignment, there is no canonical sorting of siblings
func combine(left Digest, right Digest) Digest {
	var buffer [2 * DigestLength]byte
	copy(buffer[:], left[:])
	copy(buffer[DigestLength:], right[:])
	return NewDigest(buffer[:])
}

// FullTree - compute the full ordered merkle tree from a set of leaf digests
//
// structure is:
//  1. N leaf digests
//  2. level 1..m digests
//  3. merkle root digest
//
// an odd node at the end of a level is paired with itself
func FullTree(leaves []Digest) []Digest {

	leafCount := len(leaves)
	if 0 == leafCount {
		return nil
	}

	// compute length of leaves + all tree levels including root
	totalLength := 1 // all leaves + space for the final root
	for n := leafCount; n > 1; n = (n + 1) / 2 {
		totalLength += n
	}

	tree := make([]Digest, 0, totalLength)
	tree = append(tree, leaves...)

	levelStart := 0
	for workLength := leafCount; workLength > 1; workLength = (workLength + 1) / 2 {
		for i := 0; i < workLength; i += 2 {
			j := i + 1
			if j >= workLength {
				j = i // compensate for odd number
			}
			tree = append(tree, combine(tree[levelStart+i], tree[levelStart+j]))
		}
		levelStart += workLength
	}
	return tree
}

// Root - compute just the merkle root of a set of leaf digests
//
// an empty leaf set yields the zero digest
func Root(leaves []Digest) Digest {
	tree := FullTree(leaves)
	if nil == tree {
		return Digest{}
	}
	return tree[len(tree)-1]
}

// Proof - extract the proof for one leaf of an ordered tree
//
// returns the sibling digests bottom-up and one direction bit per
// level; a true bit means the sibling lies to the left of the running
// digest during verification
func Proof(leaves []Digest, index int) ([]Digest, []bool, error) {

	leafCount := len(leaves)
	if index < 0 || index >= leafCount {
		return nil, nil, fault.ErrInvalidCount
	}

	level := make([]Digest, leafCount)
	copy(level, leaves)

	proof := []Digest{}
	leftSibling := []bool{}

	for len(level) > 1 {
		workLength := len(level)

		sibling := index ^ 1
		if sibling >= workLength {
			sibling = index // odd node pairs with itself
		}
		proof = append(proof, level[sibling])
		leftSibling = append(leftSibling, 1 == index&1)

		next := make([]Digest, 0, (workLength+1)/2)
		for i := 0; i < workLength; i += 2 {
			j := i + 1
			if j >= workLength {
				j = i
			}
			next = append(next, combine(level[i], level[j]))
		}
		level = next
		index /= 2
	}

	return proof, leftSibling, nil
}
