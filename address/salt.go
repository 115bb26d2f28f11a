// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"encoding/hex"

	"github.com/routemark-network/routemarkd/fault"
)

// SaltLength - number of bytes in a deployment salt
const SaltLength = 32

// Salt - planner supplied value separating otherwise identical deployments
type Salt [SaltLength]byte

// SaltFromBytes - convert and validate a binary byte slice to a salt
func SaltFromBytes(salt *Salt, buffer []byte) error {
	if SaltLength != len(buffer) {
		return fault.ErrInvalidSalt
	}
	copy(salt[:], buffer)
	return nil
}

// String - hex representation for use by the fmt package (for %s)
func (salt Salt) String() string {
	return hex.EncodeToString(salt[:])
}

// MarshalText - convert salt to hex text
func (salt Salt) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(SaltLength))
	hex.Encode(buffer, salt[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a salt
func (salt *Salt) UnmarshalText(s []byte) error {
	if SaltLength != hex.DecodedLen(len(s)) {
		return fault.ErrInvalidSalt
	}
	if _, err := hex.Decode(salt[:], s); nil != err {
		return fault.ErrInvalidSalt
	}
	return nil
}
