// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package access - role grants and explicit caller context
//
// every mutating operation receives the caller identity in a Context
// value; there is no ambient "current caller"
package access

import (
	"sync"

	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/identity"
)

// Role - a named capability
type Role int

// all possible roles
const (
	Commit Role = iota
	Apply
	Emergency
	Admin
	maximum
)

// String - role name for use by the fmt package (for %s)
func (role Role) String() string {
	switch role {
	case Commit:
		return "commit"
	case Apply:
		return "apply"
	case Emergency:
		return "emergency"
	case Admin:
		return "admin"
	default:
		return "*unknown*"
	}
}

// RoleFromString - parse a role name from configuration
func RoleFromString(s string) (Role, error) {
	switch s {
	case "commit":
		return Commit, nil
	case "apply":
		return Apply, nil
	case "emergency":
		return Emergency, nil
	case "admin":
		return Admin, nil
	default:
		return maximum, fault.ValidationErrorf("unknown role: %q", s)
	}
}

// Context - the explicit caller of a mutating operation
type Context struct {
	Caller identity.Identity
}

// Grants - the role assignment table
type Grants struct {
	sync.RWMutex
	grants map[identity.Identity]uint32
}

// NewGrants - create an empty role table
func NewGrants() *Grants {
	return &Grants{
		grants: make(map[identity.Identity]uint32),
	}
}

// Grant - add roles to an identity
func (g *Grants) Grant(id identity.Identity, roles ...Role) {
	g.Lock()
	defer g.Unlock()
	mask := g.grants[id]
	for _, role := range roles {
		mask |= 1 << uint(role)
	}
	g.grants[id] = mask
}

// Revoke - remove roles from an identity
func (g *Grants) Revoke(id identity.Identity, roles ...Role) {
	g.Lock()
	defer g.Unlock()
	mask := g.grants[id]
	for _, role := range roles {
		mask &^= 1 << uint(role)
	}
	if 0 == mask {
		delete(g.grants, id)
	} else {
		g.grants[id] = mask
	}
}

// HasRole - true if an identity holds a role
func (g *Grants) HasRole(id identity.Identity, role Role) bool {
	g.RLock()
	defer g.RUnlock()
	return 0 != g.grants[id]&(1<<uint(role))
}

// Check - require the caller of a context to hold a role
func (g *Grants) Check(ctx Context, role Role) error {
	if !g.HasRole(ctx.Caller, role) {
		return fault.ErrNotAuthorised
	}
	return nil
}
