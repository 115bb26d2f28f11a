// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/identity"
)

func TestGrantRevoke(t *testing.T) {

	alice, _, err := identity.New()
	assert.NoError(t, err, "generate identity")
	bob, _, err := identity.New()
	assert.NoError(t, err, "generate identity")

	g := access.NewGrants()
	g.Grant(alice, access.Commit, access.Apply)
	g.Grant(bob, access.Emergency)

	assert.True(t, g.HasRole(alice, access.Commit), "alice commit")
	assert.True(t, g.HasRole(alice, access.Apply), "alice apply")
	assert.False(t, g.HasRole(alice, access.Admin), "alice admin")
	assert.False(t, g.HasRole(bob, access.Commit), "bob commit")
	assert.True(t, g.HasRole(bob, access.Emergency), "bob emergency")

	g.Revoke(alice, access.Commit)
	assert.False(t, g.HasRole(alice, access.Commit), "alice commit after revoke")
	assert.True(t, g.HasRole(alice, access.Apply), "alice apply after revoke")
}

func TestCheck(t *testing.T) {

	alice, _, err := identity.New()
	assert.NoError(t, err, "generate identity")

	g := access.NewGrants()
	g.Grant(alice, access.Admin)

	err = g.Check(access.Context{Caller: alice}, access.Admin)
	assert.NoError(t, err, "authorised caller")

	err = g.Check(access.Context{Caller: alice}, access.Commit)
	assert.Equal(t, fault.ErrNotAuthorised, err, "unauthorised caller")
	assert.True(t, fault.IsErrAuthorization(err), "error class")

	// the zero identity never holds a role
	err = g.Check(access.Context{}, access.Admin)
	assert.Equal(t, fault.ErrNotAuthorised, err, "zero identity")
}

func TestClamps(t *testing.T) {

	assert.Equal(t, access.MinimumBatchSize, access.ClampBatchSize(0), "batch low")
	assert.Equal(t, 100, access.ClampBatchSize(100), "batch in range")
	assert.Equal(t, access.MaximumBatchSize, access.ClampBatchSize(100000), "batch high")

	assert.Equal(t, access.MinimumGraceWindow, access.ClampGraceWindow(-time.Hour), "grace low")
	assert.Equal(t, time.Hour, access.ClampGraceWindow(time.Hour), "grace in range")
	assert.Equal(t, access.MaximumGraceWindow, access.ClampGraceWindow(1000*time.Hour), "grace high")
}

func TestRoleNames(t *testing.T) {

	for _, s := range []string{"commit", "apply", "emergency", "admin"} {
		role, err := access.RoleFromString(s)
		assert.NoError(t, err, "parse role")
		assert.Equal(t, s, role.String(), "round trip")
	}

	_, err := access.RoleFromString("supervisor")
	assert.True(t, fault.IsErrValidation(err), "unknown role")
}
