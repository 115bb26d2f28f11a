// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/routemark-network/routemarkd/access"
	"github.com/routemark-network/routemarkd/address"
	"github.com/routemark-network/routemarkd/fault"
	"github.com/routemark-network/routemarkd/handler"
	"github.com/routemark-network/routemarkd/identity"
	"github.com/routemark-network/routemarkd/merkle"
	"github.com/routemark-network/routemarkd/route"
	"github.com/routemark-network/routemarkd/storage"
)

// test files
const (
	databaseFileName = "test-routing.leveldb"
	logDirectory     = "testing"
)

const testDelay = 10 * time.Minute

// fakeResolver - an in-memory registry double
//
// fingerprints can be changed mid-test to simulate code substitution
type fakeResolver struct {
	code map[address.Address][]byte
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{code: make(map[address.Address][]byte)}
}

func (f *fakeResolver) install(n int) (address.Address, merkle.Digest) {
	code := []byte(fmt.Sprintf("function handle(payload) return payload .. ' via %d' end", n))
	var addr address.Address
	addr[0] = byte(n)
	addr[1] = byte(n >> 8)
	f.code[addr] = code
	return addr, handler.Fingerprint(code)
}

func (f *fakeResolver) CodeFingerprint(addr address.Address) (merkle.Digest, error) {
	code, ok := f.code[addr]
	if !ok {
		return merkle.Digest{}, fault.ErrUnknownHandler
	}
	return handler.Fingerprint(code), nil
}

func (f *fakeResolver) HandlerAt(addr address.Address) (handler.Handler, error) {
	code, ok := f.code[addr]
	if !ok {
		return nil, fault.ErrUnknownHandler
	}
	return handler.NewLua(code), nil
}

type testEnv struct {
	table     *Table
	resolver  *fakeResolver
	committer access.Context
	applier   access.Context
	guardian  access.Context
	admin     access.Context
	outsider  access.Context
	now       time.Time
}

func setup(t *testing.T) *testEnv {
	os.RemoveAll(databaseFileName)
	os.RemoveAll(logDirectory)
	os.Mkdir(logDirectory, 0700)
	logger.Initialise(logger.Configuration{
		Directory: logDirectory,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	})
	if err := storage.Initialise(databaseFileName); nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}

	newIdentity := func() (identity.Identity, access.Context) {
		id, _, err := identity.New()
		assert.NoError(t, err, "identity")
		return id, access.Context{Caller: id}
	}

	grants := access.NewGrants()
	committer, committerCtx := newIdentity()
	applier, applierCtx := newIdentity()
	guardian, guardianCtx := newIdentity()
	admin, adminCtx := newIdentity()
	_, outsiderCtx := newIdentity()
	grants.Grant(committer, access.Commit)
	grants.Grant(applier, access.Apply)
	grants.Grant(guardian, access.Emergency)
	grants.Grant(admin, access.Admin)

	resolver := newFakeResolver()
	table, err := New(grants, resolver, testDelay, storage.Pool.ManifestState, storage.Pool.ConsumedRoots, storage.Pool.Routes, storage.Pool.HandlerIndex, storage.Pool.StagedRoutes)
	assert.NoError(t, err, "new table")

	env := &testEnv{
		table:     table,
		resolver:  resolver,
		committer: committerCtx,
		applier:   applierCtx,
		guardian:  guardianCtx,
		admin:     adminCtx,
		outsider:  outsiderCtx,
		now:       time.Unix(1700000000, 0).UTC(),
	}
	table.nowFunc = func() time.Time { return env.now }
	return env
}

func teardown(t *testing.T) {
	storage.Finalise()
	logger.Finalise()
	os.RemoveAll(databaseFileName)
	os.RemoveAll(logDirectory)
}

// build a manifest of n routes over freshly installed handlers and
// return its entries, root and per-entry proofs
func buildManifest(env *testEnv, n int) ([]route.Entry, merkle.Digest, [][]merkle.Digest, [][]bool) {
	entries := make([]route.Entry, n)
	leaves := make([]merkle.Digest, n)
	for i := 0; i < n; i += 1 {
		addr, fingerprint := env.resolver.install(i + 1)
		var key route.Key
		key[0] = byte(i)
		key[1] = byte(i >> 8)
		entries[i] = route.Entry{Key: key, Handler: addr, Fingerprint: fingerprint}
		leaves[i] = entries[i].LeafDigest()
	}
	root := merkle.Root(leaves)
	proofs := make([][]merkle.Digest, n)
	directions := make([][]bool, n)
	for i := 0; i < n; i += 1 {
		proofs[i], directions[i], _ = merkle.Proof(leaves, i)
	}
	return entries, root, proofs, directions
}

// drive a manifest through commit and apply, leaving it pending
func commitAndApply(t *testing.T, env *testEnv, n int) ([]route.Entry, merkle.Digest) {
	entries, root, proofs, directions := buildManifest(env, n)
	epoch := env.table.State().ActiveEpoch + 1
	assert.NoError(t, env.table.Commit(env.committer, root, epoch, false), "commit")
	assert.NoError(t, env.table.Apply(env.applier, entries, proofs, directions), "apply")
	return entries, root
}

func TestCommitApplyActivate(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, root := commitAndApply(t, env, 5)

	state := env.table.State()
	assert.Equal(t, root, state.PendingRoot, "pending root")
	assert.Equal(t, uint64(1), state.PendingEpoch, "pending epoch")
	assert.Equal(t, 5, state.Staged, "staged keys")

	env.now = env.now.Add(testDelay)
	assert.NoError(t, env.table.Activate(env.applier), "activate")

	state = env.table.State()
	assert.Equal(t, root, state.ActiveRoot, "active root")
	assert.Equal(t, uint64(1), state.ActiveEpoch, "active epoch")
	assert.Equal(t, uint64(0), state.PendingEpoch, "pending cleared")
	assert.Equal(t, 0, state.Staged, "staged cleared")
	assert.True(t, env.table.IsConsumed(root), "root consumed")

	// every manifest route resolves and dispatches
	for _, entry := range entries {
		resolved, err := env.table.Resolve(entry.Key)
		assert.NoError(t, err, "resolve")
		assert.Equal(t, entry.Handler, resolved.Handler, "resolved handler")

		result, err := env.table.Dispatch(entry.Key, []byte("ping"))
		assert.NoError(t, err, "dispatch")
		assert.Contains(t, string(result), "ping", "handler ran")
	}
}

func TestCommitWrongEpoch(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	_, root, _, _ := buildManifest(env, 1)
	err := env.table.Commit(env.committer, root, 2, false)
	assert.Equal(t, fault.ErrWrongEpoch, err, "skipped epoch")
	assert.True(t, fault.IsErrState(err), "error class")

	err = env.table.Commit(env.outsider, root, 1, false)
	assert.Equal(t, fault.ErrNotAuthorised, err, "unauthorised commit")
}

func TestCommitOverwrite(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	_, root1, _, _ := buildManifest(env, 1)
	root2 := merkle.NewDigest([]byte("replacement manifest"))

	assert.NoError(t, env.table.Commit(env.committer, root1, 1, false), "first commit")

	err := env.table.Commit(env.committer, root2, 1, false)
	assert.Equal(t, fault.ErrPendingRootExists, err, "silent replacement")

	// recommitting the identical root is allowed without the flag
	assert.NoError(t, env.table.Commit(env.committer, root1, 1, false), "recommit same root")

	assert.NoError(t, env.table.Commit(env.committer, root2, 1, true), "explicit overwrite")
	assert.Equal(t, root2, env.table.State().PendingRoot, "replaced root")
}

// Scenario A: activation succeeds exactly at the eligibility instant
func TestActivationTimelock(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	commitAndApply(t, env, 2)

	env.now = env.now.Add(testDelay - time.Second)
	err := env.table.Activate(env.applier)
	assert.True(t, fault.IsErrTiming(err), "one second early")

	env.now = env.now.Add(time.Second)
	assert.NoError(t, env.table.Activate(env.applier), "exactly on time")
}

// the grace window extends the timelock
func TestActivationGraceWindow(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	grace := 5 * time.Minute
	assert.NoError(t, env.table.SetGraceWindow(env.admin, grace), "set grace")

	commitAndApply(t, env, 1)

	env.now = env.now.Add(testDelay)
	err := env.table.Activate(env.applier)
	assert.True(t, fault.IsErrTiming(err), "inside grace window")

	env.now = env.now.Add(grace)
	assert.NoError(t, env.table.Activate(env.applier), "after grace window")
}

func TestActivateWithoutPending(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	err := env.table.Activate(env.applier)
	assert.Equal(t, fault.ErrNoPendingRoot, err, "idle table")
}

// an activated root can never come back
func TestReplayProtection(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	_, root := commitAndApply(t, env, 1)
	env.now = env.now.Add(testDelay)
	assert.NoError(t, env.table.Activate(env.applier), "activate")

	err := env.table.Commit(env.committer, root, 2, false)
	assert.Equal(t, fault.ErrRootAlreadyConsumed, err, "replayed root")
	assert.True(t, fault.IsErrState(err), "error class")
}

// Scenario B: code swapped between apply and activate
func TestActivateDetectsCodeSubstitution(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, _ := commitAndApply(t, env, 3)

	// replace the code behind one applied handler
	env.resolver.code[entries[1].Handler] = []byte("function handle(payload) return 'evil' end")

	env.now = env.now.Add(testDelay)
	err := env.table.Activate(env.applier)
	assert.Equal(t, fault.ErrCodeFingerprintMismatch, err, "substituted code")
	assert.True(t, fault.IsErrIntegrity(err), "error class")

	// table stays pending, nothing was promoted
	state := env.table.State()
	assert.Equal(t, uint64(0), state.ActiveEpoch, "not promoted")
	assert.Equal(t, uint64(1), state.PendingEpoch, "still pending")
}

func TestApplyRejectsBadProof(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, root, proofs, directions := buildManifest(env, 4)
	assert.NoError(t, env.table.Commit(env.committer, root, 1, false), "commit")

	// flipping one direction bit must fail even though the digests
	// are untouched
	flipped := make([]bool, len(directions[2]))
	copy(flipped, directions[2])
	flipped[0] = !flipped[0]
	bad := append([][]bool{}, directions...)
	bad[2] = flipped

	err := env.table.Apply(env.applier, entries, proofs, bad)
	assert.Equal(t, fault.ErrProofVerificationFailed, err, "wrong direction bit")

	// nothing was written
	for _, entry := range entries {
		_, err := env.table.Resolve(entry.Key)
		assert.Equal(t, fault.ErrUnknownRoute, err, "route map unchanged")
	}
}

func TestApplyRejectsFingerprintMismatch(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, root, proofs, directions := buildManifest(env, 1)
	assert.NoError(t, env.table.Commit(env.committer, root, 1, false), "commit")

	// live code changed after the manifest was built
	env.resolver.code[entries[0].Handler] = []byte("function handle(payload) return 'other' end")

	err := env.table.Apply(env.applier, entries, proofs, directions)
	assert.Equal(t, fault.ErrCodeFingerprintMismatch, err, "stale fingerprint")
}

func TestApplyDuplicateKeys(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, root, proofs, directions := buildManifest(env, 2)
	assert.NoError(t, env.table.Commit(env.committer, root, 1, false), "commit")

	entries[1].Key = entries[0].Key
	err := env.table.Apply(env.applier, entries, proofs, directions)
	assert.Equal(t, fault.ErrDuplicateRouteKey, err, "duplicate key")
	assert.Equal(t, 0, env.table.State().Routes, "route map unchanged")
}

// a batch of exactly maxBatchSize succeeds, one more fails
func TestApplyBatchLimit(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	limit := 4
	assert.NoError(t, env.table.SetMaxBatchSize(env.admin, limit), "set limit")

	entries, root, proofs, directions := buildManifest(env, limit+1)
	assert.NoError(t, env.table.Commit(env.committer, root, 1, false), "commit")

	err := env.table.Apply(env.applier, entries, proofs, directions)
	assert.Equal(t, fault.ErrBatchTooLarge, err, "limit exceeded")
	assert.True(t, fault.IsErrResource(err), "error class")

	assert.NoError(t, env.table.Apply(env.applier, entries[:limit], proofs[:limit], directions[:limit]), "at limit")
}

func TestApplyWithoutPending(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, _, proofs, directions := buildManifest(env, 1)
	err := env.table.Apply(env.applier, entries, proofs, directions)
	assert.Equal(t, fault.ErrNoPendingRoot, err, "nothing committed")
}

func TestDispatchFailsClosed(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	var unknown route.Key
	unknown[0] = 0xff
	_, err := env.table.Dispatch(unknown, []byte("x"))
	assert.Equal(t, fault.ErrUnknownRoute, err, "unknown key")
	assert.True(t, fault.IsErrNotFound(err), "error class")
}

// frozen blocks dispatch but never the upgrade protocol
func TestFreeze(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, _ := commitAndApply(t, env, 1)

	assert.Equal(t, fault.ErrNotAuthorised, env.table.Freeze(env.outsider), "freeze needs role")
	assert.NoError(t, env.table.Freeze(env.guardian), "freeze")

	_, err := env.table.Dispatch(entries[0].Key, []byte("x"))
	assert.Equal(t, fault.ErrFrozen, err, "frozen dispatch")

	// governance still works while frozen
	env.now = env.now.Add(testDelay)
	assert.NoError(t, env.table.Activate(env.applier), "activate while frozen")

	assert.NoError(t, env.table.Thaw(env.guardian), "thaw")
	_, err = env.table.Dispatch(entries[0].Key, []byte("x"))
	assert.NoError(t, err, "dispatch after thaw")
}

func TestHandlerIndex(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	// two keys on one handler, one on another
	addr1, fp1 := env.resolver.install(1)
	addr2, fp2 := env.resolver.install(2)
	entries := []route.Entry{
		{Key: route.Key{1}, Handler: addr1, Fingerprint: fp1},
		{Key: route.Key{2}, Handler: addr1, Fingerprint: fp1},
		{Key: route.Key{3}, Handler: addr2, Fingerprint: fp2},
	}
	leaves := make([]merkle.Digest, len(entries))
	for i, entry := range entries {
		leaves[i] = entry.LeafDigest()
	}
	root := merkle.Root(leaves)
	proofs := make([][]merkle.Digest, len(entries))
	directions := make([][]bool, len(entries))
	for i := range entries {
		proofs[i], directions[i], _ = merkle.Proof(leaves, i)
	}

	assert.NoError(t, env.table.Commit(env.committer, root, 1, false), "commit")
	assert.NoError(t, env.table.Apply(env.applier, entries, proofs, directions), "apply")

	assert.ElementsMatch(t, []route.Key{{1}, {2}}, env.table.RoutesFor(addr1), "handler one keys")
	assert.ElementsMatch(t, []route.Key{{3}}, env.table.RoutesFor(addr2), "handler two keys")
	assert.Len(t, env.table.Handlers(), 2, "handlers")

	// rebinding key 1 to handler two must drop it from handler one
	rebind := []route.Entry{{Key: route.Key{1}, Handler: addr2, Fingerprint: fp2}}
	rebindLeaves := []merkle.Digest{rebind[0].LeafDigest()}
	rebindRoot := merkle.Root(rebindLeaves)
	proof, direction, _ := merkle.Proof(rebindLeaves, 0)

	assert.NoError(t, env.table.Commit(env.committer, rebindRoot, 1, true), "overwrite commit")
	assert.NoError(t, env.table.Apply(env.applier, rebind, [][]merkle.Digest{proof}, [][]bool{direction}), "rebind")

	assert.ElementsMatch(t, []route.Key{{2}}, env.table.RoutesFor(addr1), "handler one after rebind")
	assert.ElementsMatch(t, []route.Key{{1}, {3}}, env.table.RoutesFor(addr2), "handler two after rebind")
}

// a restarted table resumes from the persisted state
func TestReload(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, root := commitAndApply(t, env, 3)
	env.now = env.now.Add(testDelay)
	assert.NoError(t, env.table.Activate(env.applier), "activate")

	reloaded, err := New(env.table.grants, env.resolver, testDelay, storage.Pool.ManifestState, storage.Pool.ConsumedRoots, storage.Pool.Routes, storage.Pool.HandlerIndex, storage.Pool.StagedRoutes)
	assert.NoError(t, err, "reload")

	state := reloaded.State()
	assert.Equal(t, root, state.ActiveRoot, "active root survives")
	assert.Equal(t, uint64(1), state.ActiveEpoch, "epoch survives")
	assert.Equal(t, 3, state.Routes, "routes survive")
	assert.Equal(t, 0, state.Staged, "staged purged by activation")

	for _, entry := range entries {
		resolved, err := reloaded.Resolve(entry.Key)
		assert.NoError(t, err, "resolve after reload")
		assert.Equal(t, entry, resolved, "entry survives")
	}
}

// the staged set survives a restart between apply and activate so the
// activation re-verification still covers every applied key
func TestStagedSetSurvivesRestart(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	entries, _ := commitAndApply(t, env, 3)

	// simulated process restart
	storage.Finalise()
	assert.NoError(t, storage.Initialise(databaseFileName), "reopen storage")

	reloaded, err := New(env.table.grants, env.resolver, testDelay, storage.Pool.ManifestState, storage.Pool.ConsumedRoots, storage.Pool.Routes, storage.Pool.HandlerIndex, storage.Pool.StagedRoutes)
	assert.NoError(t, err, "reload")
	reloaded.nowFunc = func() time.Time { return env.now }

	assert.Equal(t, 3, reloaded.State().Staged, "staged keys survive restart")

	// code swapped while the process was down
	env.resolver.code[entries[0].Handler] = []byte("function handle(payload) return 'evil' end")

	env.now = env.now.Add(testDelay)
	err = reloaded.Activate(env.applier)
	assert.Equal(t, fault.ErrCodeFingerprintMismatch, err, "substituted code after restart")
	assert.True(t, fault.IsErrIntegrity(err), "error class")
}

// an overwrite commit voids the old staged keys persistently, not just
// in memory
func TestCommitOverwritePurgesStagedKeys(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	commitAndApply(t, env, 2)

	root2 := merkle.NewDigest([]byte("replacement manifest"))
	assert.NoError(t, env.table.Commit(env.committer, root2, 1, true), "overwrite commit")
	assert.Equal(t, 0, env.table.State().Staged, "staged voided")

	storage.Finalise()
	assert.NoError(t, storage.Initialise(databaseFileName), "reopen storage")

	reloaded, err := New(env.table.grants, env.resolver, testDelay, storage.Pool.ManifestState, storage.Pool.ConsumedRoots, storage.Pool.Routes, storage.Pool.HandlerIndex, storage.Pool.StagedRoutes)
	assert.NoError(t, err, "reload")
	assert.Equal(t, 0, reloaded.State().Staged, "staged voided on disk")
}

// a commit whose storage transaction fails must leave no pending root
// in memory
func TestCommitLeavesNoPendingOnStorageFailure(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	_, root, _, _ := buildManifest(env, 1)

	// occupy the single transaction slot so the commit cannot open one
	blocker, err := storage.NewTransaction()
	assert.NoError(t, err, "blocker transaction")
	defer blocker.Abort()

	err = env.table.Commit(env.committer, root, 1, false)
	assert.Equal(t, fault.ErrTransactionInUse, err, "commit fails")

	state := env.table.State()
	assert.Equal(t, uint64(0), state.PendingEpoch, "no pending epoch recorded")
	assert.Equal(t, merkle.Digest{}, state.PendingRoot, "no pending root recorded")
}

func TestSetterClamps(t *testing.T) {
	env := setup(t)
	defer teardown(t)

	assert.Equal(t, fault.ErrNotAuthorised, env.table.SetMaxBatchSize(env.outsider, 10), "setter needs role")

	assert.NoError(t, env.table.SetMaxBatchSize(env.admin, 100000), "huge request")
	assert.Equal(t, access.MaximumBatchSize, env.table.State().MaxBatchSize, "clamped high")

	assert.NoError(t, env.table.SetMaxBatchSize(env.admin, 0), "zero request")
	assert.Equal(t, access.MinimumBatchSize, env.table.State().MaxBatchSize, "clamped low")

	assert.NoError(t, env.table.SetGraceWindow(env.admin, -time.Hour), "negative grace")
	assert.Equal(t, time.Duration(0), env.table.State().GraceWindow, "clamped to zero")

	assert.NoError(t, env.table.SetGraceWindow(env.admin, 48*time.Hour), "oversized grace")
	assert.Equal(t, access.MaximumGraceWindow, env.table.State().GraceWindow, "clamped to maximum")
}
