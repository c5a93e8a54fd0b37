// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package commitment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/hashing"
	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/membership"
	"github.com/luxfi/daovm/vms/daovm/registry"
	"github.com/luxfi/daovm/vms/daovm/state"
)

type testEnv struct {
	store   *Store
	state   *state.State
	log     *events.Log
	owner   ids.ShortID
	member  ids.ShortID
	group   state.GroupID
	members *membership.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	require := require.New(t)

	cfg := config.DefaultConfig()
	s := state.New(memdb.New())
	log := &events.Log{}
	r := registry.New(cfg, s, events.Discard)
	m := membership.New(cfg, s, r, events.Discard)

	owner := ids.GenerateTestShortID()
	group, err := r.Create(owner, []byte("alpha"))
	require.NoError(err)
	member := ids.GenerateTestShortID()
	require.NoError(m.Add(owner, group, member))

	return &testEnv{
		store:   New(s, r, m, log),
		state:   s,
		log:     log,
		owner:   owner,
		member:  member,
		group:   group,
		members: m,
	}
}

func TestSubmitOpensRound(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	entropy := ids.GenerateTestID()
	masked := hashing.HashValue(1)

	require.NoError(env.store.Submit(env.member, env.group, 10, entropy, masked))

	start, err := env.state.GetRoundStart(env.group)
	require.NoError(err)
	require.Equal(uint64(10), start)

	commitments, err := env.store.Commitments(env.group)
	require.NoError(err)
	require.Equal([]state.MemberCommitment{{
		Member: env.member,
		Commitment: state.Commitment{
			Entropy:    entropy,
			MaskedHash: masked,
		},
	}}, commitments)

	require.Equal([]events.Event{
		&events.CommitmentReceived{GroupID: env.group, Member: env.member},
	}, env.log.Events())
}

func TestSubmitKeepsRoundStart(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	other := ids.GenerateTestShortID()
	require.NoError(env.members.Add(env.owner, env.group, other))

	require.NoError(env.store.Submit(env.member, env.group, 10, ids.ID{1}, ids.ID{2}))
	require.NoError(env.store.Submit(other, env.group, 11, ids.ID{3}, ids.ID{4}))
	// Resubmission replaces the commitment but not the round start.
	require.NoError(env.store.Submit(env.member, env.group, 12, ids.ID{5}, ids.ID{6}))

	start, err := env.state.GetRoundStart(env.group)
	require.NoError(err)
	require.Equal(uint64(10), start)

	c, err := env.state.GetCommitment(env.group, env.member)
	require.NoError(err)
	require.Equal(state.Commitment{Entropy: ids.ID{5}, MaskedHash: ids.ID{6}}, c)

	commitments, err := env.store.Commitments(env.group)
	require.NoError(err)
	require.Len(commitments, 2)
}

func TestSubmitNotMember(t *testing.T) {
	tests := []struct {
		name   string
		caller func(*testEnv) ids.ShortID
		group  func(*testEnv) state.GroupID
	}{
		{
			name:   "stranger",
			caller: func(*testEnv) ids.ShortID { return ids.GenerateTestShortID() },
			group:  func(env *testEnv) state.GroupID { return env.group },
		},
		{
			name:   "owner",
			caller: func(env *testEnv) ids.ShortID { return env.owner },
			group:  func(env *testEnv) state.GroupID { return env.group },
		},
		{
			name:   "unknown group",
			caller: func(env *testEnv) ids.ShortID { return env.member },
			group:  func(env *testEnv) state.GroupID { return env.group + 1 },
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			env := newTestEnv(t)
			group := test.group(env)
			err := env.store.Submit(test.caller(env), group, 10, ids.ID{1}, ids.ID{2})
			require.ErrorIs(err, membership.ErrNotMember)

			_, err = env.state.GetRoundStart(group)
			require.ErrorIs(err, database.ErrNotFound)
			require.Zero(env.log.Len())
		})
	}
}

func TestResetRound(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	require.NoError(env.store.Submit(env.member, env.group, 10, ids.ID{1}, ids.ID{2}))
	require.NoError(env.state.PutWinningHash(env.group, ids.ID{2}))

	require.ErrorIs(env.store.ResetRound(env.member, env.group), registry.ErrNotOwner)
	require.ErrorIs(env.store.ResetRound(env.owner, env.group+1), registry.ErrGroupNotFound)

	require.NoError(env.store.ResetRound(env.owner, env.group))

	_, err := env.state.GetRoundStart(env.group)
	require.ErrorIs(err, database.ErrNotFound)
	_, err = env.state.GetWinningHash(env.group)
	require.ErrorIs(err, database.ErrNotFound)
	commitments, err := env.store.Commitments(env.group)
	require.NoError(err)
	require.Empty(commitments)
	require.Equal(&events.RoundReset{GroupID: env.group}, env.log.Events()[env.log.Len()-1])

	// The next commitment opens a new round.
	require.NoError(env.store.Submit(env.member, env.group, 20, ids.ID{1}, ids.ID{2}))
	start, err := env.state.GetRoundStart(env.group)
	require.NoError(err)
	require.Equal(uint64(20), start)
}
