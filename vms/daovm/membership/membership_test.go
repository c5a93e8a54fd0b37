// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package membership

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/registry"
	"github.com/luxfi/daovm/vms/daovm/state"
)

type testEnv struct {
	manager *Manager
	state   *state.State
	log     *events.Log
	owner   ids.ShortID
	group   state.GroupID
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	s := state.New(memdb.New())
	log := &events.Log{}
	r := registry.New(cfg, s, events.Discard)

	owner := ids.GenerateTestShortID()
	group, err := r.Create(owner, []byte("alpha"))
	require.NoError(t, err)

	return &testEnv{
		manager: New(cfg, s, r, log),
		state:   s,
		log:     log,
		owner:   owner,
		group:   group,
	}
}

func TestAdd(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, config.DefaultConfig())
	member := ids.GenerateTestShortID()

	require.NoError(env.manager.Add(env.owner, env.group, member))
	isMember, err := env.manager.IsMember(env.group, member)
	require.NoError(err)
	require.True(isMember)

	isMember, err = env.manager.IsMember(env.group, env.owner)
	require.NoError(err)
	require.False(isMember)

	require.Equal([]events.Event{
		&events.MemberAdded{GroupID: env.group, Member: member},
	}, env.log.Events())
}

func TestAddErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxMembers = 2

	tests := []struct {
		name        string
		setup       func(*require.Assertions, *testEnv)
		caller      func(*testEnv) ids.ShortID
		group       func(*testEnv) state.GroupID
		member      ids.ShortID
		expectedErr error
	}{
		{
			name:        "unknown group",
			caller:      func(env *testEnv) ids.ShortID { return env.owner },
			group:       func(env *testEnv) state.GroupID { return env.group + 1 },
			member:      ids.ShortID{1},
			expectedErr: registry.ErrGroupNotFound,
		},
		{
			name:        "not owner",
			caller:      func(*testEnv) ids.ShortID { return ids.ShortID{9} },
			group:       func(env *testEnv) state.GroupID { return env.group },
			member:      ids.ShortID{1},
			expectedErr: registry.ErrNotOwner,
		},
		{
			name: "already member",
			setup: func(require *require.Assertions, env *testEnv) {
				require.NoError(env.manager.Add(env.owner, env.group, ids.ShortID{1}))
			},
			caller:      func(env *testEnv) ids.ShortID { return env.owner },
			group:       func(env *testEnv) state.GroupID { return env.group },
			member:      ids.ShortID{1},
			expectedErr: ErrAlreadyMember,
		},
		{
			name: "full",
			setup: func(require *require.Assertions, env *testEnv) {
				require.NoError(env.manager.Add(env.owner, env.group, ids.ShortID{1}))
				require.NoError(env.manager.Add(env.owner, env.group, ids.ShortID{2}))
			},
			caller:      func(env *testEnv) ids.ShortID { return env.owner },
			group:       func(env *testEnv) state.GroupID { return env.group },
			member:      ids.ShortID{3},
			expectedErr: ErrMembersFull,
		},
		{
			// Membership is checked before capacity.
			name: "already member of full group",
			setup: func(require *require.Assertions, env *testEnv) {
				require.NoError(env.manager.Add(env.owner, env.group, ids.ShortID{1}))
				require.NoError(env.manager.Add(env.owner, env.group, ids.ShortID{2}))
			},
			caller:      func(env *testEnv) ids.ShortID { return env.owner },
			group:       func(env *testEnv) state.GroupID { return env.group },
			member:      ids.ShortID{2},
			expectedErr: ErrAlreadyMember,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			env := newTestEnv(t, cfg)
			if test.setup != nil {
				test.setup(require, env)
			}
			before, err := env.state.GetMembers(env.group)
			require.NoError(err)
			emitted := env.log.Len()

			err = env.manager.Add(test.caller(env), test.group(env), test.member)
			require.ErrorIs(err, test.expectedErr)

			after, err := env.state.GetMembers(env.group)
			require.NoError(err)
			require.Equal(before, after)
			require.Equal(emitted, env.log.Len())
		})
	}
}

func TestRemove(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, config.DefaultConfig())
	a, b, c := ids.ShortID{1}, ids.ShortID{2}, ids.ShortID{3}
	for _, member := range []ids.ShortID{a, b, c} {
		require.NoError(env.manager.Add(env.owner, env.group, member))
	}

	require.NoError(env.manager.Remove(env.owner, env.group, a))
	members, err := env.state.GetMembers(env.group)
	require.NoError(err)
	require.ElementsMatch([]ids.ShortID{b, c}, members)
	require.Equal(
		&events.MemberRemoved{GroupID: env.group, Member: a},
		env.log.Events()[env.log.Len()-1],
	)

	err = env.manager.Remove(env.owner, env.group, a)
	require.ErrorIs(err, ErrNotMember)

	err = env.manager.Remove(b, env.group, c)
	require.ErrorIs(err, registry.ErrNotOwner)

	err = env.manager.Remove(env.owner, env.group+1, b)
	require.ErrorIs(err, registry.ErrGroupNotFound)

	// A removed member can be added again.
	require.NoError(env.manager.Add(env.owner, env.group, a))
}

func TestRequireMember(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, config.DefaultConfig())
	member := ids.GenerateTestShortID()
	require.NoError(env.manager.Add(env.owner, env.group, member))

	require.NoError(env.manager.RequireMember(env.group, member))
	require.ErrorIs(env.manager.RequireMember(env.group, env.owner), ErrNotMember)
	require.ErrorIs(env.manager.RequireMember(env.group+7, member), ErrNotMember)
}
