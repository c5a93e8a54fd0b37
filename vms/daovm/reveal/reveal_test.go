// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reveal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/membership"
	"github.com/luxfi/daovm/vms/daovm/registry"
	"github.com/luxfi/daovm/vms/daovm/state"
)

type testEnv struct {
	verifier *Verifier
	state    *state.State
	log      *events.Log
	member   ids.ShortID
	group    state.GroupID
}

func newTestEnv(t *testing.T) *testEnv {
	require := require.New(t)

	cfg := config.DefaultConfig()
	s := state.New(memdb.New())
	r := registry.New(cfg, s, events.Discard)
	m := membership.New(cfg, s, r, events.Discard)

	owner := ids.GenerateTestShortID()
	group, err := r.Create(owner, []byte("alpha"))
	require.NoError(err)
	member := ids.GenerateTestShortID()
	require.NoError(m.Add(owner, group, member))

	log := &events.Log{}
	return &testEnv{
		verifier: New(s, m, log),
		state:    s,
		log:      log,
		member:   member,
		group:    group,
	}
}

func TestHashValue(t *testing.T) {
	require := require.New(t)

	require.Equal(HashValue(7), NewCommitment(ids.Empty, 7).MaskedHash)
	require.NotEqual(HashValue(7), HashValue(8))
	// keccak256 of eight zero bytes
	require.Equal(
		"011b4d03dd8c01f1049143cf9c4c817e4b167f1d1b83e5c6f0f10d89ba1e7bce",
		hexID(HashValue(0)),
	)
}

func TestReveal(t *testing.T) {
	tests := []struct {
		name            string
		winning         *ids.ID
		caller          func(*testEnv) ids.ShortID
		claimed         ids.ID
		value           uint64
		expectedErr     error
		expectedWinning bool
	}{
		{
			name:            "winning value",
			winning:         idPtr(HashValue(42)),
			caller:          func(env *testEnv) ids.ShortID { return env.member },
			claimed:         HashValue(42),
			value:           42,
			expectedWinning: true,
		},
		{
			name:    "losing value",
			winning: idPtr(HashValue(41)),
			caller:  func(env *testEnv) ids.ShortID { return env.member },
			claimed: HashValue(42),
			value:   42,
		},
		{
			name:        "hash mismatch",
			winning:     idPtr(HashValue(42)),
			caller:      func(env *testEnv) ids.ShortID { return env.member },
			claimed:     HashValue(42),
			value:       43,
			expectedErr: ErrHashMismatch,
		},
		{
			name:        "no winning hash",
			caller:      func(env *testEnv) ids.ShortID { return env.member },
			claimed:     HashValue(42),
			value:       42,
			expectedErr: ErrNoWinningHash,
		},
		{
			// Membership is checked before the hash.
			name:        "not member",
			winning:     idPtr(HashValue(42)),
			caller:      func(*testEnv) ids.ShortID { return ids.GenerateTestShortID() },
			claimed:     HashValue(1),
			value:       42,
			expectedErr: membership.ErrNotMember,
		},
		{
			// The hash is checked before the winning hash.
			name:        "mismatch without winning hash",
			caller:      func(env *testEnv) ids.ShortID { return env.member },
			claimed:     HashValue(1),
			value:       42,
			expectedErr: ErrHashMismatch,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			env := newTestEnv(t)
			if test.winning != nil {
				require.NoError(env.state.PutWinningHash(env.group, *test.winning))
			}
			before, err := env.state.Checksum()
			require.NoError(err)

			caller := test.caller(env)
			won, err := env.verifier.Reveal(caller, env.group, test.claimed, test.value)
			require.ErrorIs(err, test.expectedErr)
			require.Equal(test.expectedWinning, won)

			if test.expectedWinning {
				require.Equal([]events.Event{
					&events.ValueRevealed{
						GroupID: env.group,
						Member:  caller,
						Hash:    test.claimed,
						Value:   test.value,
					},
				}, env.log.Events())
			} else {
				require.Zero(env.log.Len())
			}

			after, err := env.state.Checksum()
			require.NoError(err)
			require.Equal(before, after)
		})
	}
}

func TestRevealRepeated(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	winning := HashValue(42)
	require.NoError(env.state.PutWinningHash(env.group, winning))

	for i := 0; i < 2; i++ {
		won, err := env.verifier.Reveal(env.member, env.group, winning, 42)
		require.NoError(err)
		require.True(won)
	}

	expected := &events.ValueRevealed{
		GroupID: env.group,
		Member:  env.member,
		Hash:    winning,
		Value:   42,
	}
	require.Equal([]events.Event{expected, expected}, env.log.Events())

	stored, err := env.state.GetWinningHash(env.group)
	require.NoError(err)
	require.Equal(winning, stored)
}

func idPtr(id ids.ID) *ids.ID {
	return &id
}

func hexID(id ids.ID) string {
	return fmt.Sprintf("%x", id[:])
}
