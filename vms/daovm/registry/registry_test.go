// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/state"
)

func newTestRegistry() (*Registry, *state.State, *events.Log) {
	s := state.New(memdb.New())
	log := &events.Log{}
	return New(config.DefaultConfig(), s, log), s, log
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name        string
		groupName   string
		expectedErr error
	}{
		{
			name:      "min length",
			groupName: "abc",
		},
		{
			name:      "max length",
			groupName: strings.Repeat("a", 32),
		},
		{
			name:        "too short",
			groupName:   "ab",
			expectedErr: ErrNameTooShort,
		},
		{
			name:        "empty",
			groupName:   "",
			expectedErr: ErrNameTooShort,
		},
		{
			name:        "too long",
			groupName:   strings.Repeat("a", 33),
			expectedErr: ErrNameTooLong,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			r, s, log := newTestRegistry()
			owner := ids.GenerateTestShortID()

			id, err := r.Create(owner, []byte(test.groupName))
			require.ErrorIs(err, test.expectedErr)
			if test.expectedErr != nil {
				require.Zero(log.Len())
				counter, err := s.GetGroupCounter()
				require.NoError(err)
				require.Zero(counter)
				return
			}

			require.Equal(state.GroupID(0), id)
			require.Equal([]events.Event{
				&events.GroupCreated{
					Owner:   owner,
					GroupID: 0,
					Name:    test.groupName,
				},
			}, log.Events())
		})
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	require := require.New(t)

	r, _, _ := newTestRegistry()
	owner := ids.GenerateTestShortID()

	for i, name := range []string{"alpha", "beta", "gamma"} {
		id, err := r.Create(owner, []byte(name))
		require.NoError(err)
		require.Equal(state.GroupID(i), id)

		gotID, err := r.GetGroupID([]byte(name))
		require.NoError(err)
		require.Equal(id, gotID)

		gotName, err := r.GetGroupName(id)
		require.NoError(err)
		require.Equal([]byte(name), gotName)
	}
}

func TestCreateDuplicateName(t *testing.T) {
	require := require.New(t)

	r, _, log := newTestRegistry()
	_, err := r.Create(ids.GenerateTestShortID(), []byte("alpha"))
	require.NoError(err)

	_, err = r.Create(ids.GenerateTestShortID(), []byte("alpha"))
	require.ErrorIs(err, ErrGroupExists)
	require.Equal(1, log.Len())

	id, err := r.Create(ids.GenerateTestShortID(), []byte("beta"))
	require.NoError(err)
	require.Equal(state.GroupID(1), id)
}

func TestCreateExhaustsIDs(t *testing.T) {
	require := require.New(t)

	r, s, _ := newTestRegistry()
	require.NoError(s.PutGroupCounter(math.MaxUint16))

	owner := ids.GenerateTestShortID()
	id, err := r.Create(owner, []byte("last"))
	require.NoError(err)
	require.Equal(state.GroupID(math.MaxUint16), id)

	counter, err := s.GetGroupCounter()
	require.NoError(err)
	require.Equal(state.GroupID(math.MaxUint16), counter)

	_, err = r.Create(owner, []byte("overflow"))
	require.ErrorIs(err, ErrGroupIDsExhausted)

	name, err := r.GetGroupName(math.MaxUint16)
	require.NoError(err)
	require.Equal([]byte("last"), name)
	_, err = r.GetGroupID([]byte("overflow"))
	require.ErrorIs(err, database.ErrNotFound)
}

func TestRequireOwner(t *testing.T) {
	require := require.New(t)

	r, _, _ := newTestRegistry()
	owner := ids.GenerateTestShortID()
	id, err := r.Create(owner, []byte("alpha"))
	require.NoError(err)

	require.NoError(r.RequireOwner(owner, id))
	require.ErrorIs(r.RequireOwner(ids.GenerateTestShortID(), id), ErrNotOwner)
	require.ErrorIs(r.RequireOwner(owner, id+1), ErrGroupNotFound)
}
