// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package commitment records the commit phase of a group's round.
//
// A member commits to a secret value by submitting its masked hash together
// with a piece of entropy:
//
//  1. COMMIT: member submits (entropy, Keccak256(value)); the first commitment
//     of a round records the round start tick
//  2. SELECT: while the round is open, one masked hash is chosen every tick
//  3. REVEAL: the member discloses value; see package reveal
//
// A member holds at most one commitment per group. Committing again replaces
// the previous one.
package commitment

import (
	"errors"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/membership"
	"github.com/luxfi/daovm/vms/daovm/registry"
	"github.com/luxfi/daovm/vms/daovm/state"
)

// Store accepts commitments from group members.
type Store struct {
	state      *state.State
	registry   *registry.Registry
	membership *membership.Manager
	events     events.Emitter
}

func New(
	s *state.State,
	r *registry.Registry,
	m *membership.Manager,
	emitter events.Emitter,
) *Store {
	return &Store{
		state:      s,
		registry:   r,
		membership: m,
		events:     emitter,
	}
}

// Submit records caller's commitment at tick. Callers that are not members of
// the group, including callers naming an unknown group, get
// membership.ErrNotMember.
func (s *Store) Submit(
	caller ids.ShortID,
	id state.GroupID,
	tick uint64,
	entropy ids.ID,
	maskedHash ids.ID,
) error {
	if err := s.membership.RequireMember(id, caller); err != nil {
		return err
	}

	switch _, err := s.state.GetRoundStart(id); {
	case errors.Is(err, database.ErrNotFound):
		if err := s.state.PutRoundStart(id, tick); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	err := s.state.PutCommitment(id, caller, state.Commitment{
		Entropy:    entropy,
		MaskedHash: maskedHash,
	})
	if err != nil {
		return err
	}
	s.events.Emit(&events.CommitmentReceived{
		GroupID: id,
		Member:  caller,
	})
	return nil
}

// ResetRound closes the group's round. The round start, the winning hash and
// every commitment are removed, so the next commitment opens a new round.
// Only the owner may reset a round.
func (s *Store) ResetRound(caller ids.ShortID, id state.GroupID) error {
	if err := s.registry.RequireOwner(caller, id); err != nil {
		return err
	}

	if err := s.state.DeleteCommitments(id); err != nil {
		return err
	}
	if err := s.state.DeleteRoundStart(id); err != nil {
		return err
	}
	if err := s.state.DeleteWinningHash(id); err != nil {
		return err
	}
	s.events.Emit(&events.RoundReset{
		GroupID: id,
	})
	return nil
}

// Commitments returns the group's commitments in ascending member order.
func (s *Store) Commitments(id state.GroupID) ([]state.MemberCommitment, error) {
	return s.state.GetCommitments(id)
}
