// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package selector picks the winning masked hash of a group's round.
//
// The selection hash is Keccak256(seed || e_1 || ... || e_k) where e_1..e_k
// are the distinct entropies of the round in ascending byte order. The winner
// is the masked hash at index hash[0] mod n of the commitments listed in
// ascending member order. The result depends only on the seed and on the set
// of commitments, never on the order they were submitted in.
package selector

import (
	"bytes"
	"errors"

	"github.com/google/btree"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/hashing"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/state"
)

const entropyTreeDegree = 2

var ErrNoCommitments = errors.New("no commitments")

// ChooseWinner returns the winning masked hash of commitments under seed.
// commitments must be in ascending member order, as returned by state.
func ChooseWinner(seed []byte, commitments []state.MemberCommitment) (ids.ID, error) {
	if len(commitments) == 0 {
		return ids.Empty, ErrNoCommitments
	}

	entropies := btree.NewG(entropyTreeDegree, func(a, b ids.ID) bool {
		return bytes.Compare(a[:], b[:]) < 0
	})
	hashes := make([]ids.ID, len(commitments))
	for i, c := range commitments {
		entropies.ReplaceOrInsert(c.Entropy)
		hashes[i] = c.MaskedHash
	}

	input := make([][]byte, 0, entropies.Len()+1)
	input = append(input, seed)
	entropies.Ascend(func(entropy ids.ID) bool {
		input = append(input, entropy[:])
		return true
	})
	selection := hashing.Keccak256(input...)

	index := int(selection[0]) % len(hashes)
	return hashes[index], nil
}

// Selector stores the winner of a group's round.
type Selector struct {
	state  *state.State
	events events.Emitter
}

func New(s *state.State, emitter events.Emitter) *Selector {
	return &Selector{
		state:  s,
		events: emitter,
	}
}

// Select recomputes and stores the winning hash of the group at tick. It
// returns ErrNoCommitments, leaving state untouched, if the round has no
// commitments.
func (s *Selector) Select(id state.GroupID, seed []byte, tick uint64) (ids.ID, error) {
	commitments, err := s.state.GetCommitments(id)
	if err != nil {
		return ids.Empty, err
	}
	winner, err := ChooseWinner(seed, commitments)
	if err != nil {
		return ids.Empty, err
	}
	if err := s.state.PutWinningHash(id, winner); err != nil {
		return ids.Empty, err
	}
	s.events.Emit(&events.WinnerSelected{
		GroupID: id,
		Hash:    winner,
		Tick:    tick,
	})
	return winner, nil
}
