// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reveal checks disclosed values against the winning masked hash.
package reveal

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/hashing"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/membership"
	"github.com/luxfi/daovm/vms/daovm/state"
)

var (
	ErrHashMismatch  = errors.New("value does not match claimed hash")
	ErrNoWinningHash = errors.New("no winning hash")
)

// HashValue returns the masked hash a member commits to for value.
func HashValue(value uint64) ids.ID {
	return hashing.HashValue(value)
}

// NewCommitment builds the commitment of value with the given entropy.
func NewCommitment(entropy ids.ID, value uint64) state.Commitment {
	return state.Commitment{
		Entropy:    entropy,
		MaskedHash: HashValue(value),
	}
}

// Verifier handles reveals. A reveal never changes state.
type Verifier struct {
	state      *state.State
	membership *membership.Manager
	events     events.Emitter
}

func New(s *state.State, m *membership.Manager, emitter events.Emitter) *Verifier {
	return &Verifier{
		state:      s,
		membership: m,
		events:     emitter,
	}
}

// Reveal checks that value hashes to claimedHash. If claimedHash is the
// group's winning hash, ValueRevealed is emitted and true is returned. A
// correct reveal of a losing value succeeds without an event.
func (v *Verifier) Reveal(
	caller ids.ShortID,
	id state.GroupID,
	claimedHash ids.ID,
	value uint64,
) (bool, error) {
	if err := v.membership.RequireMember(id, caller); err != nil {
		return false, err
	}

	verify := HashValue(value)
	if verify != claimedHash {
		return false, fmt.Errorf("%w: %s != %s", ErrHashMismatch, verify, claimedHash)
	}

	winning, err := v.state.GetWinningHash(id)
	if errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("%w: group %d", ErrNoWinningHash, id)
	}
	if err != nil {
		return false, err
	}

	if winning != verify {
		return false, nil
	}
	v.events.Emit(&events.ValueRevealed{
		GroupID: id,
		Member:  caller,
		Hash:    verify,
		Value:   value,
	})
	return true, nil
}
