// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package executor applies transactions to state.
package executor

import (
	"github.com/luxfi/log"

	"github.com/luxfi/daovm/vms/daovm/commitment"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/membership"
	"github.com/luxfi/daovm/vms/daovm/registry"
	"github.com/luxfi/daovm/vms/daovm/reveal"
	"github.com/luxfi/daovm/vms/daovm/state"
	"github.com/luxfi/daovm/vms/daovm/txs"
)

var _ txs.Visitor = (*Executor)(nil)

// Executor applies one transaction at Tick. A failed transaction leaves
// State unchanged and emits nothing.
type Executor struct {
	Backend *Backend
	State   *state.State
	Events  events.Emitter
	Tick    uint64

	registry    *registry.Registry
	membership  *membership.Manager
	commitments *commitment.Store
	verifier    *reveal.Verifier
}

func New(backend *Backend, s *state.State, emitter events.Emitter, tick uint64) *Executor {
	r := registry.New(backend.Config, s, emitter)
	m := membership.New(backend.Config, s, r, emitter)
	return &Executor{
		Backend:     backend,
		State:       s,
		Events:      emitter,
		Tick:        tick,
		registry:    r,
		membership:  m,
		commitments: commitment.New(s, r, m, emitter),
		verifier:    reveal.New(s, m, emitter),
	}
}

// Execute verifies tx and applies it.
func (e *Executor) Execute(tx *txs.Tx) error {
	if err := tx.SyntacticVerify(); err != nil {
		return err
	}
	return tx.Unsigned.Visit(e)
}

func (e *Executor) CreateGroupTx(tx *txs.CreateGroupTx) error {
	id, err := e.registry.Create(tx.From, tx.Name)
	if err != nil {
		return err
	}
	e.Backend.Log.Debug("group created",
		log.Uint32("groupID", uint32(id)),
		log.Stringer("owner", tx.From),
	)
	return nil
}

func (e *Executor) AddMemberTx(tx *txs.AddMemberTx) error {
	return e.membership.Add(tx.From, tx.GroupID, tx.Member)
}

func (e *Executor) RemoveMemberTx(tx *txs.RemoveMemberTx) error {
	return e.membership.Remove(tx.From, tx.GroupID, tx.Member)
}

func (e *Executor) SubmitCommitmentTx(tx *txs.SubmitCommitmentTx) error {
	return e.commitments.Submit(tx.From, tx.GroupID, e.Tick, tx.Entropy, tx.MaskedHash)
}

func (e *Executor) RevealTx(tx *txs.RevealTx) error {
	won, err := e.verifier.Reveal(tx.From, tx.GroupID, tx.Hash, tx.Value)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	// Replayed reveals are not news.
	logFn := e.Backend.Log.Debug
	if e.Backend.Bootstrapped.Get() {
		logFn = e.Backend.Log.Info
	}
	logFn("winning value revealed",
		log.Uint32("groupID", uint32(tx.GroupID)),
		log.Stringer("member", tx.From),
		log.Uint64("value", tx.Value),
	)
	return nil
}

func (e *Executor) StartNewRoundTx(tx *txs.StartNewRoundTx) error {
	return e.commitments.ResetRound(tx.From, tx.GroupID)
}
