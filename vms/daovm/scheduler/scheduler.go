// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scheduler drives the selection of every open round once per tick.
package scheduler

import (
	"errors"
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/daovm/utils/math"
	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/selector"
	"github.com/luxfi/daovm/vms/daovm/state"
)

// Scheduler runs at the end of every tick.
type Scheduler struct {
	config   config.Config
	state    *state.State
	selector *selector.Selector
	log      log.Logger
}

func New(
	cfg config.Config,
	s *state.State,
	sel *selector.Selector,
	logger log.Logger,
) *Scheduler {
	return &Scheduler{
		config:   cfg,
		state:    s,
		selector: sel,
		log:      logger,
	}
}

// OnTick recomputes the winner of every group whose round is open at tick, in
// ascending group id order, and returns the groups it selected for.
//
// A round that started at s is open while tick < s + RoundLength. The sum
// saturates, so a round that started near the end of the tick range stays
// open. Rounds are never closed here; StartNewRound resets them.
func (s *Scheduler) OnTick(tick uint64, seed []byte) ([]state.GroupID, error) {
	rounds, err := s.state.GetRounds()
	if err != nil {
		return nil, err
	}

	var selected []state.GroupID
	for _, round := range rounds {
		end := math.SaturatingAdd(round.StartTick, s.config.RoundLength)
		if tick >= end {
			continue
		}

		winner, err := s.selector.Select(round.GroupID, seed, tick)
		if errors.Is(err, selector.ErrNoCommitments) {
			s.log.Debug("skipping round without commitments",
				log.Uint32("groupID", uint32(round.GroupID)),
				log.Uint64("tick", tick),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to select winner of group %d: %w", round.GroupID, err)
		}

		s.log.Debug("selected winner",
			log.Uint32("groupID", uint32(round.GroupID)),
			log.Uint64("tick", tick),
			log.Stringer("hash", winner),
		)
		selected = append(selected, round.GroupID)
	}
	return selected, nil
}
