// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api provides the JSON-RPC API of the DAO VM.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/daovm/utils/formatting"
	"github.com/luxfi/daovm/utils/json"
	"github.com/luxfi/daovm/vms/daovm/registry"
	"github.com/luxfi/daovm/vms/daovm/reveal"
	"github.com/luxfi/daovm/vms/daovm/state"
)

const groupCacheSize = 1024

var ErrInvalidRequest = errors.New("invalid request")

// VM is the part of the DAO VM the API reads from.
type VM interface {
	// ReadState calls f with committed state. f must not retain s.
	ReadState(f func(s *state.State) error) error
	// IssueTx adds an encoded transaction to the mempool.
	IssueTx(txBytes []byte) (ids.ID, error)
	Status() Status
}

// Status describes the chain tip.
type Status struct {
	LastAcceptedID     ids.ID
	LastAcceptedHeight uint64
	PendingTxs         int
	Bootstrapped       bool
}

type groupInfo struct {
	name  string
	owner ids.ShortID
}

// Service is the "dao" JSON-RPC service.
type Service struct {
	vm  VM
	log log.Logger

	// Names and owners never change once a group exists.
	groups cache.Cacher[state.GroupID, groupInfo]
}

func NewService(vm VM, logger log.Logger) *Service {
	return &Service{
		vm:     vm,
		log:    logger,
		groups: lru.NewCache[state.GroupID, groupInfo](groupCacheSize),
	}
}

type GroupArgs struct {
	GroupID json.Uint16 `json:"groupID"`
}

type GetGroupReply struct {
	GroupID json.Uint16   `json:"groupID"`
	Name    string        `json:"name"`
	Owner   ids.ShortID   `json:"owner"`
	Members []ids.ShortID `json:"members"`
}

// GetGroup returns the name, owner and members of a group.
func (s *Service) GetGroup(_ *http.Request, args *GroupArgs, reply *GetGroupReply) error {
	s.log.Debug("API called",
		log.String("service", "dao"),
		log.String("method", "getGroup"),
		log.Uint32("groupID", uint32(args.GroupID)),
	)

	id := state.GroupID(args.GroupID)
	return s.vm.ReadState(func(st *state.State) error {
		info, err := s.group(st, id)
		if err != nil {
			return err
		}
		members, err := st.GetMembers(id)
		if err != nil {
			return err
		}

		reply.GroupID = args.GroupID
		reply.Name = info.name
		reply.Owner = info.owner
		reply.Members = members
		return nil
	})
}

func (s *Service) group(st *state.State, id state.GroupID) (groupInfo, error) {
	if info, ok := s.groups.Get(id); ok {
		return info, nil
	}

	name, err := st.GetGroupName(id)
	if errors.Is(err, database.ErrNotFound) {
		return groupInfo{}, fmt.Errorf("%w: %d", registry.ErrGroupNotFound, id)
	}
	if err != nil {
		return groupInfo{}, err
	}
	owner, err := st.GetOwner(id)
	if err != nil {
		return groupInfo{}, err
	}

	info := groupInfo{
		name:  string(name),
		owner: owner,
	}
	s.groups.Put(id, info)
	return info, nil
}

type GetGroupIDArgs struct {
	Name string `json:"name"`
}

type GetGroupIDReply struct {
	GroupID json.Uint16 `json:"groupID"`
}

// GetGroupID resolves a group name.
func (s *Service) GetGroupID(_ *http.Request, args *GetGroupIDArgs, reply *GetGroupIDReply) error {
	s.log.Debug("API called",
		log.String("service", "dao"),
		log.String("method", "getGroupID"),
		log.String("name", args.Name),
	)

	if args.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidRequest)
	}
	return s.vm.ReadState(func(st *state.State) error {
		id, err := st.GetGroupID([]byte(args.Name))
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: %q", registry.ErrGroupNotFound, args.Name)
		}
		if err != nil {
			return err
		}
		reply.GroupID = json.Uint16(id)
		return nil
	})
}

type GetMembersReply struct {
	Members []ids.ShortID `json:"members"`
}

// GetMembers returns the members of a group. Unknown groups have none.
func (s *Service) GetMembers(_ *http.Request, args *GroupArgs, reply *GetMembersReply) error {
	s.log.Debug("API called",
		log.String("service", "dao"),
		log.String("method", "getMembers"),
		log.Uint32("groupID", uint32(args.GroupID)),
	)

	return s.vm.ReadState(func(st *state.State) error {
		members, err := st.GetMembers(state.GroupID(args.GroupID))
		reply.Members = members
		return err
	})
}

type GetWinningHashReply struct {
	Hash ids.ID `json:"hash"`
}

// GetWinningHash returns the last selected winning hash of a group.
func (s *Service) GetWinningHash(_ *http.Request, args *GroupArgs, reply *GetWinningHashReply) error {
	s.log.Debug("API called",
		log.String("service", "dao"),
		log.String("method", "getWinningHash"),
		log.Uint32("groupID", uint32(args.GroupID)),
	)

	return s.vm.ReadState(func(st *state.State) error {
		hash, err := st.GetWinningHash(state.GroupID(args.GroupID))
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: group %d", reveal.ErrNoWinningHash, args.GroupID)
		}
		reply.Hash = hash
		return err
	})
}

type GetRoundReply struct {
	Open        bool                     `json:"open"`
	StartTick   json.Uint64              `json:"startTick"`
	Commitments []state.MemberCommitment `json:"commitments"`
	WinningHash *ids.ID                  `json:"winningHash,omitempty"`
}

// GetRound returns the round of a group. A group without a round start has no
// open round.
func (s *Service) GetRound(_ *http.Request, args *GroupArgs, reply *GetRoundReply) error {
	s.log.Debug("API called",
		log.String("service", "dao"),
		log.String("method", "getRound"),
		log.Uint32("groupID", uint32(args.GroupID)),
	)

	id := state.GroupID(args.GroupID)
	return s.vm.ReadState(func(st *state.State) error {
		switch start, err := st.GetRoundStart(id); {
		case err == nil:
			reply.Open = true
			reply.StartTick = json.Uint64(start)
		case !errors.Is(err, database.ErrNotFound):
			return err
		}

		commitments, err := st.GetCommitments(id)
		if err != nil {
			return err
		}
		reply.Commitments = commitments

		switch hash, err := st.GetWinningHash(id); {
		case err == nil:
			reply.WinningHash = &hash
		case !errors.Is(err, database.ErrNotFound):
			return err
		}
		return nil
	})
}

type StatusReply struct {
	LastAcceptedID     ids.ID      `json:"lastAcceptedID"`
	LastAcceptedHeight json.Uint64 `json:"lastAcceptedHeight"`
	PendingTxs         int         `json:"pendingTxs"`
	Bootstrapped       bool        `json:"bootstrapped"`
}

// Status returns the chain tip.
func (s *Service) Status(_ *http.Request, _ *struct{}, reply *StatusReply) error {
	status := s.vm.Status()
	reply.LastAcceptedID = status.LastAcceptedID
	reply.LastAcceptedHeight = json.Uint64(status.LastAcceptedHeight)
	reply.PendingTxs = status.PendingTxs
	reply.Bootstrapped = status.Bootstrapped
	return nil
}

type IssueTxArgs struct {
	Tx       string              `json:"tx"`
	Encoding formatting.Encoding `json:"encoding"`
}

type IssueTxReply struct {
	TxID ids.ID `json:"txID"`
}

// IssueTx adds an encoded transaction to the mempool.
func (s *Service) IssueTx(_ *http.Request, args *IssueTxArgs, reply *IssueTxReply) error {
	s.log.Debug("API called",
		log.String("service", "dao"),
		log.String("method", "issueTx"),
	)

	txBytes, err := formatting.Decode(args.Encoding, args.Tx)
	if err != nil {
		return fmt.Errorf("%w: couldn't decode tx: %w", ErrInvalidRequest, err)
	}
	reply.TxID, err = s.vm.IssueTx(txBytes)
	return err
}
