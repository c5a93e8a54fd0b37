// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry creates groups and resolves names to group ids.
package registry

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/math"
	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/state"
)

var (
	ErrNameTooLong       = errors.New("group name too long")
	ErrNameTooShort      = errors.New("group name too short")
	ErrGroupExists       = errors.New("group name already registered")
	ErrGroupIDsExhausted = errors.New("group ids exhausted")
	ErrGroupNotFound     = errors.New("group not found")
	ErrNotOwner          = errors.New("caller is not the group owner")
)

// Registry maintains the name <-> id bijection and the owner of every group.
type Registry struct {
	config config.Config
	state  *state.State
	events events.Emitter
}

func New(cfg config.Config, s *state.State, emitter events.Emitter) *Registry {
	return &Registry{
		config: cfg,
		state:  s,
		events: emitter,
	}
}

// Create registers a new group owned by caller and returns its id. Ids are
// handed out sequentially starting at 0.
func (r *Registry) Create(caller ids.ShortID, name []byte) (state.GroupID, error) {
	switch length := len(name); {
	case length > int(r.config.MaxNameLength):
		return 0, fmt.Errorf("%w: %d > %d", ErrNameTooLong, length, r.config.MaxNameLength)
	case length < int(r.config.MinNameLength):
		return 0, fmt.Errorf("%w: %d < %d", ErrNameTooShort, length, r.config.MinNameLength)
	}

	switch _, err := r.state.GetGroupID(name); {
	case err == nil:
		return 0, fmt.Errorf("%w: %q", ErrGroupExists, name)
	case !errors.Is(err, database.ErrNotFound):
		return 0, err
	}

	id, err := r.state.GetGroupCounter()
	if err != nil {
		return 0, err
	}
	// The counter saturates at the largest id, which can be handed out once.
	taken, err := r.state.HasGroup(id)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, fmt.Errorf("%w: counter at %d", ErrGroupIDsExhausted, id)
	}

	if err := r.state.PutGroup(id, name, caller); err != nil {
		return 0, err
	}
	next := math.SaturatingAdd(uint16(id), 1)
	if err := r.state.PutGroupCounter(state.GroupID(next)); err != nil {
		return 0, err
	}

	r.events.Emit(&events.GroupCreated{
		Owner:   caller,
		GroupID: id,
		Name:    string(name),
	})
	return id, nil
}

// GetGroupID returns database.ErrNotFound if no group has the name.
func (r *Registry) GetGroupID(name []byte) (state.GroupID, error) {
	return r.state.GetGroupID(name)
}

// GetGroupName returns database.ErrNotFound if the group does not exist.
func (r *Registry) GetGroupName(id state.GroupID) ([]byte, error) {
	return r.state.GetGroupName(id)
}

// GetOwner returns ErrGroupNotFound if the group does not exist.
func (r *Registry) GetOwner(id state.GroupID) (ids.ShortID, error) {
	owner, err := r.state.GetOwner(id)
	if errors.Is(err, database.ErrNotFound) {
		return ids.ShortEmpty, fmt.Errorf("%w: %d", ErrGroupNotFound, id)
	}
	return owner, err
}

// RequireOwner returns ErrGroupNotFound if the group does not exist and
// ErrNotOwner if caller does not own it.
func (r *Registry) RequireOwner(caller ids.ShortID, id state.GroupID) error {
	owner, err := r.GetOwner(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return fmt.Errorf("%w: %s does not own group %d", ErrNotOwner, caller, id)
	}
	return nil
}
