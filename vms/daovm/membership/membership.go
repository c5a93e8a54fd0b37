// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package membership maintains the member list of each group.
package membership

import (
	"errors"
	"fmt"
	"slices"

	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/registry"
	"github.com/luxfi/daovm/vms/daovm/state"
)

var (
	ErrAlreadyMember = errors.New("already a member")
	ErrMembersFull   = errors.New("group is full")
	ErrNotMember     = errors.New("not a member")
)

// Manager adds and removes members on behalf of a group's owner.
type Manager struct {
	config   config.Config
	state    *state.State
	registry *registry.Registry
	events   events.Emitter
}

func New(
	cfg config.Config,
	s *state.State,
	r *registry.Registry,
	emitter events.Emitter,
) *Manager {
	return &Manager{
		config:   cfg,
		state:    s,
		registry: r,
		events:   emitter,
	}
}

// Add appends member to the group. Only the owner may add members and the
// owner is not implicitly a member.
func (m *Manager) Add(caller ids.ShortID, id state.GroupID, member ids.ShortID) error {
	if err := m.registry.RequireOwner(caller, id); err != nil {
		return err
	}

	members, err := m.state.GetMembers(id)
	if err != nil {
		return err
	}
	if slices.Contains(members, member) {
		return fmt.Errorf("%w: %s in group %d", ErrAlreadyMember, member, id)
	}
	if len(members) >= int(m.config.MaxMembers) {
		return fmt.Errorf("%w: %d members", ErrMembersFull, len(members))
	}

	if err := m.state.PutMembers(id, append(members, member)); err != nil {
		return err
	}
	m.events.Emit(&events.MemberAdded{
		GroupID: id,
		Member:  member,
	})
	return nil
}

// Remove deletes member from the group. The order of the remaining members is
// not preserved.
func (m *Manager) Remove(caller ids.ShortID, id state.GroupID, member ids.ShortID) error {
	if err := m.registry.RequireOwner(caller, id); err != nil {
		return err
	}

	members, err := m.state.GetMembers(id)
	if err != nil {
		return err
	}
	index := -1
	for i, existing := range members {
		if existing == member {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s in group %d", ErrNotMember, member, id)
	}

	last := len(members) - 1
	members[index] = members[last]
	if err := m.state.PutMembers(id, members[:last]); err != nil {
		return err
	}
	m.events.Emit(&events.MemberRemoved{
		GroupID: id,
		Member:  member,
	})
	return nil
}

// IsMember reports whether addr belongs to the group. Unknown groups have no
// members.
func (m *Manager) IsMember(id state.GroupID, addr ids.ShortID) (bool, error) {
	return m.state.IsMember(id, addr)
}

// RequireMember returns ErrNotMember unless addr belongs to the group.
func (m *Manager) RequireMember(id state.GroupID, addr ids.ShortID) error {
	isMember, err := m.state.IsMember(id, addr)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: %s in group %d", ErrNotMember, addr, id)
	}
	return nil
}
