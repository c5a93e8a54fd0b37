// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the observable notifications of the DAO VM.
package events

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/state"
)

var (
	_ Event = (*GroupCreated)(nil)
	_ Event = (*MemberAdded)(nil)
	_ Event = (*MemberRemoved)(nil)
	_ Event = (*CommitmentReceived)(nil)
	_ Event = (*WinnerSelected)(nil)
	_ Event = (*ValueRevealed)(nil)
	_ Event = (*RoundReset)(nil)

	_ Emitter = (*Log)(nil)
)

// Event is emitted by a successful state transition.
type Event interface {
	// Kind is a stable name of the event type.
	Kind() string
}

// Emitter receives events as they are produced.
type Emitter interface {
	Emit(Event)
}

type GroupCreated struct {
	Owner   ids.ShortID   `json:"owner"`
	GroupID state.GroupID `json:"groupID"`
	Name    string        `json:"name"`
}

func (*GroupCreated) Kind() string { return "groupCreated" }

type MemberAdded struct {
	GroupID state.GroupID `json:"groupID"`
	Member  ids.ShortID   `json:"member"`
}

func (*MemberAdded) Kind() string { return "memberAdded" }

type MemberRemoved struct {
	GroupID state.GroupID `json:"groupID"`
	Member  ids.ShortID   `json:"member"`
}

func (*MemberRemoved) Kind() string { return "memberRemoved" }

type CommitmentReceived struct {
	GroupID state.GroupID `json:"groupID"`
	Member  ids.ShortID   `json:"member"`
}

func (*CommitmentReceived) Kind() string { return "commitmentReceived" }

// WinnerSelected is emitted every tick the winner of an open round is
// recomputed, even when the winning hash did not change.
type WinnerSelected struct {
	GroupID state.GroupID `json:"groupID"`
	Hash    ids.ID        `json:"hash"`
	Tick    uint64        `json:"tick"`
}

func (*WinnerSelected) Kind() string { return "winnerSelected" }

type ValueRevealed struct {
	GroupID state.GroupID `json:"groupID"`
	Member  ids.ShortID   `json:"member"`
	Hash    ids.ID        `json:"hash"`
	Value   uint64        `json:"value"`
}

func (*ValueRevealed) Kind() string { return "valueRevealed" }

type RoundReset struct {
	GroupID state.GroupID `json:"groupID"`
}

func (*RoundReset) Kind() string { return "roundReset" }

// Log is an Emitter that keeps events in emission order.
type Log struct {
	events []Event
}

func (l *Log) Emit(e Event) {
	l.events = append(l.events, e)
}

// Events returns the recorded events in emission order.
func (l *Log) Events() []Event {
	return l.events
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.events)
}

// Discard is an Emitter that drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(Event) {}
