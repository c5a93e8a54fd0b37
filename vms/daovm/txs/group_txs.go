// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/state"
)

var (
	_ UnsignedTx = (*CreateGroupTx)(nil)
	_ UnsignedTx = (*AddMemberTx)(nil)
	_ UnsignedTx = (*RemoveMemberTx)(nil)
)

// CreateGroupTx registers a group owned by the caller. Name bounds depend on
// the chain configuration and are checked on execution.
type CreateGroupTx struct {
	BaseTx `serialize:"true"`
	Name   []byte `serialize:"true" json:"name"`
}

func (tx *CreateGroupTx) Visit(visitor Visitor) error {
	return visitor.CreateGroupTx(tx)
}

// AddMemberTx adds Member to a group owned by the caller.
type AddMemberTx struct {
	BaseTx  `serialize:"true"`
	GroupID state.GroupID `serialize:"true" json:"groupID"`
	Member  ids.ShortID   `serialize:"true" json:"member"`
}

func (tx *AddMemberTx) SyntacticVerify() error {
	if err := tx.BaseTx.SyntacticVerify(); err != nil {
		return err
	}
	if tx.Member == ids.ShortEmpty {
		return ErrNoMember
	}
	return nil
}

func (tx *AddMemberTx) Visit(visitor Visitor) error {
	return visitor.AddMemberTx(tx)
}

// RemoveMemberTx removes Member from a group owned by the caller.
type RemoveMemberTx struct {
	BaseTx  `serialize:"true"`
	GroupID state.GroupID `serialize:"true" json:"groupID"`
	Member  ids.ShortID   `serialize:"true" json:"member"`
}

func (tx *RemoveMemberTx) SyntacticVerify() error {
	if err := tx.BaseTx.SyntacticVerify(); err != nil {
		return err
	}
	if tx.Member == ids.ShortEmpty {
		return ErrNoMember
	}
	return nil
}

func (tx *RemoveMemberTx) Visit(visitor Visitor) error {
	return visitor.RemoveMemberTx(tx)
}
