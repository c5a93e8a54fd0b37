// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/vms/daovm/state"
)

var (
	_ UnsignedTx = (*SubmitCommitmentTx)(nil)
	_ UnsignedTx = (*RevealTx)(nil)
	_ UnsignedTx = (*StartNewRoundTx)(nil)
)

// SubmitCommitmentTx commits the caller to the value whose Keccak-256 is
// MaskedHash.
type SubmitCommitmentTx struct {
	BaseTx     `serialize:"true"`
	GroupID    state.GroupID `serialize:"true" json:"groupID"`
	Entropy    ids.ID        `serialize:"true" json:"entropy"`
	MaskedHash ids.ID        `serialize:"true" json:"maskedHash"`
}

func (tx *SubmitCommitmentTx) Visit(visitor Visitor) error {
	return visitor.SubmitCommitmentTx(tx)
}

// RevealTx discloses the value behind Hash.
type RevealTx struct {
	BaseTx  `serialize:"true"`
	GroupID state.GroupID `serialize:"true" json:"groupID"`
	Hash    ids.ID        `serialize:"true" json:"hash"`
	Value   uint64        `serialize:"true" json:"value"`
}

func (tx *RevealTx) Visit(visitor Visitor) error {
	return visitor.RevealTx(tx)
}

// StartNewRoundTx resets the round of a group owned by the caller.
type StartNewRoundTx struct {
	BaseTx  `serialize:"true"`
	GroupID state.GroupID `serialize:"true" json:"groupID"`
}

func (tx *StartNewRoundTx) Visit(visitor Visitor) error {
	return visitor.StartNewRoundTx(tx)
}
