// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Visitor executes custom logic against the concrete transaction types.
type Visitor interface {
	CreateGroupTx(*CreateGroupTx) error
	AddMemberTx(*AddMemberTx) error
	RemoveMemberTx(*RemoveMemberTx) error
	SubmitCommitmentTx(*SubmitCommitmentTx) error
	RevealTx(*RevealTx) error
	StartNewRoundTx(*StartNewRoundTx) error
}
