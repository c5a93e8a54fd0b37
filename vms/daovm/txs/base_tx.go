// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import "github.com/luxfi/ids"

// BaseTx contains the fields common to every transaction.
type BaseTx struct {
	From ids.ShortID `serialize:"true" json:"from"`
}

func (tx *BaseTx) Caller() ids.ShortID {
	return tx.From
}

func (tx *BaseTx) SyntacticVerify() error {
	switch {
	case tx == nil:
		return ErrNilTx
	case tx.From == ids.ShortEmpty:
		return ErrNoCaller
	default:
		return nil
	}
}
