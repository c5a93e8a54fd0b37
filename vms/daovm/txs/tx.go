// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txs defines the transactions of the DAO VM.
//
// Every external operation is a transaction that names its caller. The caller
// is authenticated by the framework that delivers the transaction; the VM
// trusts it.
package txs

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/hashing"
)

var (
	ErrNilTx    = errors.New("nil tx")
	ErrNoCaller = errors.New("missing caller")
	ErrNoMember = errors.New("missing member")
)

// UnsignedTx is the operation a Tx carries.
type UnsignedTx interface {
	// Caller is the identity on whose behalf the operation runs.
	Caller() ids.ShortID

	// SyntacticVerify checks the transaction without looking at state.
	SyntacticVerify() error

	// Visit calls the visitor method of the concrete type.
	Visit(Visitor) error
}

// Tx is a transaction together with its canonical encoding.
type Tx struct {
	Unsigned UnsignedTx `serialize:"true" json:"unsignedTx"`

	id    ids.ID
	bytes []byte
}

// NewTx encodes unsigned and returns the resulting transaction.
func NewTx(unsigned UnsignedTx) (*Tx, error) {
	tx := &Tx{Unsigned: unsigned}
	bytes, err := Codec.Marshal(CodecVersion, tx)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal tx: %w", err)
	}
	tx.SetBytes(bytes)
	return tx, nil
}

// Parse decodes a transaction. It does not verify it.
func Parse(bytes []byte) (*Tx, error) {
	tx := &Tx{}
	if _, err := Codec.Unmarshal(bytes, tx); err != nil {
		return nil, fmt.Errorf("couldn't parse tx: %w", err)
	}
	if tx.Unsigned == nil {
		return nil, ErrNilTx
	}
	tx.SetBytes(bytes)
	return tx, nil
}

// SetBytes sets the encoding of the transaction and derives its id.
func (tx *Tx) SetBytes(bytes []byte) {
	tx.bytes = bytes
	tx.id = hashing.ComputeHash256(bytes)
}

func (tx *Tx) ID() ids.ID {
	return tx.id
}

func (tx *Tx) Bytes() []byte {
	return tx.bytes
}

func (tx *Tx) SyntacticVerify() error {
	if tx == nil || tx.Unsigned == nil {
		return ErrNilTx
	}
	return tx.Unsigned.SyntacticVerify()
}
