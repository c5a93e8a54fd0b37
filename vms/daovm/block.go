// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package daovm

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/hashing"
	"github.com/luxfi/daovm/utils/wrappers"
)

const (
	maxBlockTxs = 1 << 16
	maxTxSize   = 1 << 20
)

var (
	errInvalidBlock   = errors.New("invalid block")
	errTooManyTxs     = errors.New("block has too many transactions")
	errTrailingBlock  = errors.New("trailing bytes after block")
	errOversizedBlock = errors.New("block transaction too large")
)

// Block is one tick of the chain: the transactions applied at Height, after
// which the scheduler runs.
//
// Encoding: parentID (32) || height (8) || txCount (4) || (len (4) || tx)*
type Block struct {
	ParentID ids.ID
	Height   uint64
	Txs      [][]byte

	id    ids.ID
	bytes []byte
}

// NewBlock encodes a block.
func NewBlock(parentID ids.ID, height uint64, txs [][]byte) (*Block, error) {
	if len(txs) > maxBlockTxs {
		return nil, fmt.Errorf("%w: %d > %d", errTooManyTxs, len(txs), maxBlockTxs)
	}

	size := ids.IDLen + wrappers.LongLen + wrappers.IntLen
	for _, tx := range txs {
		if len(tx) > maxTxSize {
			return nil, fmt.Errorf("%w: %d > %d", errOversizedBlock, len(tx), maxTxSize)
		}
		size += wrappers.IntLen + len(tx)
	}

	p := wrappers.Packer{
		MaxSize: size,
		Bytes:   make([]byte, 0, size),
	}
	p.PackFixedBytes(parentID[:])
	p.PackLong(height)
	p.PackInt(uint32(len(txs)))
	for _, tx := range txs {
		p.PackBytes(tx)
	}
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", errInvalidBlock, p.Err)
	}

	return &Block{
		ParentID: parentID,
		Height:   height,
		Txs:      txs,
		id:       hashing.ComputeHash256(p.Bytes),
		bytes:    p.Bytes,
	}, nil
}

// ParseBlock decodes a block. The transactions are not parsed.
func ParseBlock(b []byte) (*Block, error) {
	p := wrappers.Packer{Bytes: b}
	parentID, err := ids.ToID(p.UnpackFixedBytes(ids.IDLen))
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", errInvalidBlock, p.Err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidBlock, err)
	}
	height := p.UnpackLong()
	count := p.UnpackInt()
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", errInvalidBlock, p.Err)
	}
	if count > maxBlockTxs {
		return nil, fmt.Errorf("%w: %d > %d", errTooManyTxs, count, maxBlockTxs)
	}

	txs := make([][]byte, 0, count)
	for i := uint32(0); i < count && !p.Errored(); i++ {
		txs = append(txs, p.UnpackLimitedBytes(maxTxSize))
	}
	switch {
	case p.Errored():
		return nil, fmt.Errorf("%w: %w", errInvalidBlock, p.Err)
	case p.Offset != len(b):
		return nil, fmt.Errorf("%w: %d bytes", errTrailingBlock, len(b)-p.Offset)
	}

	return &Block{
		ParentID: parentID,
		Height:   height,
		Txs:      txs,
		id:       hashing.ComputeHash256(b),
		bytes:    b,
	}, nil
}

// ID is the SHA-256 of the block's encoding.
func (b *Block) ID() ids.ID {
	return b.id
}

func (b *Block) Bytes() []byte {
	return b.bytes
}
