// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/formatting"
	"github.com/luxfi/daovm/utils/hashing"
	"github.com/luxfi/daovm/vms/daovm/reveal"
	"github.com/luxfi/daovm/vms/daovm/state"
	"github.com/luxfi/daovm/vms/daovm/txs"
)

const (
	OpCreateGroup   = "createGroup"
	OpAddMember     = "addMember"
	OpRemoveMember  = "removeMember"
	OpCommit        = "commit"
	OpReveal        = "reveal"
	OpStartNewRound = "startNewRound"
)

var (
	errUnknownOp     = errors.New("unknown operation")
	errMissingCaller = errors.New("missing caller")
	errInvalidHash   = errors.New("invalid hash")
	errNoBlocks      = errors.New("scenario has no blocks")
)

// Scenario is a sequence of blocks replayed against a fresh chain.
//
// Identities are aliases: an alias that parses as a short id is used as is,
// any other alias maps to the first 20 bytes of its Keccak-256.
type Scenario struct {
	// Config overrides the default chain configuration.
	Config map[string]interface{} `yaml:"config"`
	Blocks []Block                `yaml:"blocks"`
}

type Block struct {
	Height uint64 `yaml:"height"`
	// Seed replaces the parent block id as the seed of this tick when set.
	Seed string `yaml:"seed"`
	Ops  []Op   `yaml:"ops"`
}

// Op is one transaction of a block. Only the fields its type uses are read.
type Op struct {
	Type    string `yaml:"op"`
	Caller  string `yaml:"caller"`
	Group   uint16 `yaml:"group"`
	Name    string `yaml:"name"`
	Member  string `yaml:"member"`
	Entropy string `yaml:"entropy"`
	Value   uint64 `yaml:"value"`
	// Hash overrides the hash derived from Value.
	Hash string `yaml:"hash"`
}

// Parse decodes a YAML scenario. JSON documents are accepted as well.
func Parse(b []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(s.Blocks) == 0 {
		return nil, errNoBlocks
	}
	return s, nil
}

// ConfigBytes returns the chain configuration in the form the VM consumes.
func (s *Scenario) ConfigBytes() ([]byte, error) {
	if len(s.Config) == 0 {
		return nil, nil
	}
	return json.Marshal(s.Config)
}

// SeedBytes returns the seed override of the block, or nil if there is none.
func (b *Block) SeedBytes() ([]byte, error) {
	if b.Seed == "" {
		return nil, nil
	}
	return formatting.Decode(formatting.HexNC, b.Seed)
}

// Identity resolves an alias to a short id.
func Identity(alias string) ids.ShortID {
	if id, err := ids.ShortFromString(alias); err == nil {
		return id
	}
	hash := hashing.Keccak256([]byte(alias))
	var id ids.ShortID
	copy(id[:], hash[:])
	return id
}

// Tx converts the operation into an unsigned transaction.
func (op *Op) Tx() (txs.UnsignedTx, error) {
	if op.Caller == "" {
		return nil, errMissingCaller
	}
	base := txs.BaseTx{From: Identity(op.Caller)}
	group := state.GroupID(op.Group)

	switch op.Type {
	case OpCreateGroup:
		return &txs.CreateGroupTx{
			BaseTx: base,
			Name:   []byte(op.Name),
		}, nil
	case OpAddMember:
		return &txs.AddMemberTx{
			BaseTx:  base,
			GroupID: group,
			Member:  Identity(op.Member),
		}, nil
	case OpRemoveMember:
		return &txs.RemoveMemberTx{
			BaseTx:  base,
			GroupID: group,
			Member:  Identity(op.Member),
		}, nil
	case OpCommit:
		hash, err := op.hash()
		if err != nil {
			return nil, err
		}
		return &txs.SubmitCommitmentTx{
			BaseTx:     base,
			GroupID:    group,
			Entropy:    hashing.Keccak256([]byte(op.Entropy)),
			MaskedHash: hash,
		}, nil
	case OpReveal:
		hash, err := op.hash()
		if err != nil {
			return nil, err
		}
		return &txs.RevealTx{
			BaseTx:  base,
			GroupID: group,
			Hash:    hash,
			Value:   op.Value,
		}, nil
	case OpStartNewRound:
		return &txs.StartNewRoundTx{
			BaseTx:  base,
			GroupID: group,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownOp, op.Type)
	}
}

func (op *Op) hash() (ids.ID, error) {
	if op.Hash == "" {
		return reveal.HashValue(op.Value), nil
	}
	b, err := formatting.Decode(formatting.HexNC, op.Hash)
	if err != nil {
		return ids.Empty, fmt.Errorf("%w: %w", errInvalidHash, err)
	}
	if len(b) != ids.IDLen {
		return ids.Empty, fmt.Errorf("%w: expected %d bytes but got %d", errInvalidHash, ids.IDLen, len(b))
	}
	return ids.ToID(b)
}
