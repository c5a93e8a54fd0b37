// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for the DAO VM.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidNameBounds  = errors.New("invalid group name bounds")
	ErrInvalidMaxMembers  = errors.New("max members must be positive")
	ErrInvalidRoundLength = errors.New("round length must be positive")
	ErrInvalidBlockLimit  = errors.New("max txs per block must be positive")
)

// Config contains configuration parameters for the DAO VM. All values are
// fixed for the lifetime of a chain; replicas must agree on them.
type Config struct {
	// MinNameLength is the minimum length of a group name in bytes
	MinNameLength uint32 `json:"minNameLength"`
	// MaxNameLength is the maximum length of a group name in bytes
	MaxNameLength uint32 `json:"maxNameLength"`
	// MaxMembers is the maximum number of members of a group
	MaxMembers uint32 `json:"maxMembers"`
	// RoundLength is the number of ticks, counted from the first commitment of
	// a round, during which the winner is recomputed
	RoundLength uint64 `json:"roundLength"`

	// MaxTxsPerBlock bounds the number of transactions a built block carries
	MaxTxsPerBlock uint32 `json:"maxTxsPerBlock"`
}

// DefaultConfig returns the default configuration for the DAO VM.
func DefaultConfig() Config {
	return Config{
		MinNameLength:  3,
		MaxNameLength:  32,
		MaxMembers:     32,
		RoundLength:    5,
		MaxTxsPerBlock: 1024,
	}
}

// Verify checks that the configuration is usable.
func (c Config) Verify() error {
	switch {
	case c.MinNameLength == 0 || c.MaxNameLength < c.MinNameLength:
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidNameBounds, c.MinNameLength, c.MaxNameLength)
	case c.MaxMembers == 0:
		return ErrInvalidMaxMembers
	case c.RoundLength == 0:
		return ErrInvalidRoundLength
	case c.MaxTxsPerBlock == 0:
		return ErrInvalidBlockLimit
	default:
		return nil
	}
}

// Parse decodes JSON config bytes over the defaults and verifies the result.
// Empty bytes yield the defaults.
func Parse(b []byte) (Config, error) {
	c := DefaultConfig()
	if len(b) > 0 {
		if err := json.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	if err := c.Verify(); err != nil {
		return Config{}, err
	}
	return c, nil
}
