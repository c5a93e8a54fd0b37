// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package selector

import "github.com/luxfi/ids"

var (
	_ Randomness = RandomnessFunc(nil)

	// ParentRandomness seeds a tick with the id of the parent block.
	ParentRandomness = RandomnessFunc(func(parentID ids.ID, _ uint64) []byte {
		return parentID[:]
	})
)

// Randomness supplies the seed of a tick. Every replica must derive the same
// seed for the same block; the seed is opaque to the selector.
type Randomness interface {
	Seed(parentID ids.ID, height uint64) []byte
}

// RandomnessFunc adapts a function to Randomness.
type RandomnessFunc func(parentID ids.ID, height uint64) []byte

func (f RandomnessFunc) Seed(parentID ids.ID, height uint64) []byte {
	return f(parentID, height)
}
