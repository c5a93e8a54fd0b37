// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

// State is the high-level lifecycle state of a VM instance.
type State uint8

const (
	// Unknown is the default / unset state.
	Unknown State = iota

	// Bootstrapping indicates the VM is replaying blocks to reach the tip.
	// Reads are not served while bootstrapping.
	Bootstrapping

	// NormalOp indicates the VM is fully operational and serving normally.
	NormalOp
)

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "Bootstrapping"
	case NormalOp:
		return "NormalOp"
	default:
		return "Unknown"
	}
}
