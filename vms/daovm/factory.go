// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package daovm implements the DAO virtual machine: a registry of named
// groups whose members pick one of their committed secrets at random every
// tick of an open round, and later reveal it.
package daovm

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	luxvm "github.com/luxfi/daovm"
	"github.com/luxfi/daovm/vms/daovm/selector"
)

var (
	// VMID is the unique identifier of the DAO VM
	VMID = ids.ID{'d', 'a', 'o', 'v', 'm'}

	_ luxvm.Factory = (*Factory)(nil)
)

// Factory creates new DAO VM instances.
type Factory struct {
	// Randomness seeds every tick. Defaults to selector.ParentRandomness.
	Randomness selector.Randomness
}

func (f *Factory) New(logger log.Logger) (luxvm.VM, error) {
	vm := New(logger)
	if f.Randomness != nil {
		vm.randomness = f.Randomness
	}
	return vm, nil
}
