// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vm defines the lifecycle abstractions shared by the DAO VM and the
// framework that hosts it. The host authenticates callers, persists state and
// drives ticks; the VM only ever sees those through the types declared here.
package vm

import (
	"context"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

// VM defines the interface for a virtual machine
type VM interface {
	// Initialize initializes the VM with the given configuration
	Initialize(context.Context, *Config) error

	// Shutdown cleanly stops the VM
	Shutdown(context.Context) error

	// Version returns the VM version
	Version(context.Context) (string, error)

	// SetState transitions the VM to the specified state
	SetState(context.Context, State) error
}

// Config is handed to a VM by its host on initialization.
type Config struct {
	ChainID   ids.ID
	NetworkID uint32
	NodeID    ids.NodeID

	// DB is the VM's private database. The VM owns it after Initialize.
	DB database.Database
	// Log defaults to a no-op logger.
	Log log.Logger
	// Registerer receives the VM's metrics. Optional.
	Registerer metric.Registerer
	// ToEngine is notified when transactions are waiting to be put in a block.
	// Optional.
	ToEngine chan<- Message

	// ConfigBytes is the JSON encoded VM configuration. Empty means defaults.
	ConfigBytes []byte
}
