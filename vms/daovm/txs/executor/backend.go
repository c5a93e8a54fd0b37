// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/luxfi/log"
	"github.com/luxfi/utils"

	"github.com/luxfi/daovm/vms/daovm/config"
)

type Backend struct {
	Config       config.Config
	Bootstrapped *utils.Atomic[bool]
	Log          log.Logger
}
