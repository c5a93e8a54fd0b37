// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/daovm/cmd/daovm/hash"
	"github.com/luxfi/daovm/cmd/daovm/replay"
	"github.com/luxfi/daovm/vms/daovm"
)

func main() {
	cmd := &cobra.Command{
		Use:     "daovm",
		Short:   "Offline tools for the DAO VM",
		Version: daovm.Version,
	}
	cmd.AddCommand(
		replay.Command(),
		hash.Command(),
	)
	cmd.SilenceUsage = true

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command failed: %v\n", err)
		os.Exit(1)
	}
}
