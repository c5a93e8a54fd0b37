// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hash

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/luxfi/daovm/utils/formatting"
	"github.com/luxfi/daovm/vms/daovm/reveal"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <value>",
		Short: "Prints the masked hash members commit to for a value",
		Args:  cobra.ExactArgs(1),
		RunE:  hashFunc,
	}
}

func hashFunc(c *cobra.Command, args []string) error {
	value, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[0], err)
	}

	hash := reveal.HashValue(value)
	str, err := formatting.Encode(formatting.HexNC, hash[:])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), str)
	return err
}
