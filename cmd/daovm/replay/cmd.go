// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	luxvm "github.com/luxfi/daovm"
	"github.com/luxfi/daovm/vms/daovm"
	"github.com/luxfi/daovm/vms/daovm/selector"
	"github.com/luxfi/daovm/vms/daovm/txs"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "replay",
		Short: "Replays a scenario against a fresh in-memory chain",
		RunE:  replayFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func replayFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	config, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(config.File)
	if err != nil {
		return err
	}
	scenario, err := Parse(b)
	if err != nil {
		return err
	}

	logger := log.NewNoOpLogger()
	if config.Verbose {
		logger = log.Root()
	}
	_, err = Run(c.Context(), scenario, c.OutOrStdout(), logger)
	return err
}

// Run processes every block of the scenario in order and writes the block
// results to out. It returns the state root after the last block.
func Run(ctx context.Context, scenario *Scenario, out io.Writer, logger log.Logger) (ids.ID, error) {
	configBytes, err := scenario.ConfigBytes()
	if err != nil {
		return ids.Empty, err
	}

	seeds := make(map[uint64][]byte)
	for i := range scenario.Blocks {
		blk := &scenario.Blocks[i]
		seed, err := blk.SeedBytes()
		if err != nil {
			return ids.Empty, fmt.Errorf("invalid seed of block %d: %w", blk.Height, err)
		}
		if seed != nil {
			seeds[blk.Height] = seed
		}
	}

	vm := daovm.New(logger)
	vm.SetRandomness(selector.RandomnessFunc(func(parentID ids.ID, height uint64) []byte {
		if seed, ok := seeds[height]; ok {
			return seed
		}
		return selector.ParentRandomness(parentID, height)
	}))
	if err := vm.Initialize(ctx, &luxvm.Config{
		ChainID:     ids.Empty,
		DB:          memdb.New(),
		Log:         logger,
		ConfigBytes: configBytes,
	}); err != nil {
		return ids.Empty, err
	}
	defer func() {
		_ = vm.Shutdown(ctx)
	}()

	if err := vm.SetState(ctx, luxvm.NormalOp); err != nil {
		return ids.Empty, err
	}

	var (
		parentID  = ids.Empty
		stateRoot ids.ID
	)
	for _, blk := range scenario.Blocks {
		txBytes := make([][]byte, len(blk.Ops))
		for i := range blk.Ops {
			unsigned, err := blk.Ops[i].Tx()
			if err != nil {
				return ids.Empty, fmt.Errorf("invalid op %d of block %d: %w", i, blk.Height, err)
			}
			tx, err := txs.NewTx(unsigned)
			if err != nil {
				return ids.Empty, err
			}
			txBytes[i] = tx.Bytes()
		}

		block, err := daovm.NewBlock(parentID, blk.Height, txBytes)
		if err != nil {
			return ids.Empty, err
		}
		result, err := vm.ProcessBlock(ctx, block)
		if err != nil {
			return ids.Empty, fmt.Errorf("failed to process block %d: %w", blk.Height, err)
		}
		if err := writeResult(out, result); err != nil {
			return ids.Empty, err
		}
		parentID = result.BlockID
		stateRoot = result.StateRoot
	}

	_, err = fmt.Fprintf(out, "stateRoot %s\n", stateRoot)
	return stateRoot, err
}

func writeResult(out io.Writer, result *daovm.BlockResult) error {
	if _, err := fmt.Fprintf(out, "block %d %s\n", result.Height, result.BlockID); err != nil {
		return err
	}
	for _, tx := range result.Txs {
		status := "ok"
		if tx.Err != "" {
			status = "failed: " + tx.Err
		}
		if _, err := fmt.Fprintf(out, "  tx %s %s\n", tx.TxID, status); err != nil {
			return err
		}
	}
	for _, ev := range result.Events {
		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "  event %s %s\n", ev.Kind(), b); err != nil {
			return err
		}
	}
	return nil
}
