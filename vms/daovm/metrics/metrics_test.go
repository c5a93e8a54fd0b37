// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
	"github.com/luxfi/metric"

	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/txs"
)

// gather returns every exported sample keyed by family name and, for
// labeled samples, name{label=value,...}.
func gather(t *testing.T, registry metric.Registry) map[string]float64 {
	mfs, err := registry.Gather()
	require.NoError(t, err)

	samples := make(map[string]float64)
	for _, mf := range mfs {
		for _, m := range mf.Metrics {
			key := mf.Name
			if len(m.Labels) > 0 {
				labels := make([]string, 0, len(m.Labels))
				for _, label := range m.Labels {
					labels = append(labels, label.Name+"="+label.Value)
				}
				sort.Strings(labels)
				key += "{" + strings.Join(labels, ",") + "}"
			}
			samples[key] = m.Value.Value
		}
	}
	return samples
}

func TestMetrics(t *testing.T) {
	require := require.New(t)

	registry := metric.NewRegistry()
	m, err := New(registry)
	require.NoError(err)

	caller := txs.BaseTx{From: ids.GenerateTestShortID()}
	createTx, err := txs.NewTx(&txs.CreateGroupTx{
		BaseTx: caller,
		Name:   []byte("alpha"),
	})
	require.NoError(err)
	revealTx, err := txs.NewTx(&txs.RevealTx{
		BaseTx: caller,
		Value:  7,
	})
	require.NoError(err)

	require.NoError(m.MarkTxAccepted(createTx))
	require.NoError(m.MarkTxAccepted(createTx))
	require.NoError(m.MarkTxAccepted(revealTx))
	m.MarkTxRejected()
	m.MarkBlockProcessed(10, []events.Event{
		&events.GroupCreated{},
		&events.WinnerSelected{},
		&events.WinnerSelected{},
		&events.ValueRevealed{},
		&events.RoundReset{},
	})
	m.SetPendingTxs(3)

	samples := gather(t, registry)
	require.Equal(float64(2), samples["txs_accepted{tx=create_group}"])
	require.Equal(float64(1), samples["txs_accepted{tx=reveal}"])
	require.Equal(float64(1), samples["txs_rejected"])
	require.Equal(float64(1), samples["groups_created"])
	require.Equal(float64(2), samples["winners_selected"])
	require.Equal(float64(1), samples["winning_reveals"])
	require.Equal(float64(10), samples["last_accepted_height"])
	require.Equal(float64(3), samples["pending_txs"])
}
