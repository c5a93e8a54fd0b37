// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/daovm/vms/daovm/txs"
)

const txLabel = "tx"

var (
	_ txs.Visitor = (*txMetrics)(nil)

	txLabels = []string{txLabel}
)

type txMetrics struct {
	numTxs metric.CounterVec
}

func newTxMetrics(registerer metric.Registerer) (*txMetrics, error) {
	m := &txMetrics{
		numTxs: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "txs_accepted",
				Help: "number of transactions accepted",
			},
			txLabels,
		),
	}
	return m, registerer.Register(metric.AsCollector(m.numTxs))
}

func (m *txMetrics) mark(txType string) error {
	m.numTxs.With(metric.Labels{
		txLabel: txType,
	}).Inc()
	return nil
}

func (m *txMetrics) CreateGroupTx(*txs.CreateGroupTx) error {
	return m.mark("create_group")
}

func (m *txMetrics) AddMemberTx(*txs.AddMemberTx) error {
	return m.mark("add_member")
}

func (m *txMetrics) RemoveMemberTx(*txs.RemoveMemberTx) error {
	return m.mark("remove_member")
}

func (m *txMetrics) SubmitCommitmentTx(*txs.SubmitCommitmentTx) error {
	return m.mark("submit_commitment")
}

func (m *txMetrics) RevealTx(*txs.RevealTx) error {
	return m.mark("reveal")
}

func (m *txMetrics) StartNewRoundTx(*txs.StartNewRoundTx) error {
	return m.mark("start_new_round")
}
