// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/daovm/utils/wrappers"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/txs"

	utilmetric "github.com/luxfi/daovm/utils/metric"
)

var _ Metrics = (*metricsImpl)(nil)

type Metrics interface {
	utilmetric.APIInterceptor

	// MarkTxAccepted counts an applied transaction by type.
	MarkTxAccepted(tx *txs.Tx) error
	// MarkTxRejected counts a transaction that failed to apply.
	MarkTxRejected()
	// MarkBlockProcessed updates the metrics derived from the events of a
	// processed block.
	MarkBlockProcessed(height uint64, evs []events.Event)
	// SetPendingTxs records the number of transactions waiting for a block.
	SetPendingTxs(n int)
}

type metricsImpl struct {
	utilmetric.APIInterceptor

	txMetrics *txMetrics

	numTxsRejected     metric.Counter
	numGroupsCreated   metric.Counter
	numWinnersSelected metric.Counter
	numWinningReveals  metric.Counter

	lastAcceptedHeight metric.Gauge
	numPendingTxs      metric.Gauge
}

func New(registerer metric.Registerer) (Metrics, error) {
	apiInterceptor, err := utilmetric.NewAPIInterceptor(registerer)
	if err != nil {
		return nil, err
	}
	txMetrics, err := newTxMetrics(registerer)
	if err != nil {
		return nil, err
	}

	m := &metricsImpl{
		APIInterceptor: apiInterceptor,
		txMetrics:      txMetrics,
		numTxsRejected: metric.NewCounter(metric.CounterOpts{
			Name: "txs_rejected",
			Help: "number of transactions that failed to apply",
		}),
		numGroupsCreated: metric.NewCounter(metric.CounterOpts{
			Name: "groups_created",
			Help: "number of groups created",
		}),
		numWinnersSelected: metric.NewCounter(metric.CounterOpts{
			Name: "winners_selected",
			Help: "number of winning hashes selected",
		}),
		numWinningReveals: metric.NewCounter(metric.CounterOpts{
			Name: "winning_reveals",
			Help: "number of reveals that matched the winning hash",
		}),
		lastAcceptedHeight: metric.NewGauge(metric.GaugeOpts{
			Name: "last_accepted_height",
			Help: "height of the last processed block",
		}),
		numPendingTxs: metric.NewGauge(metric.GaugeOpts{
			Name: "pending_txs",
			Help: "number of transactions waiting for a block",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.numTxsRejected)),
		registerer.Register(metric.AsCollector(m.numGroupsCreated)),
		registerer.Register(metric.AsCollector(m.numWinnersSelected)),
		registerer.Register(metric.AsCollector(m.numWinningReveals)),
		registerer.Register(metric.AsCollector(m.lastAcceptedHeight)),
		registerer.Register(metric.AsCollector(m.numPendingTxs)),
	)
	return m, errs.Err
}

func (m *metricsImpl) MarkTxAccepted(tx *txs.Tx) error {
	return tx.Unsigned.Visit(m.txMetrics)
}

func (m *metricsImpl) MarkTxRejected() {
	m.numTxsRejected.Inc()
}

func (m *metricsImpl) MarkBlockProcessed(height uint64, evs []events.Event) {
	for _, e := range evs {
		switch e.(type) {
		case *events.GroupCreated:
			m.numGroupsCreated.Inc()
		case *events.WinnerSelected:
			m.numWinnersSelected.Inc()
		case *events.ValueRevealed:
			m.numWinningReveals.Inc()
		}
	}
	m.lastAcceptedHeight.Set(float64(height))
}

func (m *metricsImpl) SetPendingTxs(n int) {
	m.numPendingTxs.Set(float64(n))
}
