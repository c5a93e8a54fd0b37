// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package daovm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/luxfi/utils"

	luxvm "github.com/luxfi/daovm"
	"github.com/luxfi/daovm/utils/hashing"
	"github.com/luxfi/daovm/utils/json"
	"github.com/luxfi/daovm/vms/daovm/api"
	"github.com/luxfi/daovm/vms/daovm/config"
	"github.com/luxfi/daovm/vms/daovm/events"
	"github.com/luxfi/daovm/vms/daovm/metrics"
	"github.com/luxfi/daovm/vms/daovm/scheduler"
	"github.com/luxfi/daovm/vms/daovm/selector"
	"github.com/luxfi/daovm/vms/daovm/state"
	"github.com/luxfi/daovm/vms/daovm/txs"
	"github.com/luxfi/daovm/vms/daovm/txs/executor"
)

const Version = "v1.0.0"

var (
	_ luxvm.VM = (*VM)(nil)
	_ api.VM   = (*VM)(nil)

	errNoDatabase      = errors.New("no database provided")
	errNotInitialized  = errors.New("VM not initialized")
	errShutdown        = errors.New("VM is shutting down")
	errUnknownState    = errors.New("unknown state")
	errWrongParent     = errors.New("block does not extend the last accepted block")
	errHeightNotRising = errors.New("block height must exceed the last accepted height")
	errDuplicateTx     = errors.New("duplicate transaction")
)

// TxResult is the outcome of one transaction of a block.
type TxResult struct {
	TxID ids.ID `json:"txID"`
	// Err is empty if the transaction was applied.
	Err string `json:"error,omitempty"`
}

// BlockResult is the deterministic result of processing a block. Replicas
// that process the same blocks produce the same results.
type BlockResult struct {
	BlockID  ids.ID `json:"blockID"`
	ParentID ids.ID `json:"parentID"`
	Height   uint64 `json:"height"`

	Txs []TxResult `json:"txs"`
	// Events in emission order: transaction events first, then selections.
	Events []events.Event `json:"events"`
	// Selected lists the groups whose winner was recomputed this tick.
	Selected []state.GroupID `json:"selected"`

	// StateRoot is the checksum of state after the block.
	StateRoot ids.ID `json:"stateRoot"`
}

// VM is the DAO virtual machine.
//
// There are no background goroutines. State only changes in ProcessBlock, so
// every replica that processes the same blocks holds the same state.
type VM struct {
	config.Config

	log  log.Logger
	lock sync.RWMutex

	chainID ids.ID

	baseDB database.Database
	// db buffers the writes of the block being processed
	db    *versiondb.Database
	state *state.State

	metrics    metrics.Metrics
	randomness selector.Randomness
	backend    *executor.Backend

	bootstrapped utils.Atomic[bool]

	toEngine   chan<- luxvm.Message
	mempool    []*txs.Tx
	mempoolIDs map[ids.ID]struct{}

	lastAcceptedID     ids.ID
	lastAcceptedHeight uint64
	hasAccepted        bool

	initialized bool
	shutdown    bool
}

// New returns an uninitialized VM seeded by ParentRandomness.
func New(logger log.Logger) *VM {
	return &VM{
		log:        logger,
		randomness: selector.ParentRandomness,
	}
}

// SetRandomness replaces the seed source. It must be called before the first
// block is processed.
func (vm *VM) SetRandomness(r selector.Randomness) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	vm.randomness = r
}

func (vm *VM) Initialize(ctx context.Context, cfg *luxvm.Config) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if cfg.DB == nil {
		return errNoDatabase
	}
	if cfg.Log != nil {
		vm.log = cfg.Log
	}
	if vm.log == nil {
		vm.log = log.NewNoOpLogger()
	}
	if vm.randomness == nil {
		vm.randomness = selector.ParentRandomness
	}

	vmConfig, err := config.Parse(cfg.ConfigBytes)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	vm.Config = vmConfig

	registerer := cfg.Registerer
	if registerer == nil {
		registerer = metric.NewRegistry()
	}
	vm.metrics, err = metrics.New(registerer)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	vm.chainID = cfg.ChainID
	vm.toEngine = cfg.ToEngine
	vm.baseDB = cfg.DB
	vm.db = versiondb.New(vm.baseDB)
	vm.state = state.New(vm.db)
	vm.mempoolIDs = make(map[ids.ID]struct{})
	vm.backend = &executor.Backend{
		Config:       vm.Config,
		Bootstrapped: &vm.bootstrapped,
		Log:          vm.log,
	}

	switch blkID, height, err := vm.state.GetLastAccepted(); {
	case err == nil:
		vm.lastAcceptedID = blkID
		vm.lastAcceptedHeight = height
		vm.hasAccepted = true
	case !errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("failed to load last accepted block: %w", err)
	}

	vm.initialized = true
	vm.log.Info("DAO VM initialized",
		log.Stringer("chainID", vm.chainID),
		log.Stringer("lastAcceptedID", vm.lastAcceptedID),
		log.Uint64("lastAcceptedHeight", vm.lastAcceptedHeight),
		log.Uint64("roundLength", vm.RoundLength),
	)
	return nil
}

func (vm *VM) SetState(ctx context.Context, vmState luxvm.State) error {
	switch vmState {
	case luxvm.Bootstrapping:
		vm.log.Info("DAO VM entering bootstrap state")
		vm.bootstrapped.Set(false)
		return nil
	case luxvm.NormalOp:
		vm.log.Info("DAO VM entering normal operation")
		vm.bootstrapped.Set(true)
		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownState, vmState)
	}
}

// ProcessBlock applies blk on top of the last accepted block and commits the
// result.
//
// Each transaction runs against its own database layer: a failing transaction
// is recorded in the result and leaves no writes behind. After the
// transactions, the scheduler runs with tick = blk.Height and the seed of the
// configured Randomness.
func (vm *VM) ProcessBlock(ctx context.Context, blk *Block) (*BlockResult, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	switch {
	case vm.shutdown:
		return nil, errShutdown
	case !vm.initialized:
		return nil, errNotInitialized
	case blk.ParentID != vm.lastAcceptedID:
		return nil, fmt.Errorf("%w: parent %s, last accepted %s", errWrongParent, blk.ParentID, vm.lastAcceptedID)
	case vm.hasAccepted && blk.Height <= vm.lastAcceptedHeight:
		return nil, fmt.Errorf("%w: %d <= %d", errHeightNotRising, blk.Height, vm.lastAcceptedHeight)
	}

	result, applied, err := vm.processBlock(blk)
	if err != nil {
		vm.db.Abort()
		return nil, err
	}
	if err := vm.db.Commit(); err != nil {
		vm.db.Abort()
		return nil, fmt.Errorf("failed to commit block %s: %w", blk.ID(), err)
	}

	vm.lastAcceptedID = blk.ID()
	vm.lastAcceptedHeight = blk.Height
	vm.hasAccepted = true
	vm.markApplied(applied)
	vm.metrics.MarkBlockProcessed(blk.Height, result.Events)
	vm.metrics.SetPendingTxs(len(vm.mempool))

	vm.log.Debug("block processed",
		log.Stringer("blkID", result.BlockID),
		log.Uint64("height", result.Height),
		log.Int("txs", len(result.Txs)),
		log.Int("selected", len(result.Selected)),
		log.Stringer("stateRoot", result.StateRoot),
	)
	return result, nil
}

// appliedTx is a transaction of a block whose mempool and metrics updates
// wait for the block to be committed.
type appliedTx struct {
	// tx is nil if the bytes did not parse
	tx       *txs.Tx
	accepted bool
}

func (vm *VM) processBlock(blk *Block) (*BlockResult, []appliedTx, error) {
	result := &BlockResult{
		BlockID:  blk.ID(),
		ParentID: blk.ParentID,
		Height:   blk.Height,
		Txs:      make([]TxResult, 0, len(blk.Txs)),
	}
	applied := make([]appliedTx, 0, len(blk.Txs))

	for _, txBytes := range blk.Txs {
		txResult, txApplied, evs, err := vm.processTx(txBytes, blk.Height)
		if err != nil {
			return nil, nil, err
		}
		result.Txs = append(result.Txs, txResult)
		result.Events = append(result.Events, evs...)
		applied = append(applied, txApplied)
	}

	selections := &events.Log{}
	sched := scheduler.New(
		vm.Config,
		vm.state,
		selector.New(vm.state, selections),
		vm.log,
	)
	seed := vm.randomness.Seed(blk.ParentID, blk.Height)
	selected, err := sched.OnTick(blk.Height, seed)
	if err != nil {
		return nil, nil, err
	}
	result.Selected = selected
	result.Events = append(result.Events, selections.Events()...)

	result.StateRoot, err = vm.state.Checksum()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute state root: %w", err)
	}
	if err := vm.state.PutLastAccepted(blk.ID(), blk.Height); err != nil {
		return nil, nil, err
	}
	return result, applied, nil
}

// processTx applies one transaction. The returned error is only set for
// failures that must abort the whole block.
func (vm *VM) processTx(txBytes []byte, height uint64) (TxResult, appliedTx, []events.Event, error) {
	tx, err := txs.Parse(txBytes)
	if err != nil {
		return TxResult{
			TxID: hashing.ComputeHash256(txBytes),
			Err:  err.Error(),
		}, appliedTx{}, nil, nil
	}

	txDB := versiondb.New(vm.db)
	txEvents := &events.Log{}
	txExecutor := executor.New(vm.backend, state.New(txDB), txEvents, height)
	if err := txExecutor.Execute(tx); err != nil {
		txDB.Abort()
		vm.log.Debug("transaction failed",
			log.Stringer("txID", tx.ID()),
			log.Err(err),
		)
		return TxResult{
			TxID: tx.ID(),
			Err:  err.Error(),
		}, appliedTx{tx: tx}, nil, nil
	}
	if err := txDB.Commit(); err != nil {
		return TxResult{}, appliedTx{}, nil, fmt.Errorf("failed to commit tx %s: %w", tx.ID(), err)
	}
	return TxResult{TxID: tx.ID()}, appliedTx{tx: tx, accepted: true}, txEvents.Events(), nil
}

// markApplied drops the transactions of a committed block from the mempool
// and counts them.
func (vm *VM) markApplied(applied []appliedTx) {
	for _, a := range applied {
		if a.tx == nil {
			vm.metrics.MarkTxRejected()
			continue
		}
		vm.removeFromMempool(a.tx.ID())
		if !a.accepted {
			vm.metrics.MarkTxRejected()
			continue
		}
		if err := vm.metrics.MarkTxAccepted(a.tx); err != nil {
			vm.log.Warn("failed to record accepted transaction",
				log.Stringer("txID", a.tx.ID()),
				log.Err(err),
			)
		}
	}
}

// BuildBlock returns a block on top of the last accepted block carrying the
// pending transactions. The block is not processed.
func (vm *VM) BuildBlock(ctx context.Context) (*Block, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	switch {
	case vm.shutdown:
		return nil, errShutdown
	case !vm.initialized:
		return nil, errNotInitialized
	}

	count := min(len(vm.mempool), int(vm.MaxTxsPerBlock))
	blkTxs := make([][]byte, count)
	for i, tx := range vm.mempool[:count] {
		blkTxs[i] = tx.Bytes()
	}

	height := uint64(0)
	if vm.hasAccepted {
		height = vm.lastAcceptedHeight + 1
	}
	return NewBlock(vm.lastAcceptedID, height, blkTxs)
}

// IssueTx adds a transaction to the mempool and notifies the engine.
func (vm *VM) IssueTx(txBytes []byte) (ids.ID, error) {
	tx, err := txs.Parse(txBytes)
	if err != nil {
		return ids.Empty, err
	}
	if err := tx.SyntacticVerify(); err != nil {
		return ids.Empty, err
	}

	vm.lock.Lock()
	defer vm.lock.Unlock()

	switch {
	case vm.shutdown:
		return ids.Empty, errShutdown
	case !vm.initialized:
		return ids.Empty, errNotInitialized
	}
	txID := tx.ID()
	if _, ok := vm.mempoolIDs[txID]; ok {
		return ids.Empty, fmt.Errorf("%w: %s", errDuplicateTx, txID)
	}
	vm.mempool = append(vm.mempool, tx)
	vm.mempoolIDs[txID] = struct{}{}
	vm.metrics.SetPendingTxs(len(vm.mempool))

	if vm.toEngine != nil {
		select {
		case vm.toEngine <- luxvm.Message{Type: luxvm.PendingTxs, Pending: len(vm.mempool)}:
		default:
			vm.log.Debug("dropping message to engine", log.Stringer("txID", txID))
		}
	}
	return txID, nil
}

func (vm *VM) removeFromMempool(txID ids.ID) {
	if _, ok := vm.mempoolIDs[txID]; !ok {
		return
	}
	delete(vm.mempoolIDs, txID)
	for i, tx := range vm.mempool {
		if tx.ID() == txID {
			vm.mempool = append(vm.mempool[:i], vm.mempool[i+1:]...)
			return
		}
	}
}

// ReadState calls f with the committed state while holding the read lock.
func (vm *VM) ReadState(f func(*state.State) error) error {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	switch {
	case vm.shutdown:
		return errShutdown
	case !vm.initialized:
		return errNotInitialized
	}
	return f(vm.state)
}

func (vm *VM) Status() api.Status {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	return api.Status{
		LastAcceptedID:     vm.lastAcceptedID,
		LastAcceptedHeight: vm.lastAcceptedHeight,
		PendingTxs:         len(vm.mempool),
		Bootstrapped:       vm.bootstrapped.Get(),
	}
}

func (vm *VM) HealthCheck(ctx context.Context) (interface{}, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	return map[string]interface{}{
		"healthy":      vm.initialized && !vm.shutdown && vm.bootstrapped.Get(),
		"bootstrapped": vm.bootstrapped.Get(),
		"blockHeight":  vm.lastAcceptedHeight,
		"pendingTxs":   len(vm.mempool),
	}, nil
}

// CreateHandlers returns the JSON-RPC handler of the "dao" service.
func (vm *VM) CreateHandlers(ctx context.Context) (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(vm.metrics.InterceptRequest)
	server.RegisterAfterFunc(vm.metrics.AfterRequest)

	if err := server.RegisterService(api.NewService(vm, vm.log), "dao"); err != nil {
		return nil, fmt.Errorf("failed to register DAO service: %w", err)
	}
	return map[string]http.Handler{
		"": server,
	}, nil
}

func (vm *VM) Version(context.Context) (string, error) {
	return Version, nil
}

func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.shutdown || !vm.initialized {
		vm.shutdown = true
		return nil
	}
	vm.shutdown = true
	vm.log.Info("shutting down DAO VM")

	vm.db.Abort()
	if err := vm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
