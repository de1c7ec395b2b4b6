package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"curvemm/internal/model"
	"curvemm/internal/oracle"
	"curvemm/internal/storage"
	"curvemm/internal/token"
)

// Config holds the identities the engine runs with.
type Config struct {
	// MarketMaker is the sole liquidity provider and parameter writer.
	MarketMaker string
	// Admin controls the global pause and market-maker reassignment.
	Admin string
	// Account is the engine's own account on the asset ledger.
	Account string
	// Now supplies unit timestamps; defaults to time.Now.
	Now func() time.Time
}

// Engine applies curve parameters pushed through the oracle to trades against
// the market maker's inventory. The hosting ledger serializes all top-level
// calls; the engine itself is not safe for concurrent use.
type Engine struct {
	cfg    Config
	kv     oracle.Store
	params *oracle.ParamStore
	tokens token.Ledger
	sink   storage.EventSink
	logger *zap.Logger

	pairs  map[common.Hash]*model.TradingPair
	order  []common.Hash
	paused bool
	seq    uint64

	// busy guards one call tree against re-entry from transfer hooks. A
	// plain flag suffices: the host already serializes top-level calls.
	busy bool
}

// New builds an Engine with its collaborators.
func New(cfg Config, kv oracle.Store, tokens token.Ledger, sink storage.EventSink, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Account == "" {
		cfg.Account = "engine"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cfg:    cfg,
		kv:     kv,
		params: oracle.NewParamStore(kv, kv.Writer()),
		tokens: tokens,
		sink:   sink,
		logger: logger,
		pairs:  map[common.Hash]*model.TradingPair{},
	}
}

// enter opens a top-level call tree; nested re-entry is rejected.
func (e *Engine) enter() error {
	if e.busy {
		return ErrReentrantCall
	}
	e.busy = true
	return nil
}

func (e *Engine) exit() {
	e.busy = false
}

// endUnit closes the current serialized unit once a mutating call finishes
// its validations and starts doing work. Writes made inside the unit become
// visible only to later units, so a call that reprices can never trade
// against its own fresh parameters.
func (e *Engine) endUnit() {
	e.kv.Advance(uint64(e.cfg.Now().Unix()))
}

func (e *Engine) requireMarketMaker(caller string) error {
	if caller != e.cfg.MarketMaker {
		return ErrNotMarketMaker
	}
	return nil
}

func (e *Engine) requireAdmin(caller string) error {
	if caller != e.cfg.Admin {
		return ErrNotAdmin
	}
	return nil
}

func (e *Engine) pair(pairID common.Hash) (*model.TradingPair, error) {
	pair, ok := e.pairs[pairID]
	if !ok || !pair.Exists {
		return nil, ErrPairNotFound
	}
	return pair, nil
}

func (e *Engine) emit(ctx context.Context, kind string, pairID common.Hash, caller string, payload any) error {
	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s event: %w", kind, err)
		}
		data = encoded
	}
	e.seq++
	event := model.Event{
		Seq:       e.seq,
		Height:    e.kv.Height(),
		Timestamp: uint64(e.cfg.Now().Unix()),
		Kind:      kind,
		Caller:    caller,
		Data:      data,
	}
	if pairID != (common.Hash{}) {
		event.PairID = pairID.Hex()
	}
	if e.sink == nil {
		return nil
	}
	if err := e.sink.PutEventBatch(ctx, []model.Event{event}); err != nil {
		return fmt.Errorf("emit %s event: %w", kind, err)
	}
	return nil
}

// Pause halts both swap entrypoints. Administrator only.
func (e *Engine) Pause(ctx context.Context, caller string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if e.paused {
		return ErrAlreadyPaused
	}
	defer e.endUnit()
	e.paused = true
	e.logger.Info("trading paused", zap.String("caller", caller))
	return e.emit(ctx, model.EventPaused, common.Hash{}, caller, nil)
}

// Resume lifts the global halt. Administrator only.
func (e *Engine) Resume(ctx context.Context, caller string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !e.paused {
		return ErrNotPaused
	}
	defer e.endUnit()
	e.paused = false
	e.logger.Info("trading resumed", zap.String("caller", caller))
	return e.emit(ctx, model.EventResumed, common.Hash{}, caller, nil)
}

// Paused reports the global halt state.
func (e *Engine) Paused() bool {
	return e.paused
}

// ReassignMarketMaker hands the market-maker capability to a new identity.
// Administrator only.
func (e *Engine) ReassignMarketMaker(ctx context.Context, caller, newMarketMaker string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if newMarketMaker == "" {
		return fmt.Errorf("market maker identity is empty")
	}
	defer e.endUnit()
	e.cfg.MarketMaker = newMarketMaker
	e.logger.Info("market maker reassigned", zap.String("new", newMarketMaker))
	return e.emit(ctx, model.EventMarketMakerChanged, common.Hash{}, caller, map[string]string{"new_market_maker": newMarketMaker})
}

// GetPair returns a copy of the pair state.
func (e *Engine) GetPair(pairID common.Hash) (model.TradingPair, error) {
	pair, err := e.pair(pairID)
	if err != nil {
		return model.TradingPair{}, err
	}
	out := *pair
	out.ReserveX = clone(pair.ReserveX)
	out.ReserveY = clone(pair.ReserveY)
	out.TargetX = clone(pair.TargetX)
	out.TargetYReference = clone(pair.TargetYReference)
	return out, nil
}

// ListPairIDs returns all pair ids in creation order.
func (e *Engine) ListPairIDs() []common.Hash {
	out := make([]common.Hash, len(e.order))
	copy(out, e.order)
	return out
}

// ParametersWithTimestamp returns the currently visible parameters plus the
// timestamp and height of their newest write.
func (e *Engine) ParametersWithTimestamp(pairID common.Hash) (model.PairParameters, uint64, uint64, error) {
	if _, err := e.pair(pairID); err != nil {
		return model.PairParameters{}, 0, 0, err
	}
	params, ts, height := e.params.ReadWithTimestamp(pairID)
	return params, ts, height, nil
}

// Snapshots returns storage-form snapshots of every pair, in creation order.
func (e *Engine) Snapshots() []model.PairSnapshot {
	out := make([]model.PairSnapshot, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.pairs[id].Snapshot(id.Hex()))
	}
	return out
}
